// Package view holds the read-only projections rendered by the board, list
// and summary screens. Nothing here mutates its input.
package view

import "github.com/BuzzLyutic/taskboard/internal/model"

type Bucket struct {
	Column string       `json:"column"`
	Tasks  []model.Task `json:"tasks"`
}

// GroupByColumn returns one bucket per column in column order. Tasks keep
// their source order inside a bucket; empty columns get an empty bucket.
func GroupByColumn(tasks []model.Task, columns []string) []Bucket {
	pos := make(map[string]int, len(columns))
	buckets := make([]Bucket, len(columns))
	for i, c := range columns {
		buckets[i] = Bucket{Column: c, Tasks: []model.Task{}}
		if _, dup := pos[c]; !dup {
			pos[c] = i
		}
	}

	for _, t := range tasks {
		if i, ok := pos[t.Status]; ok {
			buckets[i].Tasks = append(buckets[i].Tasks, t)
		}
	}
	return buckets
}
