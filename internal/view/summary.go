package view

import (
	"math"
	"sort"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

type StatusCount struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Overview is the donut on the summary screen. IN PROGRESS and IN REVIEW are
// shown together as active work; columns outside the default four land in
// Other so the shares still add up.
type Overview struct {
	Done   StatusCount `json:"done"`
	Active StatusCount `json:"active"`
	ToDo   StatusCount `json:"todo"`
	Other  StatusCount `json:"other"`
}

type PriorityCount struct {
	Priority model.Priority `json:"priority"`
	Count    int            `json:"count"`
}

type PriorityHistogram []PriorityCount

// Max is the scale for bar heights. It is at least 1.
func (h PriorityHistogram) Max() int {
	m := 1
	for _, p := range h {
		if p.Count > m {
			m = p.Count
		}
	}
	return m
}

type Workload struct {
	Assignee string `json:"assignee"`
	Count    int    `json:"count"`
	Percent  int    `json:"percent"`
}

type Summary struct {
	Total      int               `json:"total"`
	ByStatus   []StatusCount     `json:"by_status"`
	Overview   Overview          `json:"overview"`
	ByPriority PriorityHistogram `json:"by_priority"`
	Workload   []Workload        `json:"workload"`
}

// Summarize aggregates the full task collection of a project.
func Summarize(tasks []model.Task, columns []string) Summary {
	total := len(tasks)
	s := Summary{Total: total}

	counts := make(map[string]int, len(columns))
	priorityCount := make(map[model.Priority]int, len(model.Priorities))
	for _, t := range tasks {
		counts[t.Status]++
		priorityCount[t.Priority]++
	}

	seen := make(map[string]bool, len(columns))
	s.ByStatus = make([]StatusCount, 0, len(columns))
	for _, c := range columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		s.ByStatus = append(s.ByStatus, statusCount(c, counts[c], total))
	}

	var other int
	for status, n := range counts {
		switch status {
		case model.StatusToDo, model.StatusInProgress, model.StatusInReview, model.StatusDone:
		default:
			other += n
		}
	}
	s.Overview = Overview{
		Done:   statusCount(model.StatusDone, counts[model.StatusDone], total),
		Active: statusCount("ACTIVE", counts[model.StatusInProgress]+counts[model.StatusInReview], total),
		ToDo:   statusCount(model.StatusToDo, counts[model.StatusToDo], total),
		Other:  statusCount("OTHER", other, total),
	}

	s.ByPriority = make(PriorityHistogram, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		s.ByPriority = append(s.ByPriority, PriorityCount{Priority: p, Count: priorityCount[p]})
	}

	s.Workload = workload(tasks, total)
	return s
}

func statusCount(column string, n, total int) StatusCount {
	return StatusCount{Column: column, Count: n, Percent: percent(n, total)}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// workload counts tasks per assignee, largest first, ties in first-seen order.
func workload(tasks []model.Task, total int) []Workload {
	index := make(map[string]int)
	var out []Workload
	for _, t := range tasks {
		i, ok := index[t.Assignee]
		if !ok {
			i = len(out)
			index[t.Assignee] = i
			out = append(out, Workload{Assignee: t.Assignee})
		}
		out[i].Count++
	}

	for i := range out {
		out[i].Percent = int(math.Round(percent(out[i].Count, total)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if out == nil {
		out = []Workload{}
	}
	return out
}
