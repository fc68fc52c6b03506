package query

import (
	"strings"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// Criteria narrows the visible tasks. Zero values match everything.
type Criteria struct {
	Search   string
	Assignee string
	Type     model.TaskType
}

func (c Criteria) IsZero() bool {
	return c.Search == "" && c.Assignee == "" && c.Type == ""
}

// Filter returns the tasks matching every set criterion, in source order.
// The input slice is never modified.
func Filter(tasks []model.Task, c Criteria) []model.Task {
	search := strings.ToLower(c.Search)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Key), search) {
			continue
		}
		if c.Assignee != "" && t.Assignee != c.Assignee {
			continue
		}
		if c.Type != "" && t.Type != c.Type {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Assignees lists distinct assignees in first-seen order.
func Assignees(tasks []model.Task) []string {
	seen := make(map[string]struct{}, len(tasks))
	var out []string
	for _, t := range tasks {
		if _, ok := seen[t.Assignee]; ok {
			continue
		}
		seen[t.Assignee] = struct{}{}
		out = append(out, t.Assignee)
	}
	return out
}
