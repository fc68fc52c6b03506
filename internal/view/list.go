package view

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

var ErrUnknownField = errors.New("unknown sort field")

type SortField string

const (
	SortKey      SortField = "key"
	SortTitle    SortField = "title"
	SortStatus   SortField = "status"
	SortCreated  SortField = "created"
	SortAssignee SortField = "assignee"
	SortType     SortField = "type"
	SortPriority SortField = "priority"
	SortReporter SortField = "reporter"
)

var sortFields = map[SortField]func(model.Task) string{
	SortKey:      func(t model.Task) string { return t.Key },
	SortTitle:    func(t model.Task) string { return t.Title },
	SortStatus:   func(t model.Task) string { return t.Status },
	SortCreated:  func(t model.Task) string { return model.FormatCreated(t.CreatedAt) },
	SortAssignee: func(t model.Task) string { return t.Assignee },
	SortType:     func(t model.Task) string { return string(t.Type) },
	SortPriority: func(t model.Task) string { return string(t.Priority) },
	SortReporter: func(t model.Task) string { return t.Reporter },
}

func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := sortFields[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

// SortBy orders a copy of tasks by the string form of field. Equal values
// keep their source order.
func SortBy(tasks []model.Task, field SortField) ([]model.Task, error) {
	value, ok := sortFields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	out := append([]model.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		return value(out[i]) < value(out[j])
	})
	return out, nil
}
