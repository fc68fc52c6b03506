package model

import (
	"strings"
	"time"
)

type TaskType string

const (
	TypeTask  TaskType = "Task"
	TypeBug   TaskType = "Bug"
	TypeStory TaskType = "Story"
	TypeEpic  TaskType = "Epic"
)

var TaskTypes = []TaskType{TypeTask, TypeBug, TypeStory, TypeEpic}

func (t TaskType) Valid() bool {
	for _, v := range TaskTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
	PriorityNone   Priority = "None"
)

// Priorities is the fixed histogram order used by the summary view.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow, PriorityNone}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

const (
	Unassigned = "Unassigned"

	StatusToDo       = "TO DO"
	StatusInProgress = "IN PROGRESS"
	StatusInReview   = "IN REVIEW"
	StatusDone       = "DONE"

	// TempIDPrefix marks ids that were synthesized locally and not yet confirmed.
	TempIDPrefix = "tmp-"
)

func DefaultColumns() []string {
	return []string{StatusToDo, StatusInProgress, StatusInReview, StatusDone}
}

type Task struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Type      TaskType  `json:"type"`
	Status    string    `json:"status"`
	Assignee  string    `json:"assignee"`
	Reporter  string    `json:"reporter"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// Temporary reports whether the task still carries a client-side id.
func (t Task) Temporary() bool {
	return IsTempID(t.ID)
}

func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// PlaceholderKey is shown until the gateway assigns the real sequence number.
func PlaceholderKey(projectKey string) string {
	return projectKey + "-?"
}

// NewTask is the create payload: POST /projects/{key}/issues
type NewTask struct {
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Assignee string   `json:"assignee"`
	Type     TaskType `json:"type"`
	Priority Priority `json:"priority"`
	Reporter string   `json:"reporter,omitempty"`
}

// WithDefaults fills the optional fields the way the board form does.
func (n NewTask) WithDefaults() NewTask {
	n.Title = strings.TrimSpace(n.Title)
	if strings.TrimSpace(n.Assignee) == "" {
		n.Assignee = Unassigned
	}
	if n.Type == "" {
		n.Type = TypeTask
	}
	if n.Priority == "" {
		n.Priority = PriorityNone
	}
	return n
}

type StatusPatch struct {
	Status string `json:"status"`
}

const createdLayout = "2006-01-02T15:04:05.000000000Z"

// FormatCreated renders a timestamp in fixed width UTC so that string order
// matches time order.
func FormatCreated(t time.Time) string {
	return t.UTC().Format(createdLayout)
}
