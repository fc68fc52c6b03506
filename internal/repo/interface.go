package repo

import (
	"context"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// TrackerRepository определяет интерфейс для работы с проектами и задачами
type TrackerRepository interface {
	CreateProject(ctx context.Context, p model.NewProject) (model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListIssues(ctx context.Context, projectKey string) ([]model.Task, error)
	CreateIssue(ctx context.Context, projectKey string, t model.NewTask) (model.Task, error)
	UpdateIssueStatus(ctx context.Context, id int64, status string) (model.Task, error)
	DeleteIssue(ctx context.Context, id int64) error
}
