package gateway

import (
	"context"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// Gateway is the remote store behind a board. Ids are opaque strings; the
// server assigns id, key and created_at on create.
type Gateway interface {
	ListIssues(ctx context.Context, projectKey string) ([]model.Task, error)
	CreateIssue(ctx context.Context, projectKey string, in model.NewTask) (model.Task, error)
	// PatchIssue may return nil when the server answers without a body.
	PatchIssue(ctx context.Context, id string, patch model.StatusPatch) (*model.Task, error)
	DeleteIssue(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, in model.NewProject) (model.Project, error)
}
