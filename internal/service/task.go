package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BuzzLyutic/taskboard/internal/gateway"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// TrackerService is the server side of the gateway contract. It also
// satisfies gateway.Gateway, so a board can run against it in-process.
type TrackerService struct {
	repo repo.TrackerRepository
}

var _ gateway.Gateway = (*TrackerService)(nil)

func NewTrackerService(repo repo.TrackerRepository) *TrackerService {
	return &TrackerService{repo: repo}
}

func (s *TrackerService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *TrackerService) CreateProject(ctx context.Context, in model.NewProject) (model.Project, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return model.Project{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.repo.CreateProject(ctx, in)
}

func (s *TrackerService) ListIssues(ctx context.Context, projectKey string) ([]model.Task, error) {
	return s.repo.ListIssues(ctx, strings.ToUpper(projectKey))
}

func (s *TrackerService) CreateIssue(ctx context.Context, projectKey string, in model.NewTask) (model.Task, error) {
	in = in.WithDefaults()
	if in.Reporter == "" {
		in.Reporter = "You"
	}
	if err := s.validate(in); err != nil { // Валидация модели на корректность введенных данных
		return model.Task{}, err
	}
	return s.repo.CreateIssue(ctx, strings.ToUpper(projectKey), in)
}

func (s *TrackerService) PatchIssue(ctx context.Context, id string, patch model.StatusPatch) (*model.Task, error) {
	issueID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(patch.Status) == "" {
		return nil, fmt.Errorf("%w: status is required", ErrValidation)
	}

	task, err := s.repo.UpdateIssueStatus(ctx, issueID, strings.TrimSpace(patch.Status))
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TrackerService) DeleteIssue(ctx context.Context, id string) error {
	issueID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.DeleteIssue(ctx, issueID)
}

func (s *TrackerService) validate(t model.NewTask) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(t.Status) == "" {
		return fmt.Errorf("%w: status is required", ErrValidation)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, t.Type)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, t.Priority)
	}
	return nil
}

// Ids that are not server ids (including temporary ones) cannot exist.
func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil || v <= 0 {
		return 0, repo.ErrorNotFound
	}
	return v, nil
}
