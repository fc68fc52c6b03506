package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/config"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/view"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListIssues(ctx context.Context, projectKey string) ([]model.Task, error) {
	args := m.Called(ctx, projectKey)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockGateway) CreateIssue(ctx context.Context, projectKey string, in model.NewTask) (model.Task, error) {
	args := m.Called(ctx, projectKey, in)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockGateway) PatchIssue(ctx context.Context, id string, patch model.StatusPatch) (*model.Task, error) {
	args := m.Called(ctx, id, patch)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockGateway) DeleteIssue(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) ListProjects(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockGateway) CreateProject(ctx context.Context, in model.NewProject) (model.Project, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Project), args.Error(1)
}

func issues() []model.Task {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Task{
		{ID: "1", Key: "KAN-1", Title: "Write docs", Status: model.StatusToDo, Type: model.TypeTask, Priority: model.PriorityLow, Assignee: "Alice", CreatedAt: at},
		{ID: "2", Key: "KAN-2", Title: "Fix login", Status: model.StatusInProgress, Type: model.TypeBug, Priority: model.PriorityHigh, Assignee: "Bob", CreatedAt: at.Add(time.Hour)},
		{ID: "3", Key: "KAN-3", Title: "Add export", Status: model.StatusDone, Type: model.TypeStory, Priority: model.PriorityMedium, Assignee: "Alice", CreatedAt: at.Add(2 * time.Hour)},
	}
}

func execute(t *testing.T, gw *MockGateway, args ...string) (string, error) {
	t.Helper()

	a := &app{
		cfg: config.Config{
			WorkerCount:    2,
			QueueSize:      8,
			RequestTimeout: time.Second,
			Columns:        model.DefaultColumns(),
			Reporter:       "You",
		},
		logger: zap.NewNop(),
		gw:     gw,
	}
	root := newRootCmd(a)

	b := new(bytes.Buffer)
	root.SetOut(b)
	root.SetErr(b)
	root.SetArgs(args)
	err := root.Execute()
	return b.String(), err
}

func TestListCmd_SortAndFilter(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListIssues", mock.Anything, "KAN").Return(issues(), nil)

	out, err := execute(t, gw, "list", "--sort", "title", "--assignee", "Alice")

	require.NoError(t, err)
	assert.NotContains(t, out, "Fix login")
	assert.Less(t, strings.Index(out, "Add export"), strings.Index(out, "Write docs"))
}

func TestListCmd_UnknownSortField(t *testing.T) {
	gw := new(MockGateway)

	_, err := execute(t, gw, "list", "--sort", "size")

	assert.ErrorIs(t, err, view.ErrUnknownField)
	gw.AssertNotCalled(t, "ListIssues", mock.Anything, mock.Anything)
}

func TestBoardCmd_GroupsByColumn(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListIssues", mock.Anything, "KAN").Return(issues(), nil)

	out, err := execute(t, gw, "board", "--search", "FIX")

	require.NoError(t, err)
	assert.Contains(t, out, "TO DO (0)")
	assert.Contains(t, out, "IN PROGRESS (1)")
	assert.Contains(t, out, "KAN-2")
	assert.NotContains(t, out, "KAN-1")
}

func TestSummaryCmd(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListIssues", mock.Anything, "KAN").Return(issues(), nil)

	out, err := execute(t, gw, "summary")

	require.NoError(t, err)
	assert.Contains(t, out, "Total: 3")
	assert.Contains(t, out, "Alice")
}

func TestCreateCmd(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListIssues", mock.Anything, "KAN").Return(issues(), nil)
	gw.On("CreateIssue", mock.Anything, "KAN", mock.MatchedBy(func(in model.NewTask) bool {
		return in.Title == "Ship it" && in.Status == model.StatusToDo && in.Type == model.TypeBug
	})).Return(model.Task{ID: "4", Key: "KAN-4", Title: "Ship it", Status: model.StatusToDo}, nil)

	out, err := execute(t, gw, "create", "Ship it", "--type", "Bug")

	require.NoError(t, err)
	assert.Contains(t, out, "Created KAN-4: Ship it")
	gw.AssertExpectations(t)
}

func TestAdvanceCmd_ByKey(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListIssues", mock.Anything, "KAN").Return(issues(), nil)
	gw.On("PatchIssue", mock.Anything, "1", model.StatusPatch{Status: model.StatusInProgress}).Return(nil, nil)

	out, err := execute(t, gw, "advance", "kan-1")

	require.NoError(t, err)
	assert.Contains(t, out, "kan-1 -> IN PROGRESS")
	gw.AssertExpectations(t)
}

func TestMoveCmd_InvalidStatus(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListIssues", mock.Anything, "KAN").Return(issues(), nil)

	_, err := execute(t, gw, "move", "KAN-1", "BLOCKED")

	assert.Error(t, err)
	gw.AssertNotCalled(t, "PatchIssue", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteCmd_ReportsRejection(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListIssues", mock.Anything, "KAN").Return(issues(), nil)
	gw.On("DeleteIssue", mock.Anything, "2").Return(errors.New("boom"))

	_, err := execute(t, gw, "delete", "KAN-2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestProjectsCreateCmd_Validates(t *testing.T) {
	gw := new(MockGateway)

	_, err := execute(t, gw, "projects", "create", "--name", "Kanban", "--key", "K")

	assert.Error(t, err)
	gw.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
}

func TestProjectsCmd_Lists(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListProjects", mock.Anything).Return([]model.Project{{ID: 1, Key: "KAN", Name: "Kanban", Category: "Software"}}, nil)

	out, err := execute(t, gw, "projects")

	require.NoError(t, err)
	assert.Contains(t, out, "Kanban")
}
