package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrRejected = errors.New("rejected by gateway")
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway: http %d", e.Code)
	}
	return fmt.Sprintf("gateway: http %d: %s", e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrRejected:
		return e.Code >= 400 && e.Code < 500
	}
	return false
}

// Client talks to the REST API served by cmd/app.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Gateway = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) ListIssues(ctx context.Context, projectKey string) ([]model.Task, error) {
	var tasks []model.Task
	err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectKey)+"/issues", nil, &tasks)
	return tasks, err
}

func (c *Client) CreateIssue(ctx context.Context, projectKey string, in model.NewTask) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectKey)+"/issues", in, &task)
	return task, err
}

func (c *Client) PatchIssue(ctx context.Context, id string, patch model.StatusPatch) (*model.Task, error) {
	var task model.Task
	found := false
	err := c.doRaw(ctx, http.MethodPatch, "/issues/"+url.PathEscape(id), patch, func(body []byte) error {
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		found = true
		return json.Unmarshal(body, &task)
	})
	if err != nil || !found {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteIssue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/issues/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := c.do(ctx, http.MethodGet, "/projects", nil, &projects)
	return projects, err
}

func (c *Client) CreateProject(ctx context.Context, in model.NewProject) (model.Project, error) {
	var project model.Project
	err := c.do(ctx, http.MethodPost, "/projects", in, &project)
	return project, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doRaw(ctx, method, path, in, func(body []byte) error {
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		return json.Unmarshal(body, out)
	})
}

func (c *Client) doRaw(ctx context.Context, method, path string, in any, decode func([]byte) error) error {
	var reqBody io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		return &StatusError{Code: resp.StatusCode, Message: payload.Error}
	}
	if err := decode(body); err != nil {
		return fmt.Errorf("gateway: decode %s %s: %w", method, path, err)
	}
	return nil
}
