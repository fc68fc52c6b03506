package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/gateway"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
	"github.com/BuzzLyutic/taskboard/internal/service"
	"github.com/BuzzLyutic/taskboard/pkg/respond"
)

// TrackerHandler serves the REST side of the gateway contract.
type TrackerHandler struct {
	service gateway.Gateway
	logger  *zap.Logger
}

func NewTrackerHandler(srv gateway.Gateway, logger *zap.Logger) *TrackerHandler {
	return &TrackerHandler{
		service: srv,
		logger:  logger,
	}
}

// Routes монтирует эндпоинты трекера
func (h *TrackerHandler) Routes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.CreateProject)
		r.Get("/{key}/issues", h.ListIssues)
		r.Post("/{key}/issues", h.CreateIssue)
	})
	r.Route("/issues/{id}", func(r chi.Router) {
		r.Patch("/", h.PatchIssue)
		r.Delete("/", h.DeleteIssue)
	})
}

func (h *TrackerHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, projects)
}

func (h *TrackerHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req model.NewProject
	if !h.decode(w, r, &req) {
		return
	}

	project, err := h.service.CreateProject(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/projects/%s", project.Key))
	respond.JSON(w, r, http.StatusCreated, project)
}

func (h *TrackerHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListIssues(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TrackerHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req model.NewTask
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.CreateIssue(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/issues/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TrackerHandler) PatchIssue(w http.ResponseWriter, r *http.Request) {
	var req model.StatusPatch
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.PatchIssue(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if task == nil {
		respond.NoContent(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TrackerHandler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteIssue(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w, r)
}

func (h *TrackerHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return false
	}
	return true
}

func (h *TrackerHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
