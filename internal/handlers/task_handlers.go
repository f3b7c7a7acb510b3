package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"todoList/internal/handlers/dto"
	"todoList/internal/location"
	"todoList/internal/logger"
	"todoList/internal/middleware"
	"todoList/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	Stager      Stager
	Geocoder    location.Geocoder
}

func NewTaskHandler(taskService TaskService, stager Stager, geocoder location.Geocoder) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		Stager:      stager,
		Geocoder:    geocoder,
	}
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		logger.Warn("HTTP: empty task id", zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "task id is required")
		return "", false
	}
	return id, true
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, ok := task.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		logger.Warn("HTTP: invalid filter",
			zap.String("filter", r.URL.Query().Get("filter")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "filter must be all, pending or completed")
		return
	}

	tasks := h.TaskService.ListTasks(r.Context(), middleware.GetUserEmail(r.Context()), filter)

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("count", len(tasks)),
		zap.String("filter", string(filter)),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.TaskService.Stats(r.Context(), middleware.GetUserEmail(r.Context()))
	writeJSON(w, http.StatusOK, dto.FromStats(stats))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	form, err := readTaskForm(r, h.Stager)
	if err != nil {
		h.rejectForm(w, r, err)
		return
	}
	defer form.close()

	locator := location.NewDevice(r.Header.Get(location.Header), h.Geocoder)
	created, err := h.TaskService.CreateTask(r.Context(), middleware.GetUserEmail(r.Context()), form.createDraft(), locator)
	if err != nil {
		handleServiceError(w, r, "create_task", err)
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.GetTask(r.Context(), middleware.GetUserEmail(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, "get_task", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) EditTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	form, err := readTaskForm(r, h.Stager)
	if err != nil {
		h.rejectForm(w, r, err)
		return
	}
	defer form.close()

	draft, err := form.editDraft()
	if err != nil {
		logger.Warn("HTTP: invalid photo action", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.TaskService.EditTask(r.Context(), middleware.GetUserEmail(r.Context()), id, draft)
	if err != nil {
		handleServiceError(w, r, "edit_task", err)
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), middleware.GetUserEmail(r.Context()), id); err != nil {
		handleServiceError(w, r, "delete_task", err)
		return
	}

	logger.Info("HTTP_OUT: task deleted", zap.String("task_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.ToggleTask(r.Context(), middleware.GetUserEmail(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, "toggle_task", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromTask(t))
}

// ReplaceTasks replaces all of the caller's tasks with the posted array.
func (h *TaskHandler) ReplaceTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: wrong content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var tasks []*task.Task
	if err := json.NewDecoder(r.Body).Decode(&tasks); err != nil {
		logger.Warn("HTTP: invalid JSON", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	// [] clears the caller's tasks, so a null body must not pass for one
	if tasks == nil {
		responseWithError(w, http.StatusBadRequest, "request body must be a JSON array")
		return
	}

	saved, err := h.TaskService.ReplaceTasks(r.Context(), middleware.GetUserEmail(r.Context()), tasks)
	if err != nil {
		handleServiceError(w, r, "replace_tasks", err)
		return
	}

	logger.Info("HTTP_OUT: tasks replaced",
		zap.Int("count", len(saved)),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.FromTaskList(saved))
}

func (h *TaskHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	rc, err := h.TaskService.OpenPhoto(r.Context(), middleware.GetUserEmail(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, "get_photo", err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.Warn("HTTP: photo transfer interrupted", zap.String("task_id", id), zap.Error(err))
	}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	err := h.TaskService.HealthCheck(r.Context())
	if err != nil {
		logger.Error("HTTP: health check failed", err)
	}
	healthCheck(w, err)
}

func (h *TaskHandler) rejectForm(w http.ResponseWriter, r *http.Request, err error) {
	logger.Warn("HTTP: could not read task form", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
	if err == errUnsupportedMedia {
		responseWithError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	responseWithError(w, http.StatusBadRequest, err.Error())
}
