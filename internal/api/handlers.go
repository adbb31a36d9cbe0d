package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clipforge/clipforge/internal/taskpool"
)

// handlers serves the diagnostics endpoints for one hosted pool.
type handlers struct {
	pool   *taskpool.Pool
	decode PayloadDecoder
	logger *slog.Logger
}

// submitTaskRequest is the body of POST /tasks.
type submitTaskRequest struct {
	TaskType string          `json:"task_type"`
	Payload  json.RawMessage `json:"payload"`
}

// submitTaskResponse is the body returned once the submitted task resolves.
type submitTaskResponse struct {
	TaskID string `json:"task_id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.pool.Stats())
}

// submitTask is the development harness: it submits one task and holds the
// request open until the task's future resolves or the client goes away.
// Abandoning the request does not cancel the task.
func (h *handlers) submitTask(w http.ResponseWriter, r *http.Request) {
	var req submitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TaskType == "" {
		respondError(w, http.StatusBadRequest, "task_type is required")
		return
	}

	payload, err := h.decode(req.TaskType, req.Payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	future := h.pool.Submit(req.TaskType, payload)

	value, err := future.Await(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Client gave up; nothing useful to write.
			return
		case errors.Is(err, taskpool.ErrPoolClosed):
			status = http.StatusServiceUnavailable
		case errors.Is(err, taskpool.ErrQueueFull):
			status = http.StatusTooManyRequests
		case errors.Is(err, taskpool.ErrUnknownTaskType):
			status = http.StatusNotFound
		case errors.Is(err, taskpool.ErrWorkerCrashed):
			status = http.StatusBadGateway
		default:
			status = http.StatusUnprocessableEntity
		}

		h.logger.Debug("task submission failed",
			"task_id", future.TaskID(),
			"task_type", req.TaskType,
			"error", err)
		respondJSON(w, status, submitTaskResponse{
			TaskID: future.TaskID().String(),
			Error:  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, submitTaskResponse{
		TaskID: future.TaskID().String(),
		Result: value,
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
