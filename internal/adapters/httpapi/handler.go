package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	domain.TaskDTO
	// Estimation is the number of WORK+BREAK units; nil uses the default.
	Estimation *int `json:"estimation,omitempty"`
}

// UpdateTaskRequest is the body of PUT /tasks/:id. Absent fields are kept.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Source      *string `json:"source"`
	Priority    *int    `json:"priority"`
	StartDate   *int64  `json:"start_date"`
	EndDate     *int64  `json:"end_date"`
}

// EstimationRequest is the body of POST /tasks/:id/estimation.
type EstimationRequest struct {
	Delta int `json:"delta"`
}

// PauseRequest is the body of POST /session/pause.
type PauseRequest struct {
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// SessionResponse is the JSON form of a session view.
type SessionResponse struct {
	Task        domain.TaskWithPomodorosDTO `json:"task"`
	Current     *domain.PomodoroDTO         `json:"current"`
	LastSegment *bool                       `json:"last_segment,omitempty"`
}

// Handler serves the REST API.
type Handler struct {
	engine       ports.TaskEngine
	session      ports.SessionController
	defaultUnits int
	maxRemaining time.Duration
}

// NewHandler creates a new handler.
func NewHandler(engine ports.TaskEngine, session ports.SessionController, defaultUnits int) *Handler {
	return &Handler{
		engine:       engine,
		session:      session,
		defaultUnits: defaultUnits,
		maxRemaining: defaultMaxRemaining,
	}
}

// ListTasks returns all tasks with their pomodoros. With ?q= it returns a
// fuzzy title search instead.
func (h *Handler) ListTasks(c echo.Context) error {
	ctx := c.Request().Context()

	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		found, err := h.engine.SearchTasks(ctx, q)
		if err != nil {
			return httpError(err)
		}
		tasks := make([]domain.TaskDTO, 0, len(found))
		for _, t := range found {
			tasks = append(tasks, t.ToDTO())
		}
		return c.JSON(http.StatusOK, echo.Map{
			"count": len(tasks),
			"tasks": tasks,
		})
	}

	all, err := h.engine.GetTasksWithPomodoros(ctx)
	if err != nil {
		return httpError(err)
	}

	tasks := make([]domain.TaskWithPomodorosDTO, 0, len(all))
	for _, agg := range all {
		tasks = append(tasks, agg.ToDTO())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

// CreateTask adds a task with its estimation.
func (h *Handler) CreateTask(c echo.Context) error {
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Title) == "" {
		return httpError(domain.ErrEmptyTaskTitle)
	}

	req.ID = nil
	task, err := domain.TaskFromDTO(req.TaskDTO)
	if err != nil {
		return httpError(err)
	}

	units := h.defaultUnits
	if req.Estimation != nil {
		units = *req.Estimation
	}

	ctx := c.Request().Context()
	if _, err := h.engine.AddTaskWithEstimation(ctx, task, units); err != nil {
		return httpError(err)
	}

	return h.respondWithTask(c, http.StatusCreated, task.ID.Int64())
}

// GetTask returns one task with its pomodoros.
func (h *Handler) GetTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return httpError(err)
	}
	return h.respondWithTask(c, http.StatusOK, id)
}

// UpdateTask applies the fields present in the body to an existing task.
func (h *Handler) UpdateTask(c echo.Context) error {
	task, err := h.loadTask(c)
	if err != nil {
		return httpError(err)
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := applyUpdate(task, req); err != nil {
		return httpError(err)
	}

	ctx := c.Request().Context()
	if err := h.engine.UpdateTask(ctx, task); err != nil {
		return httpError(err)
	}
	return h.respondWithTask(c, http.StatusOK, task.ID.Int64())
}

// DeleteTask removes a task. Deleting an absent task succeeds.
func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return httpError(err)
	}
	if err := h.engine.DeleteTask(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeEstimation adds or removes one WORK+BREAK unit.
func (h *Handler) ChangeEstimation(c echo.Context) error {
	task, err := h.loadTask(c)
	if err != nil {
		return httpError(err)
	}

	var req EstimationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	ctx := c.Request().Context()
	switch req.Delta {
	case 1:
		err = h.engine.IncreaseEstimation(ctx, task)
	case -1:
		err = h.engine.DecreaseEstimation(ctx, task)
	default:
		err = fmt.Errorf("%w: delta must be 1 or -1", errBadRequest)
	}
	if err != nil {
		return httpError(err)
	}
	return h.respondWithTask(c, http.StatusOK, task.ID.Int64())
}

// ActivateTask makes the task the single active task.
func (h *Handler) ActivateTask(c echo.Context) error {
	return h.applyToTask(c, h.engine.SetActiveTask)
}

// CompleteTask finishes the task and cancels its unfinished pomodoros.
func (h *Handler) CompleteTask(c echo.Context) error {
	return h.applyToTask(c, h.engine.CompleteTask)
}

// GetActiveTask returns the active task, or null.
func (h *Handler) GetActiveTask(c echo.Context) error {
	agg, err := h.engine.GetActiveTaskWithPomodoros(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if agg == nil {
		return c.JSON(http.StatusOK, echo.Map{"active_task": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"active_task": agg.ToDTO()})
}

// GetPomodoro returns one pomodoro.
func (h *Handler) GetPomodoro(c echo.Context) error {
	p, err := h.loadPomodoro(c)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p.ToDTO())
}

// CompletePomodoro marks a pomodoro FINISHED.
func (h *Handler) CompletePomodoro(c echo.Context) error {
	return h.applyToPomodoro(c, h.engine.CompletePomodoro)
}

// CancelPomodoro marks a pomodoro NOT_NEEDED.
func (h *Handler) CancelPomodoro(c echo.Context) error {
	return h.applyToPomodoro(c, h.engine.CancelPomodoro)
}

// GetSession returns the active task and its current pomodoro.
func (h *Handler) GetSession(c echo.Context) error {
	view, err := h.session.Current(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse(view, nil))
}

// StartSession starts the current pomodoro.
func (h *Handler) StartSession(c echo.Context) error {
	view, err := h.session.Start(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse(view, nil))
}

// PauseSession pauses the current pomodoro.
func (h *Handler) PauseSession(c echo.Context) error {
	var req PauseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if req.RemainingSeconds < 0 {
		return httpError(fmt.Errorf("%w: remaining_seconds must not be negative", errBadRequest))
	}
	if req.RemainingSeconds > int64(h.maxRemaining/time.Second) {
		return httpError(fmt.Errorf("%w: remaining_seconds must not exceed %d", errBadRequest, int64(h.maxRemaining/time.Second)))
	}

	view, err := h.session.Pause(c.Request().Context(), time.Duration(req.RemainingSeconds)*time.Second)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse(view, nil))
}

// SkipSession skips the current pomodoro.
func (h *Handler) SkipSession(c echo.Context) error {
	result, err := h.session.Skip(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	last := result.LastSegment
	return c.JSON(http.StatusOK, sessionResponse(result.View, &last))
}

// CompleteSession finishes the current pomodoro.
func (h *Handler) CompleteSession(c echo.Context) error {
	view, err := h.session.Complete(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse(view, nil))
}

func (h *Handler) applyToTask(c echo.Context, op func(ctx context.Context, task *domain.Task) error) error {
	task, err := h.loadTask(c)
	if err != nil {
		return httpError(err)
	}
	if err := op(c.Request().Context(), task); err != nil {
		return httpError(err)
	}
	return h.respondWithTask(c, http.StatusOK, task.ID.Int64())
}

func (h *Handler) applyToPomodoro(c echo.Context, op func(ctx context.Context, p *domain.Pomodoro) error) error {
	p, err := h.loadPomodoro(c)
	if err != nil {
		return httpError(err)
	}
	if err := op(c.Request().Context(), p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p.ToDTO())
}

func (h *Handler) loadTask(c echo.Context) (*domain.Task, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	task, err := h.engine.GetTask(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound)
	}
	return task, nil
}

func (h *Handler) loadPomodoro(c echo.Context) (*domain.Pomodoro, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	p, err := h.engine.GetPomodoro(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("pomodoro %d: %w", id, domain.ErrPomodoroNotFound)
	}
	return p, nil
}

func (h *Handler) respondWithTask(c echo.Context, status int, id int64) error {
	agg, err := h.engine.GetTaskWithPomodoros(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if agg == nil {
		return httpError(fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound))
	}
	return c.JSON(status, agg.ToDTO())
}

func applyUpdate(task *domain.Task, req UpdateTaskRequest) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return domain.ErrEmptyTaskTitle
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		st, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			return err
		}
		task.Status = st
	}
	if req.Source != nil {
		src, err := domain.ParseTaskSource(*req.Source)
		if err != nil {
			return err
		}
		task.Source = src
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.StartDate != nil {
		task.StartDate = epochTime(*req.StartDate)
	}
	if req.EndDate != nil {
		task.EndDate = epochTime(*req.EndDate)
	}
	return nil
}

func epochTime(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

func sessionResponse(view *domain.SessionView, lastSegment *bool) SessionResponse {
	resp := SessionResponse{
		Task:        view.Task.ToDTO(),
		LastSegment: lastSegment,
	}
	if view.Current != nil {
		dto := view.Current.ToDTO()
		resp.Current = &dto
	}
	return resp
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: id must be a positive integer", errBadRequest)
	}
	return id, nil
}
