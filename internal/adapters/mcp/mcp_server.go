// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

var errInvalidArgument = errors.New("invalid argument")

// Server exposes the task engine as MCP tools using mark3labs/mcp-go.
type Server struct {
	server  *server.MCPServer
	engine  ports.TaskEngine
	session ports.SessionController
}

// NewServer creates a new MCP server instance.
func NewServer(engine ports.TaskEngine, session ports.SessionController, version string) *Server {
	s := &Server{
		engine:  engine,
		session: session,
	}

	s.server = server.NewMCPServer(
		"pomoflow",
		version,
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// Start serves MCP requests via stdio until the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	return server.ServeStdio(s.server, server.WithStdioContextFunc(func(context.Context) context.Context {
		return ctx
	}))
}

func taskIDParam() mcp.ToolOption {
	return mcp.WithNumber(
		"task_id",
		mcp.Required(),
		mcp.Description("The ID of the task"),
	)
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"list_tasks",
			mcp.WithDescription("List all tasks with their pomodoros, optionally filtered by status"),
			mcp.WithString(
				"status",
				mcp.Description("Filter tasks by status"),
				mcp.Enum(
					string(domain.TaskNotStarted),
					string(domain.TaskStarted),
					string(domain.TaskPaused),
					string(domain.TaskFinished),
				),
			),
		),
		s.handleListTasks,
	)

	s.server.AddTool(
		mcp.NewTool("get_task", mcp.WithDescription("Get a task with its pomodoros"), taskIDParam()),
		s.handleGetTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"search_tasks",
			mcp.WithDescription("Fuzzy search tasks by title"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Text to match against task titles")),
		),
		s.handleSearchTasks,
	)

	s.server.AddTool(
		mcp.NewTool(
			"create_task",
			mcp.WithDescription("Create a new task with an estimation in WORK+BREAK units"),
			mcp.WithString("title", mcp.Required(), mcp.Description("The title of the task")),
			mcp.WithString("description", mcp.Description("Optional description of the task")),
			mcp.WithNumber("estimation", mcp.Description("Number of WORK+BREAK units (default 1)")),
			mcp.WithNumber("priority", mcp.Description("Priority, lower is more urgent")),
		),
		s.handleCreateTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"update_task",
			mcp.WithDescription("Update the title, description or priority of a task"),
			taskIDParam(),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithNumber("priority", mcp.Description("New priority")),
		),
		s.handleUpdateTask,
	)

	s.server.AddTool(
		mcp.NewTool("delete_task", mcp.WithDescription("Delete a task and its pomodoros"), taskIDParam()),
		s.handleDeleteTask,
	)

	s.server.AddTool(
		mcp.NewTool("increase_estimation", mcp.WithDescription("Append one WORK+BREAK unit to a task"), taskIDParam()),
		s.handleIncreaseEstimation,
	)

	s.server.AddTool(
		mcp.NewTool("decrease_estimation", mcp.WithDescription("Remove the last unstarted WORK+BREAK unit of a task"), taskIDParam()),
		s.handleDecreaseEstimation,
	)

	s.server.AddTool(
		mcp.NewTool("activate_task", mcp.WithDescription("Make a task the single active task"), taskIDParam()),
		s.handleActivateTask,
	)

	s.server.AddTool(
		mcp.NewTool("complete_task", mcp.WithDescription("Mark a task as finished and close its open pomodoros"), taskIDParam()),
		s.handleCompleteTask,
	)

	s.server.AddTool(
		mcp.NewTool("get_active_task", mcp.WithDescription("Get the active task with its pomodoros")),
		s.handleGetActiveTask,
	)

	s.server.AddTool(
		mcp.NewTool("get_session", mcp.WithDescription("Get the active task and the pomodoro to run next")),
		s.handleGetSession,
	)

	s.server.AddTool(
		mcp.NewTool("start_pomodoro", mcp.WithDescription("Start the current pomodoro of the active task")),
		s.handleStartPomodoro,
	)

	s.server.AddTool(
		mcp.NewTool(
			"pause_pomodoro",
			mcp.WithDescription("Pause the current pomodoro of the active task"),
			mcp.WithNumber("remaining_seconds", mcp.Required(), mcp.Description("Seconds left on the pomodoro")),
		),
		s.handlePausePomodoro,
	)

	s.server.AddTool(
		mcp.NewTool("skip_pomodoro", mcp.WithDescription("Skip the current pomodoro of the active task")),
		s.handleSkipPomodoro,
	)

	s.server.AddTool(
		mcp.NewTool(
			"complete_pomodoro",
			mcp.WithDescription("Finish a pomodoro; defaults to the current pomodoro of the active task"),
			mcp.WithNumber("pomodoro_id", mcp.Description("Optional pomodoro ID")),
		),
		s.handleCompletePomodoro,
	)

	s.server.AddTool(
		mcp.NewTool(
			"cancel_pomodoro",
			mcp.WithDescription("Mark a pomodoro as not needed"),
			mcp.WithNumber("pomodoro_id", mcp.Required(), mcp.Description("The ID of the pomodoro")),
		),
		s.handleCancelPomodoro,
	)
}

// handleListTasks handles the list_tasks tool.
func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := request.GetString("status", "")

	all, err := s.engine.GetTasksWithPomodoros(ctx)
	if err != nil {
		return failure(err)
	}

	tasks := make([]domain.TaskWithPomodorosDTO, 0, len(all))
	for _, agg := range all {
		if status != "" && string(agg.Task.Status) != status {
			continue
		}
		tasks = append(tasks, agg.ToDTO())
	}

	result := map[string]any{
		"tasks":       tasks,
		"total_count": len(tasks),
	}
	if status != "" {
		result["filter_status"] = status
	}
	return jsonResult(result)
}

// handleGetTask handles the get_task tool.
func (s *Server) handleGetTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "task_id")
	if err != nil {
		return failure(err)
	}

	agg, err := s.engine.GetTaskWithPomodoros(ctx, id)
	if err != nil {
		return failure(err)
	}
	if agg == nil {
		return failure(fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound))
	}
	return jsonResult(agg.ToDTO())
}

// handleSearchTasks handles the search_tasks tool.
func (s *Server) handleSearchTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required: " + err.Error()), nil
	}

	tasks, err := s.engine.SearchTasks(ctx, query)
	if err != nil {
		return failure(err)
	}

	dtos := make([]domain.TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, t.ToDTO())
	}
	return jsonResult(map[string]any{"tasks": dtos, "total_count": len(dtos)})
}

// handleCreateTask handles the create_task tool.
func (s *Server) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required: " + err.Error()), nil
	}

	task, err := domain.NewTask(title)
	if err != nil {
		return failure(err)
	}
	task.Description = request.GetString("description", "")
	task.Priority = int(request.GetFloat("priority", 0))

	units := int(request.GetFloat("estimation", 1))
	if _, err := s.engine.AddTaskWithEstimation(ctx, task, units); err != nil {
		return failure(err)
	}

	return s.respondWithTask(ctx, task)
}

// handleUpdateTask handles the update_task tool.
func (s *Server) handleUpdateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := s.loadTask(ctx, request)
	if err != nil {
		return failure(err)
	}

	args := request.GetArguments()
	if _, ok := args["title"]; ok {
		title := request.GetString("title", "")
		if title == "" {
			return failure(domain.ErrEmptyTaskTitle)
		}
		task.Title = title
	}
	if _, ok := args["description"]; ok {
		task.Description = request.GetString("description", "")
	}
	if _, ok := args["priority"]; ok {
		task.Priority = int(request.GetFloat("priority", 0))
	}

	if err := s.engine.UpdateTask(ctx, task); err != nil {
		return failure(err)
	}
	return s.respondWithTask(ctx, task)
}

// handleDeleteTask handles the delete_task tool.
func (s *Server) handleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "task_id")
	if err != nil {
		return failure(err)
	}
	if err := s.engine.DeleteTask(ctx, id); err != nil {
		return failure(err)
	}
	return jsonResult(map[string]any{"deleted": id})
}

// handleIncreaseEstimation handles the increase_estimation tool.
func (s *Server) handleIncreaseEstimation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.applyToTask(ctx, request, s.engine.IncreaseEstimation)
}

// handleDecreaseEstimation handles the decrease_estimation tool.
func (s *Server) handleDecreaseEstimation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.applyToTask(ctx, request, s.engine.DecreaseEstimation)
}

// handleActivateTask handles the activate_task tool.
func (s *Server) handleActivateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.applyToTask(ctx, request, s.engine.SetActiveTask)
}

// handleCompleteTask handles the complete_task tool.
func (s *Server) handleCompleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.applyToTask(ctx, request, s.engine.CompleteTask)
}

// handleGetActiveTask handles the get_active_task tool.
func (s *Server) handleGetActiveTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agg, err := s.engine.GetActiveTaskWithPomodoros(ctx)
	if err != nil {
		return failure(err)
	}
	if agg == nil {
		return jsonResult(map[string]any{"active_task": nil})
	}
	return jsonResult(map[string]any{"active_task": agg.ToDTO()})
}

// handleGetSession handles the get_session tool.
func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.session.Current(ctx)
	if err != nil {
		return failure(err)
	}
	return jsonResult(sessionResult(view, nil))
}

// handleStartPomodoro handles the start_pomodoro tool.
func (s *Server) handleStartPomodoro(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.session.Start(ctx)
	if err != nil {
		return failure(err)
	}
	return jsonResult(sessionResult(view, nil))
}

// handlePausePomodoro handles the pause_pomodoro tool.
func (s *Server) handlePausePomodoro(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	secs, err := request.RequireFloat("remaining_seconds")
	if err != nil {
		return mcp.NewToolResultError("remaining_seconds is required: " + err.Error()), nil
	}

	view, err := s.session.Pause(ctx, time.Duration(secs)*time.Second)
	if err != nil {
		return failure(err)
	}
	return jsonResult(sessionResult(view, nil))
}

// handleSkipPomodoro handles the skip_pomodoro tool.
func (s *Server) handleSkipPomodoro(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.session.Skip(ctx)
	if err != nil {
		return failure(err)
	}
	last := result.LastSegment
	return jsonResult(sessionResult(result.View, &last))
}

// handleCompletePomodoro handles the complete_pomodoro tool.
func (s *Server) handleCompletePomodoro(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := request.GetArguments()["pomodoro_id"]; !ok {
		view, err := s.session.Complete(ctx)
		if err != nil {
			return failure(err)
		}
		return jsonResult(sessionResult(view, nil))
	}

	return s.applyToPomodoro(ctx, request, s.engine.CompletePomodoro)
}

// handleCancelPomodoro handles the cancel_pomodoro tool.
func (s *Server) handleCancelPomodoro(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.applyToPomodoro(ctx, request, s.engine.CancelPomodoro)
}

// applyToTask loads the task named by task_id, runs op on it and responds
// with the refreshed task.
func (s *Server) applyToTask(ctx context.Context, request mcp.CallToolRequest, op func(context.Context, *domain.Task) error) (*mcp.CallToolResult, error) {
	task, err := s.loadTask(ctx, request)
	if err != nil {
		return failure(err)
	}
	if err := op(ctx, task); err != nil {
		return failure(err)
	}
	return s.respondWithTask(ctx, task)
}

func (s *Server) applyToPomodoro(ctx context.Context, request mcp.CallToolRequest, op func(context.Context, *domain.Pomodoro) error) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "pomodoro_id")
	if err != nil {
		return failure(err)
	}

	p, err := s.engine.GetPomodoro(ctx, id)
	if err != nil {
		return failure(err)
	}
	if p == nil {
		return failure(fmt.Errorf("pomodoro %d: %w", id, domain.ErrPomodoroNotFound))
	}

	if err := op(ctx, p); err != nil {
		return failure(err)
	}
	return jsonResult(p.ToDTO())
}

func (s *Server) loadTask(ctx context.Context, request mcp.CallToolRequest) (*domain.Task, error) {
	id, err := requireID(request, "task_id")
	if err != nil {
		return nil, err
	}
	task, err := s.engine.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound)
	}
	return task, nil
}

func (s *Server) respondWithTask(ctx context.Context, task *domain.Task) (*mcp.CallToolResult, error) {
	agg, err := s.engine.GetTaskWithPomodoros(ctx, task.ID.Int64())
	if err != nil {
		return failure(err)
	}
	if agg == nil {
		return jsonResult(task.ToDTO())
	}
	return jsonResult(agg.ToDTO())
}

func sessionResult(view *domain.SessionView, lastSegment *bool) map[string]any {
	result := map[string]any{
		"task":    view.Task.ToDTO(),
		"current": nil,
	}
	if view.Current != nil {
		result["current"] = view.Current.ToDTO()
	}
	if lastSegment != nil {
		result["last_segment"] = *lastSegment
	}
	return result
}

func requireID(request mcp.CallToolRequest, name string) (int64, error) {
	v, err := request.RequireFloat(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is required", errInvalidArgument, name)
	}
	if v != float64(int64(v)) || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errInvalidArgument, name)
	}
	return int64(v), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// failure turns caller mistakes and business-rule violations into tool
// errors the model can read. Anything else is an internal error.
func failure(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, errInvalidArgument),
		domain.IsNotFound(err),
		errors.Is(err, domain.ErrNoAvailableUnit),
		errors.Is(err, domain.ErrNoActiveTask),
		errors.Is(err, domain.ErrNoCurrentPomodoro),
		errors.Is(err, domain.ErrEmptyTaskTitle),
		errors.Is(err, domain.ErrInvalidEstimation):
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}
