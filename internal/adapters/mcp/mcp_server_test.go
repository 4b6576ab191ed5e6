package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomoflow/internal/adapters/memory"
	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	return NewServer(services.NewTaskService(store), services.NewSessionService(store), "test")
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func decode(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.NotNil(t, result)
	require.False(t, result.IsError, "unexpected tool error: %v", result.Content)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func createTask(t *testing.T, s *Server, title string, units int) int64 {
	t.Helper()
	result, err := s.handleCreateTask(context.Background(), call(map[string]any{
		"title":      title,
		"estimation": float64(units),
	}))
	require.NoError(t, err)

	var agg domain.TaskWithPomodorosDTO
	decode(t, result, &agg)
	require.NotNil(t, agg.Task.ID)
	return *agg.Task.ID
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.server)
	assert.NotNil(t, s.engine)
	assert.NotNil(t, s.session)
}

func TestServer_CreateAndGetTask(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	id := createTask(t, s, "Write docs", 2)

	result, err := s.handleGetTask(ctx, call(map[string]any{"task_id": float64(id)}))
	require.NoError(t, err)

	var agg domain.TaskWithPomodorosDTO
	decode(t, result, &agg)
	assert.Equal(t, "Write docs", agg.Task.Title)
	assert.Equal(t, string(domain.TaskNotStarted), agg.Task.Status)
	require.Len(t, agg.Pomodoros, 4)
	assert.Equal(t, string(domain.PomodoroWork), agg.Pomodoros[0].Type)
	assert.Equal(t, string(domain.PomodoroBreak), agg.Pomodoros[1].Type)
}

func TestServer_CreateTask_Validation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing title", map[string]any{}},
		{"empty title", map[string]any{"title": ""}},
		{"negative estimation", map[string]any{"title": "x", "estimation": float64(-2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleCreateTask(ctx, call(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestServer_EstimationTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	id := createTask(t, s, "Estimate me", 1)
	args := map[string]any{"task_id": float64(id)}

	result, err := s.handleIncreaseEstimation(ctx, call(args))
	require.NoError(t, err)
	var agg domain.TaskWithPomodorosDTO
	decode(t, result, &agg)
	assert.Len(t, agg.Pomodoros, 4)

	for i := 0; i < 2; i++ {
		result, err = s.handleDecreaseEstimation(ctx, call(args))
		require.NoError(t, err)
		require.False(t, result.IsError)
	}

	result, err = s.handleDecreaseEstimation(ctx, call(args))
	require.NoError(t, err)
	assert.True(t, result.IsError, "removing from an empty task must be reported")
}

func TestServer_ActivateAndSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleGetSession(ctx, call(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError, "no active task yet")

	first := createTask(t, s, "First", 1)
	second := createTask(t, s, "Second", 1)

	_, err = s.handleActivateTask(ctx, call(map[string]any{"task_id": float64(first)}))
	require.NoError(t, err)

	result, err = s.handleStartPomodoro(ctx, call(nil))
	require.NoError(t, err)
	var session map[string]json.RawMessage
	decode(t, result, &session)
	var current domain.PomodoroDTO
	require.NoError(t, json.Unmarshal(session["current"], &current))
	assert.Equal(t, string(domain.PomodoroStarted), current.Status)

	_, err = s.handleActivateTask(ctx, call(map[string]any{"task_id": float64(second)}))
	require.NoError(t, err)

	result, err = s.handleGetActiveTask(ctx, call(nil))
	require.NoError(t, err)
	var active struct {
		ActiveTask domain.TaskWithPomodorosDTO `json:"active_task"`
	}
	decode(t, result, &active)
	require.NotNil(t, active.ActiveTask.Task.ID)
	assert.Equal(t, second, *active.ActiveTask.Task.ID)

	result, err = s.handleGetTask(ctx, call(map[string]any{"task_id": float64(first)}))
	require.NoError(t, err)
	var firstAgg domain.TaskWithPomodorosDTO
	decode(t, result, &firstAgg)
	assert.Equal(t, string(domain.TaskPaused), firstAgg.Task.Status)
	assert.Equal(t, string(domain.PomodoroInterrupted), firstAgg.Pomodoros[0].Status)
}

func TestServer_SkipReportsLastSegment(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	id := createTask(t, s, "Short", 1)

	_, err := s.handleActivateTask(ctx, call(map[string]any{"task_id": float64(id)}))
	require.NoError(t, err)

	_, err = s.handleCompletePomodoro(ctx, call(nil))
	require.NoError(t, err)

	result, err := s.handleSkipPomodoro(ctx, call(nil))
	require.NoError(t, err)
	var skipped struct {
		LastSegment bool `json:"last_segment"`
	}
	decode(t, result, &skipped)
	assert.True(t, skipped.LastSegment)
}

func TestServer_CompleteTask(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	id := createTask(t, s, "Done soon", 1)

	result, err := s.handleCompleteTask(ctx, call(map[string]any{"task_id": float64(id)}))
	require.NoError(t, err)

	var agg domain.TaskWithPomodorosDTO
	decode(t, result, &agg)
	assert.Equal(t, string(domain.TaskFinished), agg.Task.Status)
	for _, p := range agg.Pomodoros {
		assert.Equal(t, string(domain.PomodoroNotNeeded), p.Status)
	}
}

func TestServer_PomodoroTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	id := createTask(t, s, "Segments", 1)

	result, err := s.handleGetTask(ctx, call(map[string]any{"task_id": float64(id)}))
	require.NoError(t, err)
	var agg domain.TaskWithPomodorosDTO
	decode(t, result, &agg)

	result, err = s.handleCancelPomodoro(ctx, call(map[string]any{"pomodoro_id": float64(*agg.Pomodoros[1].ID)}))
	require.NoError(t, err)
	var p domain.PomodoroDTO
	decode(t, result, &p)
	assert.Equal(t, string(domain.PomodoroNotNeeded), p.Status)

	result, err = s.handleCompletePomodoro(ctx, call(map[string]any{"pomodoro_id": float64(*agg.Pomodoros[0].ID)}))
	require.NoError(t, err)
	decode(t, result, &p)
	assert.Equal(t, string(domain.PomodoroFinished), p.Status)

	result, err = s.handleCancelPomodoro(ctx, call(map[string]any{"pomodoro_id": float64(999)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_NotFoundAndBadIDs(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing id", map[string]any{}},
		{"fractional id", map[string]any{"task_id": 1.5}},
		{"unknown id", map[string]any{"task_id": float64(404)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleUpdateTask(ctx, call(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestServer_UpdateAndSearch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	id := createTask(t, s, "Draft", 0)

	result, err := s.handleUpdateTask(ctx, call(map[string]any{
		"task_id":  float64(id),
		"title":    "Release checklist",
		"priority": float64(3),
	}))
	require.NoError(t, err)
	var agg domain.TaskWithPomodorosDTO
	decode(t, result, &agg)
	assert.Equal(t, "Release checklist", agg.Task.Title)
	assert.Equal(t, 3, agg.Task.Priority)

	result, err = s.handleSearchTasks(ctx, call(map[string]any{"query": "release"}))
	require.NoError(t, err)
	var found struct {
		TotalCount int `json:"total_count"`
	}
	decode(t, result, &found)
	assert.Equal(t, 1, found.TotalCount)

	result, err = s.handleDeleteTask(ctx, call(map[string]any{"task_id": float64(id)}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = s.handleListTasks(ctx, call(nil))
	require.NoError(t, err)
	var list struct {
		TotalCount int `json:"total_count"`
	}
	decode(t, result, &list)
	assert.Equal(t, 0, list.TotalCount)
}
