package httpapi

import "github.com/labstack/echo/v4"

// Register wires the handler's routes onto e.
func Register(e *echo.Echo, h *Handler) {
	tasks := e.Group("/tasks")
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/:id", h.GetTask)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.DELETE("/:id", h.DeleteTask)
	tasks.POST("/:id/estimation", h.ChangeEstimation)
	tasks.POST("/:id/activate", h.ActivateTask)
	tasks.POST("/:id/complete", h.CompleteTask)

	e.GET("/active", h.GetActiveTask)

	pomodoros := e.Group("/pomodoros")
	pomodoros.GET("/:id", h.GetPomodoro)
	pomodoros.POST("/:id/complete", h.CompletePomodoro)
	pomodoros.POST("/:id/cancel", h.CancelPomodoro)

	session := e.Group("/session")
	session.GET("", h.GetSession)
	session.POST("/start", h.StartSession)
	session.POST("/pause", h.PauseSession)
	session.POST("/skip", h.SkipSession)
	session.POST("/complete", h.CompleteSession)
}
