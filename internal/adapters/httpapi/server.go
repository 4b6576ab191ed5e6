// Package httpapi exposes the task engine over a JSON REST API using echo.
package httpapi

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/xvierd/pomoflow/internal/ports"
	"golang.org/x/time/rate"
)

const (
	rateLimitExpiry     = 3 * time.Minute
	defaultMaxRemaining = 24 * time.Hour
)

// Options configures the API.
type Options struct {
	// DefaultUnits is the estimation given to tasks created without one.
	DefaultUnits int
	// RateLimit caps requests per client IP per minute; 0 disables it.
	RateLimit int
	// MaxRemaining bounds the time left accepted by a pause; 0 means 24h.
	MaxRemaining time.Duration
	Logger       *slog.Logger
}

// New builds an echo instance with all routes registered.
func New(engine ports.TaskEngine, session ports.SessionController, opts Options) *echo.Echo {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	if opts.RateLimit > 0 {
		e.Use(rateLimiter(opts.RateLimit))
	}

	maxRemaining := opts.MaxRemaining
	if maxRemaining <= 0 {
		maxRemaining = defaultMaxRemaining
	}

	h := NewHandler(engine, session, opts.DefaultUnits)
	h.maxRemaining = maxRemaining
	Register(e, h)

	return e
}

// requestLogger logs one line per request with its request ID.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			logger.Info("http request",
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"method", req.Method,
				"path", c.Path(),
				"status", res.Status,
				"duration", time.Since(start),
			)
			return nil
		}
	}
}

// rateLimiter allows perMinute requests per client IP, with bursts up to
// the same amount. Idle clients are dropped from the store after
// rateLimitExpiry.
func rateLimiter(perMinute int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: rateLimitExpiry,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
	})
}
