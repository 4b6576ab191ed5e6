package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xvierd/pomoflow/internal/domain"
)

var errBadRequest = errors.New("bad request")

// httpError maps engine errors onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrEmptyTaskTitle),
		errors.Is(err, domain.ErrInvalidEstimation),
		errors.Is(err, domain.ErrInvalidValue):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err), errors.Is(err, domain.ErrNoActiveTask):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoAvailableUnit), errors.Is(err, domain.ErrNoCurrentPomodoro):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
}
