package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"tienda-services/internal/service"

	"github.com/labstack/echo/v4"
)

// statusOf maps service error kinds to HTTP statuses. The order matters:
// ErrInvalidArgument wraps its cause and must win over it.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ErrorHandler turns service errors into JSON error responses and leaves
// echo's own HTTP errors to the default handler.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		status := statusOf(err)
		msg := err.Error()
		switch status {
		case http.StatusNotFound:
			slog.WarnContext(c.Request().Context(), "lookup failed",
				"uri", c.Request().RequestURI,
				"error", err,
			)
		case http.StatusInternalServerError:
			slog.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"error", err,
			)
			msg = http.StatusText(status)
		}

		e.DefaultHTTPErrorHandler(echo.NewHTTPError(status, msg), c)
	}
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

func parseIntQuery(c echo.Context, name string) (int64, error) {
	n, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}
