package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"serverless-workflow/backend/internal/logging"
	"serverless-workflow/backend/internal/services"
	"serverless-workflow/backend/internal/views/task"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Pinger is a dependency whose reachability is reported by the health check
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the operational endpoints of the backend
type Handler struct {
	checks map[string]Pinger
}

// NewHandler creates a new Handler. Every named check is pinged on each
// health request.
func NewHandler(checks map[string]Pinger) *Handler {
	return &Handler{checks: checks}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HandleHealth returns 200 when every check passes and 503 otherwise
func (h *Handler) HandleHealth(c echo.Context) error {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "swf-backend",
		Version:   Version,
	}
	code := http.StatusOK
	if len(h.checks) > 0 {
		status.Checks = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check.Ping(c.Request().Context()); err != nil {
			status.Checks[name] = err.Error()
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Checks[name] = "ok"
	}
	return c.JSON(code, status)
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// writeError writes an RFC 7807 Problem Details JSON error response
func writeError(c echo.Context, status int, detail string) error {
	problem := ProblemDetails{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, problem)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var httpErr *echo.HTTPError
	var respErr *services.ResponseError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, services.ErrWorkflowNotFound), errors.Is(err, services.ErrInstanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidURI), errors.Is(err, services.ErrInvalidDefinition),
		errors.Is(err, task.ErrMissingTaskID), errors.Is(err, task.ErrUnknownToggle):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrNotCancellable):
		return http.StatusConflict
	case errors.As(err, &respErr):
		if respErr.NotFound() {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, services.ErrGraphQL):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every handler error as problem details. Server
// errors are logged; their detail is not echoed to the caller.
func ErrorHandler(logger *logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := statusFor(err)
		detail := err.Error()
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if msg, ok := httpErr.Message.(string); ok {
				detail = msg
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				logging.Error(err))
			if status == http.StatusInternalServerError {
				detail = "internal error"
			}
		}

		if werr := writeError(c, status, detail); werr != nil {
			logger.Error("Failed to write error response", logging.Error(werr))
		}
	}
}
