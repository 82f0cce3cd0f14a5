package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"serverless-workflow/backend/internal/logging"
	"serverless-workflow/backend/internal/views/task"
)

// GetTaskProgress renders the progress view of a scaffolder task. Toggles
// are applied to the panel state after the stream has driven it.
// (GET /tasks/{taskId}/progress)
func (s *Server) GetTaskProgress(c echo.Context, taskId string, params GetTaskProgressParams) error {
	var names []string
	if params.Toggle != nil {
		names = *params.Toggle
	}
	toggles, err := task.ParseToggles(names)
	if err != nil {
		return err
	}

	stream, err := task.Load(c.Request().Context(), s.Tasks, taskId)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task.BuildProgress(taskId, stream, task.PanelFor(stream, toggles...)))
}

// (POST /tasks/{taskId}/cancel)
func (s *Server) CancelTask(c echo.Context, taskId string) error {
	ctx := c.Request().Context()
	stream, err := task.Load(ctx, s.Tasks, taskId)
	if err != nil {
		return err
	}
	if err := task.Cancel(ctx, s.Tasks, taskId, stream); err != nil {
		return err
	}
	s.Logger.Info("Task cancellation requested", logging.TaskID(taskId))
	return c.NoContent(http.StatusAccepted)
}
