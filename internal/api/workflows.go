// Package api contains the HTTP handlers of the workflow backend
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"serverless-workflow/backend/internal/auth"
	"serverless-workflow/backend/internal/catalog"
	"serverless-workflow/backend/internal/logging"
	"serverless-workflow/backend/internal/services"
	"serverless-workflow/backend/internal/views/jobs"
	"serverless-workflow/backend/internal/views/task"
	"serverless-workflow/backend/pkg/models"
)

// MaxDefinitionSize bounds the body of a definition upload
const MaxDefinitionSize = 1 << 20

// TaskAPI reads and cancels scaffolder tasks
type TaskAPI interface {
	task.Source
	task.Canceller
}

// TemplateLister returns the entities a provider contributed to the catalog
type TemplateLister interface {
	ListEntities(ctx context.Context, provider string) ([]catalog.DeferredEntity, error)
}

// Refresher triggers a template refresh
type Refresher interface {
	Refresh(ctx context.Context, reason string) error
}

// Server holds the dependencies for the API server.
type Server struct {
	Workflows services.WorkflowAPI
	Tasks     TaskAPI
	Templates TemplateLister
	Refresher Refresher
	Provider  string
	Logger    *logging.Logger
}

var _ ServerInterface = (*Server)(nil)

// ListWorkflows returns every workflow
// (GET /items)
func (s *Server) ListWorkflows(c echo.Context) error {
	res, err := s.Workflows.ListWorkflows(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// GetWorkflow returns a workflow with its definition
// (GET /items/{id})
func (s *Server) GetWorkflow(c echo.Context, id string) error {
	item, err := s.Workflows.GetWorkflow(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// (GET /instances)
func (s *Server) ListInstances(c echo.Context) error {
	res, err := s.Workflows.ListInstances(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// (GET /instances/{id})
func (s *Server) GetInstance(c echo.Context, id string) error {
	inst, err := s.Workflows.GetInstance(c.Request().Context(), id)
	if err != nil {
		return err
	}
	s.Logger.Debug("Fetched process instance", logging.InstanceID(id), "state", inst.State)
	return c.JSON(http.StatusOK, inst)
}

// (GET /instances/{id}/jobs)
func (s *Server) GetInstanceJobs(c echo.Context, id string) error {
	res, err := s.Workflows.GetInstanceJobs(c.Request().Context(), id)
	if err != nil {
		return err
	}
	s.Logger.Debug("Fetched instance jobs", logging.InstanceID(id), "count", len(res))
	return c.JSON(http.StatusOK, res)
}

// GetInstanceTimers renders the timers table of an instance. Each request
// is its own selection, so the table never sees a competing Select here.
// (GET /instances/{id}/timers)
func (s *Server) GetInstanceTimers(c echo.Context, id string) error {
	table := jobs.NewTable(s.Workflows)
	err := table.Select(c.Request().Context(), &models.ProcessInstance{ID: id})
	if err != nil {
		return err
	}
	view := table.View()
	s.Logger.Debug("Rendered timers", logging.InstanceID(id), "rows", len(view.Rows))
	return c.JSON(http.StatusOK, view)
}

// CreateWorkflowDefinition stores the plain text body under the given uri
// (POST /workflows)
func (s *Server) CreateWorkflowDefinition(c echo.Context, params CreateWorkflowDefinitionParams) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, MaxDefinitionSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "definition is too large")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if len(body) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "definition is empty")
	}

	ctx := c.Request().Context()
	item, err := s.Workflows.CreateWorkflowDefinition(ctx, params.Uri, string(body))
	if err != nil {
		return err
	}

	user, _ := auth.UserFromContext(ctx)
	s.Logger.Info("Workflow definition created",
		logging.WorkflowID(item.ID), "uri", params.Uri, "user", user)
	return c.JSON(http.StatusCreated, item)
}

// (DELETE /workflows/{id})
func (s *Server) DeleteWorkflowDefinition(c echo.Context, id string) error {
	ctx := c.Request().Context()
	if err := s.Workflows.DeleteWorkflowDefinition(ctx, id); err != nil {
		return err
	}
	user, _ := auth.UserFromContext(ctx)
	s.Logger.Info("Workflow definition deleted", logging.WorkflowID(id), "user", user)
	return c.NoContent(http.StatusNoContent)
}

// (GET /specs)
func (s *Server) GetSpecs(c echo.Context) error {
	res, err := s.Workflows.GetSpecs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ListTemplates returns the templates currently stored for the provider
// (GET /templates)
func (s *Server) ListTemplates(c echo.Context) error {
	stored, err := s.Templates.ListEntities(c.Request().Context(), s.Provider)
	if err != nil {
		return err
	}
	res := make([]catalog.TemplateEntity, 0, len(stored))
	for _, e := range stored {
		res = append(res, e.Entity)
	}
	return c.JSON(http.StatusOK, res)
}

// (POST /templates/refresh)
func (s *Server) RefreshTemplates(c echo.Context) error {
	if err := s.Refresher.Refresh(c.Request().Context(), "api"); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}
