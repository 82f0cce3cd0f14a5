package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// GetTaskProgressParams defines parameters for GetTaskProgress.
type GetTaskProgressParams struct {
	Toggle *[]string `form:"toggle,omitempty" json:"toggle,omitempty"`
}

// CreateWorkflowDefinitionParams defines parameters for CreateWorkflowDefinition.
type CreateWorkflowDefinitionParams struct {
	Uri string `form:"uri" json:"uri"`
}

// ServerInterface represents all server handlers of openapi.yaml.
type ServerInterface interface {
	// (GET /items)
	ListWorkflows(ctx echo.Context) error
	// (GET /items/{id})
	GetWorkflow(ctx echo.Context, id string) error
	// (GET /instances)
	ListInstances(ctx echo.Context) error
	// (GET /instances/{id})
	GetInstance(ctx echo.Context, id string) error
	// (GET /instances/{id}/jobs)
	GetInstanceJobs(ctx echo.Context, id string) error
	// (GET /instances/{id}/timers)
	GetInstanceTimers(ctx echo.Context, id string) error
	// (POST /workflows)
	CreateWorkflowDefinition(ctx echo.Context, params CreateWorkflowDefinitionParams) error
	// (DELETE /workflows/{id})
	DeleteWorkflowDefinition(ctx echo.Context, id string) error
	// (GET /specs)
	GetSpecs(ctx echo.Context) error
	// (GET /templates)
	ListTemplates(ctx echo.Context) error
	// (POST /templates/refresh)
	RefreshTemplates(ctx echo.Context) error
	// (GET /tasks/{taskId}/progress)
	GetTaskProgress(ctx echo.Context, taskId string, params GetTaskProgressParams) error
	// (POST /tasks/{taskId}/cancel)
	CancelTask(ctx echo.Context, taskId string) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindPathParam(ctx echo.Context, name string, dest *string) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return nil
}

func (w *ServerInterfaceWrapper) ListWorkflows(ctx echo.Context) error {
	return w.Handler.ListWorkflows(ctx)
}

func (w *ServerInterfaceWrapper) GetWorkflow(ctx echo.Context) error {
	var id string
	if err := bindPathParam(ctx, "id", &id); err != nil {
		return err
	}
	return w.Handler.GetWorkflow(ctx, id)
}

func (w *ServerInterfaceWrapper) ListInstances(ctx echo.Context) error {
	return w.Handler.ListInstances(ctx)
}

func (w *ServerInterfaceWrapper) GetInstance(ctx echo.Context) error {
	var id string
	if err := bindPathParam(ctx, "id", &id); err != nil {
		return err
	}
	return w.Handler.GetInstance(ctx, id)
}

func (w *ServerInterfaceWrapper) GetInstanceJobs(ctx echo.Context) error {
	var id string
	if err := bindPathParam(ctx, "id", &id); err != nil {
		return err
	}
	return w.Handler.GetInstanceJobs(ctx, id)
}

func (w *ServerInterfaceWrapper) GetInstanceTimers(ctx echo.Context) error {
	var id string
	if err := bindPathParam(ctx, "id", &id); err != nil {
		return err
	}
	return w.Handler.GetInstanceTimers(ctx, id)
}

func (w *ServerInterfaceWrapper) CreateWorkflowDefinition(ctx echo.Context) error {
	var params CreateWorkflowDefinitionParams
	err := runtime.BindQueryParameter("form", true, true, "uri", ctx.QueryParams(), &params.Uri)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter uri: %s", err))
	}
	return w.Handler.CreateWorkflowDefinition(ctx, params)
}

func (w *ServerInterfaceWrapper) DeleteWorkflowDefinition(ctx echo.Context) error {
	var id string
	if err := bindPathParam(ctx, "id", &id); err != nil {
		return err
	}
	return w.Handler.DeleteWorkflowDefinition(ctx, id)
}

func (w *ServerInterfaceWrapper) GetSpecs(ctx echo.Context) error {
	return w.Handler.GetSpecs(ctx)
}

func (w *ServerInterfaceWrapper) ListTemplates(ctx echo.Context) error {
	return w.Handler.ListTemplates(ctx)
}

func (w *ServerInterfaceWrapper) RefreshTemplates(ctx echo.Context) error {
	return w.Handler.RefreshTemplates(ctx)
}

func (w *ServerInterfaceWrapper) GetTaskProgress(ctx echo.Context) error {
	var taskId string
	if err := bindPathParam(ctx, "taskId", &taskId); err != nil {
		return err
	}
	var params GetTaskProgressParams
	err := runtime.BindQueryParameter("form", true, false, "toggle", ctx.QueryParams(), &params.Toggle)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter toggle: %s", err))
	}
	return w.Handler.GetTaskProgress(ctx, taskId, params)
}

func (w *ServerInterfaceWrapper) CancelTask(ctx echo.Context) error {
	var taskId string
	if err := bindPathParam(ctx, "taskId", &taskId); err != nil {
		return err
	}
	return w.Handler.CancelTask(ctx, taskId)
}

// EchoRouter is the subset of echo routing used by RegisterHandlers;
// both *echo.Echo and *echo.Group satisfy it.
type EchoRouter interface {
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers the handlers, and prepends baseURL to
// the paths, so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.GET(baseURL+"/items", wrapper.ListWorkflows)
	router.GET(baseURL+"/items/:id", wrapper.GetWorkflow)
	router.GET(baseURL+"/instances", wrapper.ListInstances)
	router.GET(baseURL+"/instances/:id", wrapper.GetInstance)
	router.GET(baseURL+"/instances/:id/jobs", wrapper.GetInstanceJobs)
	router.GET(baseURL+"/instances/:id/timers", wrapper.GetInstanceTimers)
	router.POST(baseURL+"/workflows", wrapper.CreateWorkflowDefinition)
	router.DELETE(baseURL+"/workflows/:id", wrapper.DeleteWorkflowDefinition)
	router.GET(baseURL+"/specs", wrapper.GetSpecs)
	router.GET(baseURL+"/templates", wrapper.ListTemplates)
	router.POST(baseURL+"/templates/refresh", wrapper.RefreshTemplates)
	router.GET(baseURL+"/tasks/:taskId/progress", wrapper.GetTaskProgress)
	router.POST(baseURL+"/tasks/:taskId/cancel", wrapper.CancelTask)
}
