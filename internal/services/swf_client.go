package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"

	"serverless-workflow/backend/pkg/models"
)

// Successful bodies are decoded as JSON whatever Content-Type the peer sent
const jsonContentType = "application/json"

// SwfClient is an HTTP implementation of WorkflowAPI talking to the workflow
// backend found through discovery. Every call resolves the base URL, makes a
// single request and never retries.
type SwfClient struct {
	discovery DiscoveryAPI
	http      *resty.Client
}

var _ WorkflowAPI = (*SwfClient)(nil)

// NewSwfClient creates a new SwfClient.
func NewSwfClient(discovery DiscoveryAPI) *SwfClient {
	return &SwfClient{
		discovery: discovery,
		http:      resty.New().SetHeader("Accept", "application/json"),
	}
}

// GetWorkflow returns a workflow with its definition.
func (c *SwfClient) GetWorkflow(ctx context.Context, id string) (*models.SwfItem, error) {
	var item models.SwfItem
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListWorkflows returns every workflow.
func (c *SwfClient) ListWorkflows(ctx context.Context) (*models.SwfListResult, error) {
	var res models.SwfListResult
	if err := c.do(ctx, http.MethodGet, "/items", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListInstances returns all process instances.
func (c *SwfClient) ListInstances(ctx context.Context) ([]models.ProcessInstance, error) {
	var res []models.ProcessInstance
	if err := c.do(ctx, http.MethodGet, "/instances", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetInstance returns a process instance.
func (c *SwfClient) GetInstance(ctx context.Context, id string) (*models.ProcessInstance, error) {
	var res models.ProcessInstance
	if err := c.do(ctx, http.MethodGet, "/instances/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetInstanceJobs returns the timers of a process instance.
func (c *SwfClient) GetInstanceJobs(ctx context.Context, id string) ([]models.Job, error) {
	var res []models.Job
	path := "/instances/" + url.PathEscape(id) + "/jobs"
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateWorkflowDefinition uploads content as plain text under uri.
func (c *SwfClient) CreateWorkflowDefinition(
	ctx context.Context, uri, content string,
) (*models.SwfItem, error) {
	base, err := c.discovery.BaseURL(ctx, models.PluginID)
	if err != nil {
		return nil, err
	}

	var item models.SwfItem
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetQueryParam("uri", uri).
		SetBody(content).
		SetResult(&item).
		ForceContentType(jsonContentType).
		Post(base + "/workflows")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, newResponseError(resp)
	}
	return &item, nil
}

// DeleteWorkflowDefinition removes a workflow definition.
func (c *SwfClient) DeleteWorkflowDefinition(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/workflows/"+url.PathEscape(id), nil, nil)
}

// GetSpecs returns the API specification files.
func (c *SwfClient) GetSpecs(ctx context.Context) ([]models.SwfSpecFile, error) {
	var res []models.SwfSpecFile
	if err := c.do(ctx, http.MethodGet, "/specs", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *SwfClient) do(ctx context.Context, method, path string, body, result any) error {
	base, err := c.discovery.BaseURL(ctx, models.PluginID)
	if err != nil {
		return err
	}

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result).ForceContentType(jsonContentType)
	}

	resp, err := req.Execute(method, base+path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return newResponseError(resp)
	}
	return nil
}
