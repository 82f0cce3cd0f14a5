package services

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"serverless-workflow/backend/pkg/models"
)

// ScaffolderClient reads task runs from the scaffolder backend
type ScaffolderClient struct {
	discovery DiscoveryAPI
	http      *resty.Client
}

// NewScaffolderClient creates a new ScaffolderClient
func NewScaffolderClient(discovery DiscoveryAPI) *ScaffolderClient {
	return &ScaffolderClient{
		discovery: discovery,
		http:      resty.New().SetHeader("Accept", "application/json"),
	}
}

// GetTask returns a task with its spec
func (c *ScaffolderClient) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	if err := c.get(ctx, "/v2/tasks/"+url.PathEscape(taskID), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTaskEvents returns the events of a task, optionally only those after
// the event id given
func (c *ScaffolderClient) ListTaskEvents(
	ctx context.Context, taskID string, after *int64,
) ([]models.TaskEvent, error) {
	query := map[string]string{}
	if after != nil {
		query["after"] = strconv.FormatInt(*after, 10)
	}

	var res []models.TaskEvent
	path := "/v2/tasks/" + url.PathEscape(taskID) + "/events"
	if err := c.get(ctx, path, query, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CancelTask asks the scaffolder to stop a running task
func (c *ScaffolderClient) CancelTask(ctx context.Context, taskID string) error {
	base, err := c.discovery.BaseURL(ctx, models.ScaffolderPluginID)
	if err != nil {
		return err
	}
	resp, err := c.http.R().SetContext(ctx).
		Post(base + "/v2/tasks/" + url.PathEscape(taskID) + "/cancel")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return newResponseError(resp)
	}
	return nil
}

func (c *ScaffolderClient) get(ctx context.Context, path string, query map[string]string, result any) error {
	base, err := c.discovery.BaseURL(ctx, models.ScaffolderPluginID)
	if err != nil {
		return err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(result).
		ForceContentType(jsonContentType).
		Get(base + path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return newResponseError(resp)
	}
	return nil
}
