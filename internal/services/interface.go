package services

import (
	"context"

	"serverless-workflow/backend/pkg/models"
)

// WorkflowAPI is the set of operations exposed by the workflow backend. It is
// implemented by SwfClient on the consuming side and WorkflowService on the
// serving side.
type WorkflowAPI interface {
	// GetWorkflow returns a single workflow including its definition.
	GetWorkflow(ctx context.Context, id string) (*models.SwfItem, error)
	// ListWorkflows returns every known workflow.
	ListWorkflows(ctx context.Context) (*models.SwfListResult, error)
	// ListInstances returns the process instances of all workflows.
	ListInstances(ctx context.Context) ([]models.ProcessInstance, error)
	// GetInstance returns a single process instance.
	GetInstance(ctx context.Context, id string) (*models.ProcessInstance, error)
	// GetInstanceJobs returns the timers of a process instance.
	GetInstanceJobs(ctx context.Context, id string) ([]models.Job, error)
	// CreateWorkflowDefinition stores a definition under uri.
	CreateWorkflowDefinition(ctx context.Context, uri, content string) (*models.SwfItem, error)
	// DeleteWorkflowDefinition removes the definition of a workflow.
	DeleteWorkflowDefinition(ctx context.Context, id string) error
	// GetSpecs returns the API specification files used by workflows.
	GetSpecs(ctx context.Context) ([]models.SwfSpecFile, error)
}

// DiscoveryAPI resolves the base URL of a backend plugin
type DiscoveryAPI interface {
	BaseURL(ctx context.Context, pluginID string) (string, error)
}
