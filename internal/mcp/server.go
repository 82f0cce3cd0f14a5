// Package mcp exposes the workflow backend as Model Context Protocol tools
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"serverless-workflow/backend/internal/services"
	"serverless-workflow/backend/internal/views/jobs"
	"serverless-workflow/backend/pkg/models"
)

// Refresher triggers a template refresh
type Refresher interface {
	Refresh(ctx context.Context, reason string) error
}

// Server exposes the workflow tools. The timers table is shared by every
// get_instance_jobs call, so a selection made while an older one is still
// fetching wins and the older call reports it was superseded.
type Server struct {
	mcpServer *server.MCPServer
	workflows services.WorkflowAPI
	refresher Refresher
	timers    *jobs.Table
}

func NewServer(workflows services.WorkflowAPI, refresher Refresher) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Serverless Workflow",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		workflows: workflows,
		refresher: refresher,
		timers:    jobs.NewTable(workflows),
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List the serverless workflows deployed in the orchestration service"),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow",
			mcp.WithDescription("Get a workflow including its definition source"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The workflow id")),
		),
		s.handleGetWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_instances",
			mcp.WithDescription("List process instances, optionally only those of one workflow"),
			mcp.WithString("workflow_id", mcp.Description("Only return instances of this workflow")),
		),
		s.handleListInstances,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_instance_jobs",
			mcp.WithDescription("List the timers of a process instance with their status and expiration"),
			mcp.WithString("instance_id", mcp.Required(), mcp.Description("The process instance id")),
		),
		s.handleGetInstanceJobs,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"refresh_templates",
			mcp.WithDescription("Regenerate the catalog templates from the deployed workflows"),
		),
		s.handleRefreshTemplates,
	)
}

func (s *Server) handleListWorkflows(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.workflows.ListWorkflows(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}
	return jsonResult(res)
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil || id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}

	item, err := s.workflows.GetWorkflow(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get workflow: %v", err)), nil
	}
	return jsonResult(item)
}

func (s *Server) handleListInstances(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflowID := request.GetString("workflow_id", "")

	instances, err := s.workflows.ListInstances(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list instances: %v", err)), nil
	}
	if workflowID != "" {
		filtered := make([]models.ProcessInstance, 0, len(instances))
		for _, inst := range instances {
			if inst.ProcessID == workflowID {
				filtered = append(filtered, inst)
			}
		}
		instances = filtered
	}
	return jsonResult(instances)
}

func (s *Server) handleGetInstanceJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("instance_id")
	if err != nil || id == "" {
		return mcp.NewToolResultError("Missing required parameter: instance_id"), nil
	}

	err = s.timers.Select(ctx, &models.ProcessInstance{ID: id})
	view := s.timers.View()
	if errors.Is(err, jobs.ErrSuperseded) || (err == nil && view.InstanceID != id) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Jobs of %s superseded by a newer selection of %s", id, view.InstanceID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get jobs: %v", err)), nil
	}
	return jsonResult(view.Rows)
}

func (s *Server) handleRefreshTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.refresher.Refresh(ctx, "mcp"); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to refresh templates: %v", err)), nil
	}
	return mcp.NewToolResultText("Template refresh completed"), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MountHTTPHandlers serves the SSE transport under /mcp
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
