package services

import (
	"context"
	"fmt"
	"strings"

	"serverless-workflow/backend/pkg/models"
)

const instanceFields = `
    id
    processId
    processName
    parentProcessInstanceId
    rootProcessInstanceId
    rootProcessId
    roles
    state
    endpoint
    serviceUrl
    businessKey
    start
    end
    lastUpdate
    addons
    error { nodeDefinitionId message }
    nodes { id nodeId definitionId name type enter exit }`

const listInstancesQuery = `query ListInstances {
  ProcessInstances(orderBy: { start: DESC }) {` + instanceFields + `
  }
}`

const getInstanceQuery = `query GetInstance($id: String) {
  ProcessInstances(where: { id: { equal: $id } }) {` + instanceFields + `
    variables
  }
}`

const getJobsQuery = `query GetJobs($id: String) {
  Jobs(where: { processInstanceId: { equal: $id } }, orderBy: { expirationTime: ASC }) {
    id
    processId
    processInstanceId
    rootProcessInstanceId
    rootProcessId
    status
    expirationTime
    priority
    callbackEndpoint
    repeatInterval
    repeatLimit
    scheduledId
    retries
    lastUpdate
    executionCounter
    endpoint
    nodeInstanceId
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type instancesData struct {
	ProcessInstances []models.ProcessInstance `json:"ProcessInstances"`
}

type jobsData struct {
	Jobs []models.Job `json:"Jobs"`
}

// queryGraphQL posts a query to the data index and returns its data, failing
// with ErrGraphQL when the response carries errors.
func queryGraphQL[T any](ctx context.Context, s *WorkflowService, query string, vars map[string]any) (T, error) {
	var out graphQLResponse[T]
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(graphQLRequest{Query: query, Variables: vars}).
		SetResult(&out).
		ForceContentType(jsonContentType).
		Post(s.serviceURL + "/graphql")
	if err != nil {
		return out.Data, err
	}
	if resp.IsError() {
		return out.Data, newResponseError(resp)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return out.Data, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}
	return out.Data, nil
}
