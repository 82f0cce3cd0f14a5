package models

import (
	"encoding/json"
	"time"
)

// ProcessInstanceState is the lifecycle state of a process instance
type ProcessInstanceState string

const (
	ProcessInstanceStatePending   ProcessInstanceState = "PENDING"
	ProcessInstanceStateActive    ProcessInstanceState = "ACTIVE"
	ProcessInstanceStateCompleted ProcessInstanceState = "COMPLETED"
	ProcessInstanceStateAborted   ProcessInstanceState = "ABORTED"
	ProcessInstanceStateSuspended ProcessInstanceState = "SUSPENDED"
	ProcessInstanceStateError     ProcessInstanceState = "ERROR"
)

// JobStatus is the status of a timer job
type JobStatus string

const (
	JobStatusError     JobStatus = "ERROR"
	JobStatusExecuted  JobStatus = "EXECUTED"
	JobStatusScheduled JobStatus = "SCHEDULED"
	JobStatusRetry     JobStatus = "RETRY"
	JobStatusCanceled  JobStatus = "CANCELED"
)

// ProcessInstance is a running or finished execution of a workflow, as
// reported by the orchestration engine's data index
type ProcessInstance struct {
	ID                      string               `json:"id"`
	ProcessID               string               `json:"processId"`
	ProcessName             string               `json:"processName,omitempty"`
	ParentProcessInstanceID string               `json:"parentProcessInstanceId,omitempty"`
	RootProcessInstanceID   string               `json:"rootProcessInstanceId,omitempty"`
	RootProcessID           string               `json:"rootProcessId,omitempty"`
	Roles                   []string             `json:"roles,omitempty"`
	State                   ProcessInstanceState `json:"state"`
	Endpoint                string               `json:"endpoint"`
	ServiceURL              string               `json:"serviceUrl,omitempty"`
	Nodes                   []NodeInstance       `json:"nodes"`
	Variables               json.RawMessage      `json:"variables,omitempty"`
	Start                   *time.Time           `json:"start,omitempty"`
	End                     *time.Time           `json:"end,omitempty"`
	LastUpdate              *time.Time           `json:"lastUpdate,omitempty"`
	BusinessKey             string               `json:"businessKey,omitempty"`
	AddOns                  []string             `json:"addons,omitempty"`
	Error                   *ProcessError        `json:"error,omitempty"`
}

// NodeInstance is a node visited by a process instance
type NodeInstance struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Enter        *time.Time `json:"enter,omitempty"`
	Exit         *time.Time `json:"exit,omitempty"`
	DefinitionID string     `json:"definitionId"`
	NodeID       string     `json:"nodeId"`
}

// ProcessError describes the node a process instance failed on
type ProcessError struct {
	NodeDefinitionID string `json:"nodeDefinitionId"`
	Message          string `json:"message"`
}

// Job is a timer scheduled or fired on behalf of a process instance
type Job struct {
	ID                    string     `json:"id"`
	ProcessID             string     `json:"processId"`
	ProcessInstanceID     string     `json:"processInstanceId"`
	RootProcessInstanceID string     `json:"rootProcessInstanceId,omitempty"`
	RootProcessID         string     `json:"rootProcessId,omitempty"`
	Status                JobStatus  `json:"status"`
	ExpirationTime        *time.Time `json:"expirationTime,omitempty"`
	Priority              int        `json:"priority"`
	CallbackEndpoint      string     `json:"callbackEndpoint,omitempty"`
	RepeatInterval        int        `json:"repeatInterval"`
	RepeatLimit           int        `json:"repeatLimit"`
	ScheduledID           string     `json:"scheduledId,omitempty"`
	Retries               int        `json:"retries"`
	LastUpdate            *time.Time `json:"lastUpdate,omitempty"`
	ExecutionCounter      int        `json:"executionCounter"`
	Endpoint              string     `json:"endpoint,omitempty"`
	NodeInstanceID        string     `json:"nodeInstanceId,omitempty"`
}
