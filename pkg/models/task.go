package models

import "time"

// ScaffolderPluginID is the discovery identifier of the scaffolder backend
const ScaffolderPluginID = "scaffolder"

// TaskStatus is the status of a scaffolder task or one of its steps
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
	TaskStatusSkipped    TaskStatus = "skipped"
)

// Finished reports whether a step in this status will not change again
func (s TaskStatus) Finished() bool {
	switch s {
	case TaskStatusFailed, TaskStatusCompleted, TaskStatusCancelled, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// TaskStep is a step declared by the template that created a task
type TaskStep struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Action string         `json:"action"`
	Input  map[string]any `json:"input,omitempty"`
	If     any            `json:"if,omitempty"`
}

// TemplateMetadata identifies the template a task was created from
type TemplateMetadata struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
}

type TemplateRef struct {
	Metadata TemplateMetadata `json:"metadata"`
}

type TemplateInfo struct {
	BaseURL string       `json:"baseUrl,omitempty"`
	Entity  *TemplateRef `json:"entity,omitempty"`
}

type TaskSpec struct {
	APIVersion   string         `json:"apiVersion"`
	Steps        []TaskStep     `json:"steps"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Output       map[string]any `json:"output,omitempty"`
	TemplateInfo *TemplateInfo  `json:"templateInfo,omitempty"`
}

// Task is a scaffolder run
type Task struct {
	ID              string     `json:"id"`
	Spec            TaskSpec   `json:"spec"`
	Status          TaskStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastHeartbeatAt *time.Time `json:"lastHeartbeatAt,omitempty"`
}

// Template returns the metadata of the originating template, if known
func (t *Task) Template() *TemplateMetadata {
	if t == nil || t.Spec.TemplateInfo == nil || t.Spec.TemplateInfo.Entity == nil {
		return nil
	}
	return &t.Spec.TemplateInfo.Entity.Metadata
}

// TaskEventType distinguishes the entries of a task event stream
type TaskEventType string

const (
	TaskEventLog        TaskEventType = "log"
	TaskEventCompletion TaskEventType = "completion"
	TaskEventCancelled  TaskEventType = "cancelled"
	TaskEventRecovered  TaskEventType = "recovered"
)

// TaskError is a serialized error attached to a completion event
type TaskError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *TaskError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return e.Name + ": " + e.Message
}

type TaskEventBody struct {
	Message string         `json:"message"`
	StepID  string         `json:"stepId,omitempty"`
	Status  TaskStatus     `json:"status,omitempty"`
	Output  map[string]any `json:"output,omitempty"`
	Error   *TaskError     `json:"error,omitempty"`
}

// TaskEvent is one entry of a task event stream
type TaskEvent struct {
	ID        int64         `json:"id"`
	TaskID    string        `json:"taskId"`
	Type      TaskEventType `json:"type"`
	Body      TaskEventBody `json:"body"`
	CreatedAt time.Time     `json:"createdAt"`
}
