package task

import (
	"context"
	"errors"
	"fmt"

	"serverless-workflow/backend/pkg/models"
)

var (
	ErrMissingTaskID  = errors.New("task id is required")
	ErrNotCancellable = errors.New("task is already finished")
	ErrUnknownToggle  = errors.New("unknown panel toggle")
	errNoTask         = errors.New("task source returned no task")
)

// Source reads a task and its events
type Source interface {
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
	ListTaskEvents(ctx context.Context, taskID string, after *int64) ([]models.TaskEvent, error)
}

// Canceller stops a running task
type Canceller interface {
	CancelTask(ctx context.Context, taskID string) error
}

// Progress is the view model of a task run
type Progress struct {
	TaskID            string              `json:"taskId"`
	Title             string              `json:"title"`
	TemplateName      string              `json:"templateName,omitempty"`
	Steps             []Step              `json:"steps"`
	ActiveStep        int                 `json:"activeStep"`
	IsComplete        bool                `json:"isComplete"`
	IsError           bool                `json:"isError"`
	ErrorMessage      string              `json:"errorMessage,omitempty"`
	Output            map[string]any      `json:"output,omitempty"`
	ShowOutputs       bool                `json:"showOutputs"`
	LogsVisible       bool                `json:"logsVisible"`
	Logs              map[string][]string `json:"logs,omitempty"`
	ButtonBarVisible  bool                `json:"buttonBarVisible"`
	CancelEnabled     bool                `json:"cancelEnabled"`
	StartOverEnabled  bool                `json:"startOverEnabled"`
	StartOverURL      string              `json:"startOverUrl,omitempty"`
	WorkflowID        string              `json:"workflowId,omitempty"`
	ProcessInstanceID string              `json:"processInstanceId,omitempty"`
}

// CancelEnabled reports whether the task can still be cancelled
func CancelEnabled(s *Stream) bool {
	return !(s.Cancelled || s.Completed)
}

// Load reads a task and every event it has emitted so far
func Load(ctx context.Context, src Source, taskID string) (*Stream, error) {
	if taskID == "" {
		return nil, ErrMissingTaskID
	}
	t, err := src.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errNoTask
	}
	evts, err := src.ListTaskEvents(ctx, taskID, nil)
	if err != nil {
		return nil, err
	}
	s := NewStream(t)
	s.Apply(evts...)
	return s, nil
}

// ParseToggles converts toggle names into panel events
func ParseToggles(names []string) ([]PanelEvent, error) {
	res := make([]PanelEvent, 0, len(names))
	for _, name := range names {
		switch evt := PanelEvent(name); evt {
		case PanelEventToggleLogs, PanelEventToggleButtonBar:
			res = append(res, evt)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownToggle, name)
		}
	}
	return res, nil
}

// BuildProgress assembles the view model of the stream in the given panel state
func BuildProgress(taskID string, s *Stream, panel PanelState) Progress {
	steps := MergeSteps(s)
	workflowID := WorkflowID(steps)

	var templateName string
	if tmpl := s.Task.Template(); tmpl != nil {
		templateName = tmpl.Name
	}

	cancelEnabled := CancelEnabled(s)
	p := Progress{
		TaskID:            taskID,
		Title:             "Run of " + templateName,
		TemplateName:      templateName,
		Steps:             steps,
		ActiveStep:        ActiveStep(steps),
		IsComplete:        s.Completed,
		IsError:           s.Error != nil,
		Output:            s.Output,
		ShowOutputs:       workflowID == "",
		LogsVisible:       panel.LogsVisible(),
		ButtonBarVisible:  panel.ButtonBarVisible(),
		CancelEnabled:     cancelEnabled,
		StartOverEnabled:  !cancelEnabled,
		StartOverURL:      StartOverURL(s.Task),
		WorkflowID:        workflowID,
		ProcessInstanceID: ProcessInstanceID(steps),
	}
	if s.Error != nil {
		p.ErrorMessage = s.Error.Message
	}
	if p.LogsVisible {
		p.Logs = s.StepLogs
	}
	return p
}

// Cancel asks c to cancel the task unless the stream shows it has finished
func Cancel(ctx context.Context, c Canceller, taskID string, s *Stream) error {
	if taskID == "" {
		return ErrMissingTaskID
	}
	if s != nil && !CancelEnabled(s) {
		return ErrNotCancellable
	}
	return c.CancelTask(ctx, taskID)
}
