// Package task builds the view model of a running scaffolder task: its
// merged steps, active step, actions and panel visibility.
package task

import (
	"time"

	"serverless-workflow/backend/pkg/models"
)

// StepState is the live state of one step, as reported by the event stream
type StepState struct {
	Status    models.TaskStatus `json:"status"`
	StartedAt *time.Time        `json:"startedAt,omitempty"`
	EndedAt   *time.Time        `json:"endedAt,omitempty"`
}

// Stream is the reduced state of a task event stream
type Stream struct {
	Task      *models.Task
	Steps     map[string]*StepState
	StepLogs  map[string][]string
	Output    map[string]any
	Error     *models.TaskError
	Completed bool
	Cancelled bool

	lastEventID *int64
}

// NewStream starts a stream for task with every declared step open
func NewStream(task *models.Task) *Stream {
	s := &Stream{
		Task:     task,
		Steps:    map[string]*StepState{},
		StepLogs: map[string][]string{},
	}
	if task == nil {
		return s
	}
	for _, step := range task.Spec.Steps {
		s.Steps[step.ID] = &StepState{Status: models.TaskStatusOpen}
		s.StepLogs[step.ID] = []string{}
	}
	return s
}

// LastEventID is the id of the last applied event, nil before the first
func (s *Stream) LastEventID() *int64 {
	return s.lastEventID
}

// Apply folds events into the stream in order. Events already applied are
// skipped so that overlapping pages can be replayed safely.
func (s *Stream) Apply(evts ...models.TaskEvent) {
	for _, evt := range evts {
		if s.lastEventID != nil && evt.ID <= *s.lastEventID {
			continue
		}
		id := evt.ID
		s.lastEventID = &id

		switch evt.Type {
		case models.TaskEventLog:
			s.applyLog(evt)
		case models.TaskEventCompletion:
			s.Completed = true
			s.Output = evt.Body.Output
			s.Error = evt.Body.Error
		case models.TaskEventCancelled:
			s.Cancelled = true
		}
	}
}

func (s *Stream) applyLog(evt models.TaskEvent) {
	stepID := evt.Body.StepID
	if stepID == "" {
		return
	}
	if evt.Body.Message != "" {
		s.StepLogs[stepID] = append(s.StepLogs[stepID], evt.Body.Message)
	}
	if evt.Body.Status == "" {
		return
	}

	state, ok := s.Steps[stepID]
	if !ok {
		state = &StepState{}
		s.Steps[stepID] = state
	}
	state.Status = evt.Body.Status

	at := evt.CreatedAt
	if evt.Body.Status == models.TaskStatusProcessing {
		state.StartedAt = &at
	}
	if evt.Body.Status.Finished() {
		state.EndedAt = &at
	}
}
