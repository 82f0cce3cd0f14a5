package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"serverless-workflow/backend/pkg/models"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleTask() *models.Task {
	info := &models.TemplateInfo{
		Entity: &models.TemplateRef{
			Metadata: models.TemplateMetadata{Namespace: "default", Name: "greeting"},
		},
	}

	return &models.Task{
		ID:     "t1",
		Status: models.TaskStatusProcessing,
		Spec: models.TaskSpec{
			Steps: []models.TaskStep{
				{ID: "fetch", Name: "Fetch", Action: "fetch:plain"},
				{ID: "run", Name: "Run workflow", Action: "swf:run", Input: map[string]any{"swfId": "greeting"}},
				{ID: "log", Name: "Log", Action: "debug:log"},
			},
			Parameters:   map[string]any{"language": "English", "name": "John Doe"},
			TemplateInfo: info,
		},
	}
}

func logEvent(id int64, stepID string, status models.TaskStatus, msg string) models.TaskEvent {
	return models.TaskEvent{
		ID:        id,
		TaskID:    "t1",
		Type:      models.TaskEventLog,
		Body:      models.TaskEventBody{StepID: stepID, Status: status, Message: msg},
		CreatedAt: t0.Add(time.Duration(id) * time.Second),
	}
}

func TestActiveStepAllOpen(t *testing.T) {
	steps := MergeSteps(NewStream(sampleTask()))
	require.Len(t, steps, 3)
	for _, s := range steps {
		assert.Equal(t, models.TaskStatusOpen, s.Status)
	}
	assert.Equal(t, 0, ActiveStep(steps))
	assert.Equal(t, 0, ActiveStep(nil))
}

func TestActiveStepLastNonOpen(t *testing.T) {
	s := NewStream(sampleTask())
	s.Apply(
		logEvent(1, "fetch", models.TaskStatusProcessing, "Beginning step Fetch"),
		logEvent(2, "fetch", models.TaskStatusCompleted, "Finished step Fetch"),
		logEvent(3, "run", models.TaskStatusProcessing, "Beginning step Run workflow"),
	)
	steps := MergeSteps(s)
	assert.Equal(t, 1, ActiveStep(steps))

	steps[2].Status = models.TaskStatusSkipped
	assert.Equal(t, 2, ActiveStep(steps))
}

func TestStreamTracksStepTimesAndLogs(t *testing.T) {
	s := NewStream(sampleTask())
	s.Apply(
		logEvent(1, "fetch", models.TaskStatusProcessing, "start"),
		logEvent(2, "fetch", "", "working"),
		logEvent(3, "fetch", models.TaskStatusCompleted, "done"),
	)

	state := s.Steps["fetch"]
	require.NotNil(t, state.StartedAt)
	require.NotNil(t, state.EndedAt)
	assert.Equal(t, t0.Add(time.Second), *state.StartedAt)
	assert.Equal(t, t0.Add(3*time.Second), *state.EndedAt)
	assert.Equal(t, []string{"start", "working", "done"}, s.StepLogs["fetch"])
	assert.Equal(t, int64(3), *s.LastEventID())
}

func TestStreamSkipsReplayedEvents(t *testing.T) {
	s := NewStream(sampleTask())
	evts := []models.TaskEvent{
		logEvent(1, "fetch", models.TaskStatusProcessing, "start"),
		logEvent(2, "fetch", models.TaskStatusCompleted, "done"),
	}
	s.Apply(evts...)
	s.Apply(evts...)
	assert.Len(t, s.StepLogs["fetch"], 2)
}

func TestStreamCompletionAndCancellation(t *testing.T) {
	s := NewStream(sampleTask())
	s.Apply(models.TaskEvent{
		ID:   1,
		Type: models.TaskEventCompletion,
		Body: models.TaskEventBody{
			Message: "Run completed",
			Output:  map[string]any{"processInstanceId": "p-42"},
		},
	})
	assert.True(t, s.Completed)
	assert.False(t, CancelEnabled(s))

	steps := MergeSteps(s)
	assert.Equal(t, "p-42", ProcessInstanceID(steps))
	assert.Equal(t, "greeting", WorkflowID(steps))

	c := NewStream(sampleTask())
	c.Apply(models.TaskEvent{ID: 1, Type: models.TaskEventCancelled})
	assert.True(t, c.Cancelled)
	assert.False(t, CancelEnabled(c))
	assert.True(t, CancelEnabled(NewStream(sampleTask())))
}

func TestStartOverURL(t *testing.T) {
	task := sampleTask()
	assert.Equal(t,
		"/templates/default/greeting?formData=%7B%22language%22%3A%22English%22%2C%22name%22%3A%22John%20Doe%22%7D",
		StartOverURL(task),
	)

	task.Spec.Parameters = nil
	assert.Equal(t, "/templates/default/greeting?formData=%7B%7D", StartOverURL(task))

	task.Spec.TemplateInfo.Entity.Metadata.Namespace = ""
	assert.Empty(t, StartOverURL(task))
	assert.Empty(t, StartOverURL(nil))
}

func TestPanelTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     PanelState
		evt      PanelEvent
		expected PanelState
	}{
		{"error opens logs", PanelBar, PanelEventError, PanelBarAndLogs},
		{"error keeps hidden bar hidden", PanelNone, PanelEventError, PanelLogs},
		{"completion hides bar", PanelBar, PanelEventCompleted, PanelNone},
		{"completion keeps logs", PanelBarAndLogs, PanelEventCompleted, PanelLogs},
		{"toggle logs on", PanelBar, PanelEventToggleLogs, PanelBarAndLogs},
		{"toggle logs off", PanelLogs, PanelEventToggleLogs, PanelNone},
		{"toggle bar off", PanelBarAndLogs, PanelEventToggleButtonBar, PanelLogs},
		{"toggle bar on", PanelNone, PanelEventToggleButtonBar, PanelBar},
		{"unknown event", PanelLogs, PanelEvent("noop"), PanelLogs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.Next(tt.evt))
		})
	}
}

func TestPanelFor(t *testing.T) {
	running := NewStream(sampleTask())
	assert.Equal(t, PanelBar, PanelFor(running))
	assert.True(t, PanelFor(running).ButtonBarVisible())
	assert.False(t, PanelFor(running).LogsVisible())

	failed := NewStream(sampleTask())
	failed.Apply(models.TaskEvent{
		ID:   1,
		Type: models.TaskEventCompletion,
		Body: models.TaskEventBody{Error: &models.TaskError{Name: "Error", Message: "step failed"}},
	})
	assert.Equal(t, PanelBarAndLogs, PanelFor(failed))

	done := NewStream(sampleTask())
	done.Apply(models.TaskEvent{ID: 1, Type: models.TaskEventCompletion})
	assert.Equal(t, PanelNone, PanelFor(done))
	assert.Equal(t, PanelLogs, PanelFor(done, PanelEventToggleLogs))
}

func TestBuildProgress(t *testing.T) {
	s := NewStream(sampleTask())
	s.Apply(
		logEvent(1, "fetch", models.TaskStatusCompleted, "fetched"),
		models.TaskEvent{
			ID:   2,
			Type: models.TaskEventCompletion,
			Body: models.TaskEventBody{Error: &models.TaskError{Name: "Error", Message: "run failed"}},
		},
	)

	p := BuildProgress("t1", s, PanelFor(s))
	assert.Equal(t, "Run of greeting", p.Title)
	assert.Equal(t, 0, p.ActiveStep)
	assert.True(t, p.IsComplete)
	assert.True(t, p.IsError)
	assert.Equal(t, "run failed", p.ErrorMessage)
	assert.True(t, p.LogsVisible)
	assert.True(t, p.ButtonBarVisible)
	assert.False(t, p.CancelEnabled)
	assert.True(t, p.StartOverEnabled)
	assert.False(t, p.ShowOutputs)
	assert.Equal(t, "greeting", p.WorkflowID)
	assert.Equal(t, []string{"fetched"}, p.Logs["fetch"])
	assert.NotEmpty(t, p.StartOverURL)

	hidden := BuildProgress("t1", s, PanelBar)
	assert.Nil(t, hidden.Logs)
}

func TestParseToggles(t *testing.T) {
	evts, err := ParseToggles([]string{"toggle-logs", "toggle-button-bar"})
	require.NoError(t, err)
	assert.Equal(t, []PanelEvent{PanelEventToggleLogs, PanelEventToggleButtonBar}, evts)

	_, err = ParseToggles([]string{"error"})
	assert.ErrorIs(t, err, ErrUnknownToggle)
}

type MockTaskAPI struct {
	mock.Mock
}

func (m *MockTaskAPI) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskAPI) ListTaskEvents(ctx context.Context, taskID string, after *int64) ([]models.TaskEvent, error) {
	args := m.Called(ctx, taskID, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaskEvent), args.Error(1)
}

func (m *MockTaskAPI) CancelTask(ctx context.Context, taskID string) error {
	return m.Called(ctx, taskID).Error(0)
}

func TestLoad(t *testing.T) {
	api := new(MockTaskAPI)
	api.On("GetTask", mock.Anything, "t1").Return(sampleTask(), nil)
	api.On("ListTaskEvents", mock.Anything, "t1", (*int64)(nil)).Return([]models.TaskEvent{
		logEvent(1, "fetch", models.TaskStatusProcessing, "start"),
	}, nil)

	s, err := Load(context.Background(), api, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusProcessing, s.Steps["fetch"].Status)
	api.AssertExpectations(t)

	_, err = Load(context.Background(), api, "")
	assert.ErrorIs(t, err, ErrMissingTaskID)

	failing := new(MockTaskAPI)
	failing.On("GetTask", mock.Anything, "t2").Return(nil, assert.AnError)
	_, err = Load(context.Background(), failing, "t2")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCancel(t *testing.T) {
	api := new(MockTaskAPI)
	api.On("CancelTask", mock.Anything, "t1").Return(nil).Once()

	running := NewStream(sampleTask())
	require.NoError(t, Cancel(context.Background(), api, "t1", running))
	api.AssertExpectations(t)

	done := NewStream(sampleTask())
	done.Apply(models.TaskEvent{ID: 1, Type: models.TaskEventCompletion})
	assert.ErrorIs(t, Cancel(context.Background(), api, "t1", done), ErrNotCancellable)
	assert.ErrorIs(t, Cancel(context.Background(), api, "", running), ErrMissingTaskID)
	api.AssertNumberOfCalls(t, "CancelTask", 1)
}
