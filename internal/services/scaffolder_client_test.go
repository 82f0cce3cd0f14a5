package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serverless-workflow/backend/pkg/models"
)

func TestScaffolderClientGetTask(t *testing.T) {
	task := models.Task{ID: "t1", Status: models.TaskStatusProcessing}
	srv, recorded := newRecordingServer(t, http.StatusOK, task)
	client := NewScaffolderClient(NewStaticDiscovery(srv.URL))

	got, err := client.GetTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusProcessing, got.Status)
	assert.Equal(t, "/api/scaffolder/v2/tasks/t1", (*recorded)[0].Path)
}

func TestScaffolderClientListTaskEvents(t *testing.T) {
	evts := []models.TaskEvent{{ID: 4, TaskID: "t1", Type: models.TaskEventLog}}
	srv, recorded := newRecordingServer(t, http.StatusOK, evts)
	client := NewScaffolderClient(NewStaticDiscovery(srv.URL))

	after := int64(3)
	got, err := client.ListTaskEvents(context.Background(), "t1", &after)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/api/scaffolder/v2/tasks/t1/events", (*recorded)[0].Path)
	assert.Equal(t, "after=3", (*recorded)[0].Query)

	_, err = client.ListTaskEvents(context.Background(), "t1", nil)
	require.NoError(t, err)
	assert.Empty(t, (*recorded)[1].Query)
}

func TestScaffolderClientCancelTask(t *testing.T) {
	srv, recorded := newRecordingServer(t, http.StatusOK, nil)
	client := NewScaffolderClient(NewStaticDiscovery(srv.URL))

	require.NoError(t, client.CancelTask(context.Background(), "t1"))
	assert.Equal(t, http.MethodPost, (*recorded)[0].Method)
	assert.Equal(t, "/api/scaffolder/v2/tasks/t1/cancel", (*recorded)[0].Path)
}

func TestScaffolderClientCancelConflict(t *testing.T) {
	body := map[string]any{"error": map[string]string{"name": "ConflictError", "message": "task already completed"}}
	srv, _ := newRecordingServer(t, http.StatusConflict, body)
	client := NewScaffolderClient(NewStaticDiscovery(srv.URL))

	err := client.CancelTask(context.Background(), "t1")
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusConflict, respErr.StatusCode)
}
