package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serverless-workflow/backend/pkg/models"
)

type recordedRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        string
}

func newRecordingServer(t *testing.T, status int, body any) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var recorded []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		recorded = append(recorded, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			Query:       r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(raw),
		})
		if body == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &recorded
}

func TestSwfClientGetWorkflow(t *testing.T) {
	srv, recorded := newRecordingServer(t, http.StatusOK, models.SwfItem{ID: "greeting", Name: "Greeting", Definition: "{}"})
	client := NewSwfClient(NewStaticDiscovery(srv.URL))

	item, err := client.GetWorkflow(context.Background(), "greeting")
	require.NoError(t, err)
	assert.Equal(t, "Greeting", item.Name)
	assert.Equal(t, "{}", item.Definition)

	require.Len(t, *recorded, 1)
	assert.Equal(t, http.MethodGet, (*recorded)[0].Method)
	assert.Equal(t, "/api/swf/items/greeting", (*recorded)[0].Path)
}

func TestSwfClientDecodesBodyWithoutJSONContentType(t *testing.T) {
	for name, contentType := range map[string][]string{
		"missing":    nil,
		"plain text": {"text/plain; charset=utf-8"},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header()["Content-Type"] = contentType
				if r.Method == http.MethodPost {
					w.WriteHeader(http.StatusCreated)
				}
				_, _ = io.WriteString(w, `{"id":"a","name":"A","definition":"x"}`)
			}))
			t.Cleanup(srv.Close)
			client := NewSwfClient(NewStaticDiscovery(srv.URL))

			item, err := client.GetWorkflow(context.Background(), "a")
			require.NoError(t, err)
			assert.Equal(t, models.SwfItem{ID: "a", Name: "A", Definition: "x"}, *item)

			created, err := client.CreateWorkflowDefinition(context.Background(), "a.sw.json", "{}")
			require.NoError(t, err)
			assert.Equal(t, "a", created.ID)
		})
	}
}

func TestSwfClientRejectsUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>login</html>")
	}))
	t.Cleanup(srv.Close)
	client := NewSwfClient(NewStaticDiscovery(srv.URL))

	item, err := client.GetWorkflow(context.Background(), "a")
	assert.Error(t, err)
	assert.Nil(t, item)
}

func TestSwfClientEscapesIDs(t *testing.T) {
	srv, recorded := newRecordingServer(t, http.StatusOK, []models.Job{})
	client := NewSwfClient(NewStaticDiscovery(srv.URL))

	_, err := client.GetInstanceJobs(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/api/swf/instances/a%2Fb/jobs", (*recorded)[0].Path)
}

func TestSwfClientListOperations(t *testing.T) {
	tests := []struct {
		name string
		body any
		call func(c *SwfClient) error
		path string
	}{
		{
			name: "items",
			body: models.SwfListResult{Items: []models.SwfItem{{ID: "a"}}, TotalCount: 1},
			call: func(c *SwfClient) error {
				res, err := c.ListWorkflows(context.Background())
				if err == nil && res.TotalCount != 1 {
					return errors.New("unexpected total")
				}
				return err
			},
			path: "/api/swf/items",
		},
		{
			name: "instances",
			body: []models.ProcessInstance{{ID: "p1", State: models.ProcessInstanceStateActive}},
			call: func(c *SwfClient) error {
				res, err := c.ListInstances(context.Background())
				if err == nil && len(res) != 1 {
					return errors.New("unexpected instances")
				}
				return err
			},
			path: "/api/swf/instances",
		},
		{
			name: "instance",
			body: models.ProcessInstance{ID: "p1"},
			call: func(c *SwfClient) error {
				_, err := c.GetInstance(context.Background(), "p1")
				return err
			},
			path: "/api/swf/instances/p1",
		},
		{
			name: "specs",
			body: []models.SwfSpecFile{{Path: "specs/a.yaml", Content: "x"}},
			call: func(c *SwfClient) error {
				res, err := c.GetSpecs(context.Background())
				if err == nil && len(res) != 1 {
					return errors.New("unexpected specs")
				}
				return err
			},
			path: "/api/swf/specs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, recorded := newRecordingServer(t, http.StatusOK, tt.body)
			client := NewSwfClient(NewStaticDiscovery(srv.URL))

			require.NoError(t, tt.call(client))
			require.Len(t, *recorded, 1)
			assert.Equal(t, http.MethodGet, (*recorded)[0].Method)
			assert.Equal(t, tt.path, (*recorded)[0].Path)
		})
	}
}

func TestSwfClientCreateSendsPlainText(t *testing.T) {
	srv, recorded := newRecordingServer(t, http.StatusCreated, models.SwfItem{ID: "greeting"})
	client := NewSwfClient(NewStaticDiscovery(srv.URL))

	content := `{"id":"greeting","name":"Greeting"}`
	item, err := client.CreateWorkflowDefinition(context.Background(), "greeting.sw.json", content)
	require.NoError(t, err)
	assert.Equal(t, "greeting", item.ID)

	req := (*recorded)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/swf/workflows", req.Path)
	assert.Equal(t, "uri=greeting.sw.json", req.Query)
	assert.Contains(t, req.ContentType, "text/plain")
	assert.Equal(t, content, req.Body)
}

func TestSwfClientDelete(t *testing.T) {
	srv, recorded := newRecordingServer(t, http.StatusNoContent, nil)
	client := NewSwfClient(NewStaticDiscovery(srv.URL))

	require.NoError(t, client.DeleteWorkflowDefinition(context.Background(), "greeting"))
	assert.Equal(t, http.MethodDelete, (*recorded)[0].Method)
	assert.Equal(t, "/api/swf/workflows/greeting", (*recorded)[0].Path)
}

func TestSwfClientResponseError(t *testing.T) {
	body := map[string]any{
		"error": map[string]string{"name": "NotFoundError", "message": "no workflow missing"},
	}
	srv, _ := newRecordingServer(t, http.StatusNotFound, body)
	client := NewSwfClient(NewStaticDiscovery(srv.URL))

	_, err := client.GetWorkflow(context.Background(), "missing")
	require.Error(t, err)

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.True(t, respErr.NotFound())
	assert.Equal(t, "Not Found", respErr.StatusText)
	require.NotNil(t, respErr.Body)
	assert.Equal(t, "NotFoundError", respErr.Body.Error.Name)
	assert.Equal(t, "Request failed with 404 Not Found, no workflow missing", err.Error())
}

func TestSwfClientProblemDetails(t *testing.T) {
	body := map[string]any{"title": "Bad Request", "detail": "uri is required", "status": 400}
	srv, _ := newRecordingServer(t, http.StatusBadRequest, body)
	client := NewSwfClient(NewStaticDiscovery(srv.URL))

	_, err := client.CreateWorkflowDefinition(context.Background(), "", "{}")
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "uri is required", respErr.Body.Message())
}

func TestSwfClientDiscoveryFailure(t *testing.T) {
	client := NewSwfClient(failingDiscovery{})
	_, err := client.ListWorkflows(context.Background())
	assert.ErrorIs(t, err, errDiscovery)
}

var errDiscovery = errors.New("discovery down")

type failingDiscovery struct{}

func (failingDiscovery) BaseURL(context.Context, string) (string, error) {
	return "", errDiscovery
}

func TestStaticDiscovery(t *testing.T) {
	d := NewStaticDiscovery("http://backend:7007/")
	base, err := d.BaseURL(context.Background(), models.PluginID)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:7007/api/swf", base)

	_, err = d.BaseURL(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnknownPlugin)
}

func TestErrorBodyMessageNil(t *testing.T) {
	var body *ErrorBody
	assert.Equal(t, "", body.Message())

	err := &ResponseError{StatusCode: 500, StatusText: "Internal Server Error"}
	assert.Equal(t, "Request failed with 500 Internal Server Error", err.Error())
}
