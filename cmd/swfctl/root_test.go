package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

func newBackend(t *testing.T) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/swf/items", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"id":"greeting","name":"Greeting","definition":""}],"limit":0,"offset":0,"totalCount":1}`)
	})
	mux.HandleFunc("GET /api/swf/instances/{id}/jobs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"0123456789","status":"SCHEDULED","expirationTime":"2100-01-01T00:00:00Z"}]`)
	})
	mux.HandleFunc("POST /api/swf/workflows", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "greeting", "name": "Greeting", "definition": string(body)})
	})
	mux.HandleFunc("DELETE /api/swf/workflows/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/swf/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"name":"NotFoundError","message":"no such workflow"}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--backend", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	srv, _ := newBackend(t)

	out, err := run(t, srv, "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalCount": 1`)
	assert.Contains(t, out, `"id": "greeting"`)
}

func TestJobsCommandRendersTable(t *testing.T) {
	srv, _ := newBackend(t)

	out, err := run(t, srv, "jobs", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Timer Id")
	assert.Contains(t, out, "0123456")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "Scheduled")
	assert.Contains(t, out, "expires")
}

func TestCreateCommandDefaultsURIToFileName(t *testing.T) {
	srv, calls := newBackend(t)
	path := filepath.Join(t.TempDir(), "greeting.sw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: greeting\n"), 0o644))

	_, err := run(t, srv, "create", path)
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, "uri=greeting.sw.yaml", (*calls)[0].query)
	assert.Equal(t, "id: greeting\n", (*calls)[0].body)
}

func TestCreateCommandURIFlag(t *testing.T) {
	srv, calls := newBackend(t)
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: greeting\n"), 0o644))

	_, err := run(t, srv, "create", path, "--uri", "greeting.sw.yaml")
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, "uri=greeting.sw.yaml", (*calls)[0].query)
}

func TestDeleteCommand(t *testing.T) {
	srv, calls := newBackend(t)

	out, err := run(t, srv, "delete", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "deleted greeting\n", out)
	require.Len(t, *calls, 1)
	assert.Equal(t, "/api/swf/workflows/greeting", (*calls)[0].path)
}

func TestGetCommandSurfacesResponseError(t *testing.T) {
	srv, _ := newBackend(t)

	_, err := run(t, srv, "get", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Request failed with 404")
}

func TestArgsAreValidated(t *testing.T) {
	srv, _ := newBackend(t)

	_, err := run(t, srv, "get")
	assert.Error(t, err)
}
