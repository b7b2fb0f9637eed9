package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/server"
	"github.com/rogersnm/taskmanager/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL+"/", srv.Client())
}

func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestClient_Create(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "Buy milk", body["title"])
		assert.NotContains(t, body, "status")

		jsonResponse(w, 201, map[string]any{
			"id":          "cs1h2u8n4ffmtoa0ps6g",
			"title":       "Buy milk",
			"description": "",
			"status":      "pending",
			"createdAt":   "2026-01-01T00:00:00Z",
			"updatedAt":   "2026-01-01T00:00:00Z",
		})
	})

	task, err := c.Create(context.Background(), model.TaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "cs1h2u8n4ffmtoa0ps6g", task.ID)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, 2026, task.CreatedAt.Year())
}

func TestClient_FindQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "c++ & more", r.URL.Query().Get("keyword"))
		assert.Equal(t, "in-progress", r.URL.Query().Get("status"))
		jsonResponse(w, 200, []any{})
	})

	tasks, err := c.Find(context.Background(), store.Filter{Keyword: "c++ & more", Status: model.StatusInProgress})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestClient_FindNoQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte("null"))
	})

	tasks, err := c.Find(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
}

func TestClient_ErrorResponses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			jsonResponse(w, 404, map[string]string{"error": "Task not found"})
		case "PUT":
			jsonResponse(w, 400, map[string]string{"error": "invalid status"})
		default:
			w.WriteHeader(500)
		}
	})
	ctx := context.Background()

	_, err := c.FindByID(ctx, "x")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.EqualError(t, err, "API error 404: Task not found")

	done := model.StatusCompleted
	_, err = c.UpdateByID(ctx, "x", model.TaskUpdate{Status: &done})
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	err = c.DeleteByID(ctx, "x")
	assert.EqualError(t, err, "API error 500")
}

func TestClient_PathEscaping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/a%2Fb", r.URL.RawPath)
		jsonResponse(w, 200, map[string]string{"message": "Task deleted successfully"})
	})
	require.NoError(t, c.DeleteByID(context.Background(), "a/b"))
}

func TestClient_AgainstServer(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir(), logr.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(server.New(st, logr.Discard(), server.Options{}).Handler())
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	task, err := c.Create(ctx, model.TaskInput{Title: "Write report", Description: "quarterly"})
	require.NoError(t, err)

	found, err := c.Find(ctx, store.Filter{Keyword: "QUARTER"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, task.ID, found[0].ID)

	title := "Write final report"
	updated, err := c.UpdateByID(ctx, task.ID, model.TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "quarterly", updated.Description)

	require.NoError(t, c.DeleteByID(ctx, task.ID))
	_, err = c.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, c.DeleteByID(ctx, task.ID), store.ErrNotFound)

	_, err = c.Create(ctx, model.TaskInput{})
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	require.NoError(t, c.Close())
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Find(context.Background(), store.Filter{})
	assert.Error(t, err)
}
