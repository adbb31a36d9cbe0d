package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/clipforge/clipforge/internal/media"
	"github.com/clipforge/clipforge/internal/taskpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newTestServer(t *testing.T) (*httptest.Server, *taskpool.Pool) {
	t.Helper()

	registry := taskpool.NewRegistry()
	require.NoError(t, media.RegisterAll(registry))
	require.NoError(t, registry.Register("echo", func(ctx context.Context, payload any, progress taskpool.ProgressFunc) (any, error) {
		return payload, nil
	}))

	pool := taskpool.New(registry, taskpool.Options{
		Config: taskpool.Config{Workers: 2},
	}, setupTestLogger())
	t.Cleanup(pool.Shutdown)

	router := NewRouter(RouterConfig{
		Pool:   pool,
		Decode: media.DecodePayload,
		Logger: setupTestLogger(),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, pool
}

func postTask(t *testing.T, server *httptest.Server, body string) (*http.Response, submitTaskResponse) {
	t.Helper()

	resp, err := http.Post(server.URL+"/tasks", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded submitTaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	server, pool := newTestServer(t)

	resp, err := http.Get(server.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats taskpool.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, pool.Size(), stats.Workers)
}

func TestSubmitTask_Echo(t *testing.T) {
	server, _ := newTestServer(t)

	resp, decoded := postTask(t, server, `{"task_type": "echo", "payload": {"n": 3}}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decoded.TaskID)
	assert.Empty(t, decoded.Error)
	assert.Equal(t, map[string]any{"n": float64(3)}, decoded.Result)
}

func TestSubmitTask_Waveform(t *testing.T) {
	server, _ := newTestServer(t)

	resp, decoded := postTask(t, server,
		`{"task_type": "media.waveform", "payload": {"samples": [0, -1, 0, 1], "buckets": 2}}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	result, ok := decoded.Result.(map[string]any)
	require.True(t, ok)
	assert.Len(t, result["peaks"], 2)
}

func TestSubmitTask_HandlerErrorSurfaces(t *testing.T) {
	server, _ := newTestServer(t)

	resp, decoded := postTask(t, server,
		`{"task_type": "media.transcode", "payload": {"codec": "av1", "frame_count": 10, "bitrate_kbps": 1000}}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decoded.Error, "unsupported export codec")
}

func TestSubmitTask_UnknownTaskType(t *testing.T) {
	server, _ := newTestServer(t)

	resp, decoded := postTask(t, server, `{"task_type": "nope", "payload": null}`)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decoded.Error, "no handler registered")
}

func TestSubmitTask_BadRequests(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/tasks", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(server.URL+"/tasks", "application/json", bytes.NewBufferString(`{"payload": 1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitTask_PoolShutDown(t *testing.T) {
	server, pool := newTestServer(t)

	pool.Shutdown()

	resp, decoded := postTask(t, server, `{"task_type": "echo", "payload": 1}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, decoded.Error, "shut down")
}
