package media

import (
	"encoding/json"
	"testing"

	"github.com/clipforge/clipforge/internal/taskpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAll(t *testing.T) {
	registry := taskpool.NewRegistry()

	require.NoError(t, RegisterAll(registry))
	assert.ElementsMatch(t,
		[]string{TaskTypeProbe, TaskTypeWaveform, TaskTypeTranscode},
		registry.TaskTypes())

	// Registering twice over the same registry must fail, not silently
	// overwrite handlers.
	assert.Error(t, RegisterAll(registry))
}

func TestDecodePayload_TypedRequests(t *testing.T) {
	payload, err := DecodePayload(TaskTypeWaveform, json.RawMessage(
		`{"samples": [0.1, -0.2], "channels": 1, "buckets": 2}`))
	require.NoError(t, err)

	req, ok := payload.(WaveformRequest)
	require.True(t, ok, "expected WaveformRequest, got %T", payload)
	assert.Equal(t, []float64{0.1, -0.2}, req.Samples)
	assert.Equal(t, 2, req.Buckets)

	payload, err = DecodePayload(TaskTypeTranscode, json.RawMessage(
		`{"codec": "h264", "frame_count": 10, "bitrate_kbps": 1000}`))
	require.NoError(t, err)
	assert.IsType(t, TranscodeRequest{}, payload)

	payload, err = DecodePayload(TaskTypeProbe, json.RawMessage(
		`{"path": "/clips/a.wav", "header": "UklGRgAAAABXQVZF"}`))
	require.NoError(t, err)
	assert.IsType(t, ProbeRequest{}, payload)
}

func TestDecodePayload_UnknownTypeFallsBackToGeneric(t *testing.T) {
	payload, err := DecodePayload("echo", json.RawMessage(`{"n": 3}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": float64(3)}, payload)
}

func TestDecodePayload_InvalidJSON(t *testing.T) {
	_, err := DecodePayload(TaskTypeWaveform, json.RawMessage(`{`))
	assert.Error(t, err)
}
