package media

import (
	"encoding/json"
	"fmt"
)

// DecodePayload turns the raw JSON body of a diagnostics submission into the
// typed payload the handler for taskType expects. Task types outside this
// package decode to a generic value.
func DecodePayload(taskType string, raw json.RawMessage) (any, error) {
	switch taskType {
	case TaskTypeProbe:
		var req ProbeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("invalid probe payload: %w", err)
		}
		return req, nil
	case TaskTypeWaveform:
		var req WaveformRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("invalid waveform payload: %w", err)
		}
		return req, nil
	case TaskTypeTranscode:
		var req TranscodeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("invalid transcode payload: %w", err)
		}
		return req, nil
	default:
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
		return value, nil
	}
}
