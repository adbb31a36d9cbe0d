package media

import "github.com/clipforge/clipforge/internal/taskpool"

// Task type identifiers understood by the media handlers.
const (
	TaskTypeProbe     = "media.probe"
	TaskTypeWaveform  = "media.waveform"
	TaskTypeTranscode = "media.transcode"
)

// RegisterAll wires every media handler into the registry. It must be called
// before the pool is constructed.
func RegisterAll(registry *taskpool.Registry) error {
	if err := registry.Register(TaskTypeProbe, ProbeHandler); err != nil {
		return err
	}
	if err := registry.Register(TaskTypeWaveform, WaveformHandler); err != nil {
		return err
	}
	if err := registry.Register(TaskTypeTranscode, TranscodeHandler); err != nil {
		return err
	}
	return nil
}
