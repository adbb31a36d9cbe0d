package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/clipforge/clipforge/internal/taskpool"
)

// ErrUnknownContainer is returned when the probed header matches no
// container the editor can open.
var ErrUnknownContainer = errors.New("unrecognized media container")

// ProbeRequest asks for container identification from the leading bytes of
// a clip file. The UI reads the header on import; identification itself
// happens off the UI thread.
type ProbeRequest struct {
	// Path is carried through for the result; it is not read by the probe.
	Path string `json:"path"`

	// Header is the first chunk of the file, at least 12 bytes.
	Header []byte `json:"header"`
}

// ProbeResult names the detected container.
type ProbeResult struct {
	Path      string `json:"path"`
	Container string `json:"container"`
	HasVideo  bool   `json:"has_video"`
}

// ProbeHandler sniffs the container format from file magic. It recognizes
// the containers the editor supports; anything else is a handler error the
// UI surfaces as "unsupported file".
func ProbeHandler(ctx context.Context, payload any, progress taskpool.ProgressFunc) (any, error) {
	req, ok := payload.(ProbeRequest)
	if !ok {
		return nil, fmt.Errorf("probe handler: unexpected payload type %T", payload)
	}
	if len(req.Header) < 12 {
		return nil, fmt.Errorf("probe header too short: %d bytes", len(req.Header))
	}

	progress("sniffing container", 0)

	header := req.Header
	result := ProbeResult{Path: req.Path}

	switch {
	case bytes.HasPrefix(header, []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		result.Container = "wav"
	case bytes.HasPrefix(header, []byte("fLaC")):
		result.Container = "flac"
	case bytes.Equal(header[4:8], []byte("ftyp")):
		result.Container = "mp4"
		result.HasVideo = true
	case bytes.HasPrefix(header, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		result.Container = "webm"
		result.HasVideo = true
	case bytes.HasPrefix(header, []byte("OggS")):
		result.Container = "ogg"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownContainer, req.Path)
	}

	progress("sniffing container", 1)
	return result, nil
}
