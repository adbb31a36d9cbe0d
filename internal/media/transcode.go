package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipforge/clipforge/internal/taskpool"
)

// ErrUnsupportedCodec is the handler error for an export codec the engine
// cannot produce.
var ErrUnsupportedCodec = errors.New("unsupported export codec")

// supportedCodecs are the export codecs the engine can write.
var supportedCodecs = map[string]struct{}{
	"h264":   {},
	"vp9":    {},
	"prores": {},
}

// TranscodeRequest describes one export pass over a rendered clip.
type TranscodeRequest struct {
	// Codec selects the output encoder.
	Codec string `json:"codec"`

	// FrameCount is the number of frames in the export range.
	FrameCount int `json:"frame_count"`

	// FrameRate is frames per second; zero defaults to 30.
	FrameRate float64 `json:"frame_rate"`

	// BitrateKbps is the target output bitrate.
	BitrateKbps int `json:"bitrate_kbps"`
}

// TranscodeResult summarizes a finished export pass.
type TranscodeResult struct {
	Codec        string        `json:"codec"`
	FramesOut    int           `json:"frames_out"`
	BytesWritten int64         `json:"bytes_written"`
	OutputLength time.Duration `json:"output_length"`
}

// TranscodeHandler runs the export pass frame by frame, accumulating output
// size from the target bitrate and reporting progress per chunk of frames.
// Cancellation (pool shutdown) aborts between frames.
func TranscodeHandler(ctx context.Context, payload any, progress taskpool.ProgressFunc) (any, error) {
	req, ok := payload.(TranscodeRequest)
	if !ok {
		return nil, fmt.Errorf("transcode handler: unexpected payload type %T", payload)
	}
	if _, supported := supportedCodecs[req.Codec]; !supported {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, req.Codec)
	}
	if req.FrameCount <= 0 {
		return nil, fmt.Errorf("frame count must be positive, got %d", req.FrameCount)
	}
	if req.BitrateKbps <= 0 {
		return nil, fmt.Errorf("bitrate must be positive, got %d kbps", req.BitrateKbps)
	}

	frameRate := req.FrameRate
	if frameRate <= 0 {
		frameRate = 30
	}

	bytesPerFrame := int64(float64(req.BitrateKbps) * 1000 / 8 / frameRate)

	const chunk = 64
	var written int64
	for frame := 0; frame < req.FrameCount; frame++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		written += bytesPerFrame

		if frame%chunk == 0 {
			progress("encoding", float64(frame)/float64(req.FrameCount))
		}
	}

	progress("encoding", 1)

	return TranscodeResult{
		Codec:        req.Codec,
		FramesOut:    req.FrameCount,
		BytesWritten: written,
		OutputLength: time.Duration(float64(req.FrameCount) / frameRate * float64(time.Second)),
	}, nil
}
