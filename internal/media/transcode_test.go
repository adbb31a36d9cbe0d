package media

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscodeHandler_EncodesAllFrames(t *testing.T) {
	progress, fractions := collectProgress()

	result, err := TranscodeHandler(context.Background(), TranscodeRequest{
		Codec:       "h264",
		FrameCount:  300,
		FrameRate:   30,
		BitrateKbps: 8000,
	}, progress)

	require.NoError(t, err)
	out := result.(TranscodeResult)
	assert.Equal(t, 300, out.FramesOut)
	assert.Equal(t, 10*time.Second, out.OutputLength)

	// 8000 kbps at 30 fps: ~33333 bytes per frame.
	perFrame := int64(8000 * 1000 / 8 / 30)
	assert.Equal(t, perFrame*300, out.BytesWritten)

	require.NotEmpty(t, *fractions)
	assert.InDelta(t, 1, (*fractions)[len(*fractions)-1], 1e-9)
}

func TestTranscodeHandler_DefaultsFrameRate(t *testing.T) {
	progress, _ := collectProgress()

	result, err := TranscodeHandler(context.Background(), TranscodeRequest{
		Codec:       "vp9",
		FrameCount:  30,
		BitrateKbps: 1000,
	}, progress)

	require.NoError(t, err)
	out := result.(TranscodeResult)
	assert.Equal(t, time.Second, out.OutputLength)
}

func TestTranscodeHandler_UnsupportedCodec(t *testing.T) {
	progress, _ := collectProgress()

	_, err := TranscodeHandler(context.Background(), TranscodeRequest{
		Codec:       "av1",
		FrameCount:  10,
		BitrateKbps: 1000,
	}, progress)

	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}

func TestTranscodeHandler_InvalidRequests(t *testing.T) {
	progress, _ := collectProgress()

	_, err := TranscodeHandler(context.Background(), TranscodeRequest{
		Codec:       "h264",
		BitrateKbps: 1000,
	}, progress)
	assert.Error(t, err, "zero frame count must be rejected")

	_, err = TranscodeHandler(context.Background(), TranscodeRequest{
		Codec:      "h264",
		FrameCount: 10,
	}, progress)
	assert.Error(t, err, "zero bitrate must be rejected")

	_, err = TranscodeHandler(context.Background(), nil, progress)
	assert.Error(t, err)
}

func TestTranscodeHandler_HonorsCancellation(t *testing.T) {
	progress, _ := collectProgress()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TranscodeHandler(ctx, TranscodeRequest{
		Codec:       "h264",
		FrameCount:  100000,
		BitrateKbps: 8000,
	}, progress)

	assert.ErrorIs(t, err, context.Canceled)
}
