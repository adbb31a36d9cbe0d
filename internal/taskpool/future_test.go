package taskpool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_ResolveDeliversValue(t *testing.T) {
	future := newFuture(uuid.New())

	go future.resolve("peaks")

	value, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "peaks", value)
}

func TestFuture_RejectDeliversError(t *testing.T) {
	future := newFuture(uuid.New())
	expected := errors.New("decode failed")

	future.reject(expected)

	_, err := future.Await(context.Background())
	assert.ErrorIs(t, err, expected)
}

func TestFuture_ResolutionIsExactlyOnce(t *testing.T) {
	future := newFuture(uuid.New())

	future.resolve(1)
	future.resolve(2)
	future.reject(errors.New("too late"))

	value, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, value, "first resolution must win")

	// A second Await observes the same outcome.
	value, err = future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestFuture_AwaitHonorsContext(t *testing.T) {
	future := newFuture(uuid.New())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := future.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The future itself is still unresolved and usable.
	future.resolve("late but fine")
	value, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late but fine", value)
}

func TestFuture_DoneClosesOnResolution(t *testing.T) {
	future := newFuture(uuid.New())

	select {
	case <-future.Done():
		t.Fatal("Done closed before resolution")
	default:
	}

	future.resolve(nil)

	select {
	case <-future.Done():
	case <-time.After(time.Second):
		t.Fatal("Done did not close after resolution")
	}
}
