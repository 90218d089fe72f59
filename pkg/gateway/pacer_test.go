package gateway

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meetecho-oss/b2bua-core/pkg/ice"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKeyframePacer_AllowsFirstThenPaces(t *testing.T) {
	p := NewKeyframePacer(50*time.Millisecond, discardLogger())
	stream := ice.StreamID("video")

	require.True(t, p.Allow(stream))
	require.False(t, p.Allow(stream))

	time.Sleep(60 * time.Millisecond)
	require.True(t, p.Allow(stream))
}

func TestKeyframePacer_PerStreamIndependent(t *testing.T) {
	p := NewKeyframePacer(50*time.Millisecond, discardLogger())

	require.True(t, p.Allow(ice.StreamID("audio")))
	require.True(t, p.Allow(ice.StreamID("video")))
}

func TestKeyframePacer_ZeroIntervalDisabled(t *testing.T) {
	p := NewKeyframePacer(0, discardLogger())
	stream := ice.StreamID("video")

	require.True(t, p.Allow(stream))
	require.True(t, p.Allow(stream))
	require.True(t, p.Allow(stream))
}

func TestKeyframePacer_WaitRespectsContext(t *testing.T) {
	p := NewKeyframePacer(time.Hour, discardLogger())
	stream := ice.StreamID("video")
	require.True(t, p.Allow(stream))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Wait(ctx, stream)
	require.Error(t, err)
}

func TestKeyframePacer_Forget(t *testing.T) {
	p := NewKeyframePacer(50*time.Millisecond, discardLogger())
	stream := ice.StreamID("video")
	require.True(t, p.Allow(stream))
	require.False(t, p.Allow(stream))

	p.Forget(stream)
	require.True(t, p.Allow(stream))
}
