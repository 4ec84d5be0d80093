package stream

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/goecg/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStream_GracefulShutdown_NoCallbacksAfterStop tests that the stream stops
// notifying once Stop returns.
func TestStream_GracefulShutdown_NoCallbacksAfterStop(t *testing.T) {
	s, err := New(fastConfig(), Realtime, seeded())
	require.NoError(t, err)

	var calls atomic.Int32
	s.OnUpdate(func() { calls.Add(1) })

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() > 2 }, time.Second, time.Millisecond)

	s.Stop()
	stopped := calls.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "callback fired after Stop")
}

// TestStream_GracefulShutdown_ReplacedBufferIsSilent tests that appends to a
// buffer retired by Reconfigure do not reach stream subscribers.
func TestStream_GracefulShutdown_ReplacedBufferIsSilent(t *testing.T) {
	s, err := New(fastConfig(), Realtime, seeded(), WithClock(fixedClock()))
	require.NoError(t, err)

	old := s.Buffer()

	var calls atomic.Int32
	s.OnUpdate(func() { calls.Add(1) })

	require.NoError(t, s.Reconfigure(fastConfig()))
	require.NotSame(t, old, s.Buffer())
	after := calls.Load()

	old.Append([]sample.Sample{{Timestamp: t0.Add(time.Second), Value: 1}})
	assert.Equal(t, after, calls.Load(), "retired buffer notified subscribers")
}

// TestStream_GracefulShutdown_StopBeforeStart tests that Stop on an idle
// stream is a no-op.
func TestStream_GracefulShutdown_StopBeforeStart(t *testing.T) {
	s, err := New(fastConfig(), Timeline, seeded())
	require.NoError(t, err)

	assert.NotPanics(t, s.Stop)
	assert.False(t, s.Running())

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	assert.False(t, s.Running())
}

// TestStream_GracefulShutdown_CancelledStaysStopped tests that a stream stopped
// by its context neither reports running nor is revived by Reconfigure, and can
// be started again with a fresh context.
func TestStream_GracefulShutdown_CancelledStaysStopped(t *testing.T) {
	s, err := New(fastConfig(), Realtime, seeded())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	assert.Eventually(t, func() bool { return !s.Running() }, time.Second, time.Millisecond)

	require.NoError(t, s.Reconfigure(fastConfig()))
	assert.False(t, s.Running(), "reconfigure revived a cancelled stream")

	reconfigured := s.Buffer().Version()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, reconfigured, s.Buffer().Version(), "no production after cancellation")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())
	s.Stop()
}
