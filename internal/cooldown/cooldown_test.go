package cooldown

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestGate() (*Gate, *time.Time) {
	current := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	g := NewGate(zerolog.Nop())
	g.now = func() time.Time { return current }
	return g, &current
}

func TestGateAllowsFirstCaller(t *testing.T) {
	g, _ := newTestGate()
	require.True(t, g.TryAcquire("A"))
}

func TestGateRejectsCallerWithinUserCooldown(t *testing.T) {
	g, clock := newTestGate()

	require.True(t, g.TryAcquire("A"))

	*clock = clock.Add(30 * time.Second) // global window passed, user window has not
	require.False(t, g.TryAcquire("A"))

	*clock = clock.Add(31 * time.Second) // 61s since A's success
	require.True(t, g.TryAcquire("A"))
}

func TestGateRejectsOtherCallerWithinGlobalCooldown(t *testing.T) {
	g, clock := newTestGate()

	require.True(t, g.TryAcquire("A"))

	*clock = clock.Add(10 * time.Second)
	require.False(t, g.TryAcquire("B"))

	*clock = clock.Add(6 * time.Second) // 16s since A's success
	require.True(t, g.TryAcquire("B"))
}

func TestGateRejectedAttemptDoesNotResetWindows(t *testing.T) {
	g, clock := newTestGate()

	require.True(t, g.TryAcquire("A"))

	*clock = clock.Add(10 * time.Second)
	require.False(t, g.TryAcquire("B"))

	// B's rejected attempt at t=10s must not push the global window forward.
	*clock = clock.Add(6 * time.Second)
	require.True(t, g.TryAcquire("B"))
}

func TestGateSuccessArmsGlobalWindow(t *testing.T) {
	g, clock := newTestGate()

	require.True(t, g.TryAcquire("A"))

	*clock = clock.Add(16 * time.Second)
	require.True(t, g.TryAcquire("B"))

	// C is blocked by B's success, not A's.
	*clock = clock.Add(14 * time.Second)
	require.False(t, g.TryAcquire("C"))

	*clock = clock.Add(1 * time.Second)
	require.True(t, g.TryAcquire("C"))
}

func TestGateRejectsImmediateDoubleTrigger(t *testing.T) {
	g, _ := newTestGate()

	require.True(t, g.TryAcquire("A"))
	require.False(t, g.TryAcquire("A"))
	require.False(t, g.TryAcquire("B"))
}
