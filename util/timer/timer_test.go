package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// go test -v -run=TestRandDuration
func TestRandDuration(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := RandDuration(time.Second, 0.2)
		require.GreaterOrEqual(t, d, 800*time.Millisecond)
		require.LessOrEqual(t, d, 1200*time.Millisecond)
	}
	require.Equal(t, time.Second, RandDuration(time.Second, 0))
}

// go test -v -run=TestResetTimer
func TestResetTimer(t *testing.T) {
	timer := time.NewTimer(time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	// the stale tick is drained
	ResetTimer(timer, time.Hour)
	select {
	case <-timer.C:
		t.Fatal("timer fired early")
	case <-time.After(20 * time.Millisecond):
	}
	StopTimer(timer)
}
