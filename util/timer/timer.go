package timer

import (
	"math/rand"
	"time"
)

// RandDuration returns a duration drawn uniformly from
// [(1-delta)*average, (1+delta)*average].
func RandDuration(average time.Duration, delta float64) time.Duration {
	return time.Duration((1 - delta + 2*rand.Float64()*delta) * float64(average))
}

// StopTimer stops timer and drains its channel if it already fired.
func StopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

func ResetTimer(timer *time.Timer, duration time.Duration) {
	StopTimer(timer)
	timer.Reset(duration)
}
