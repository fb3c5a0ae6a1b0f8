package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Timer provides a convenient way to time operations
type Timer struct {
	histogram prometheus.Observer
	startTime time.Time
}

// NewTimer creates a new timer using the given histogram
func NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		histogram: histogram,
		startTime: time.Now(),
	}
}

// ObserveDuration records the duration since the timer was created and returns it
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.startTime)
	t.histogram.Observe(d.Seconds())
	return d
}

// SessionTracker records the lifecycle metrics of one rpc session.
type SessionTracker struct {
	rpc   string
	timer *Timer
}

// StartSession counts a new session for rpc and starts timing it.
func StartSession(rpc string) *SessionTracker {
	SessionsStartedTotal.WithLabelValues(rpc).Inc()
	SessionsActive.WithLabelValues(rpc).Inc()
	return &SessionTracker{
		rpc:   rpc,
		timer: NewTimer(SessionDuration.WithLabelValues(rpc)),
	}
}

// Finish records the outcome. It must be called exactly once.
func (s *SessionTracker) Finish(outcome string) time.Duration {
	SessionsActive.WithLabelValues(s.rpc).Dec()
	SessionsFinishedTotal.WithLabelValues(s.rpc, outcome).Inc()
	return s.timer.ObserveDuration()
}
