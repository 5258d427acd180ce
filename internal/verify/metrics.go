package verify

import (
	"sync/atomic"
	"time"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/primality"
)

// MetricsCollector defines an interface for collecting verification
// metrics. Implement it to integrate with an external monitoring system.
type MetricsCollector interface {
	// RecordCandidate is called once per classified candidate value.
	RecordCandidate(verdict primality.Verdict)

	// RecordQuadruplet is called after each full quadruplet check.
	// duration covers the six evaluations and classifications.
	RecordQuadruplet(valid bool, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCandidate(primality.Verdict)    {}
func (NoopMetricsCollector) RecordQuadruplet(bool, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	CandidateCount  atomic.Int64
	PrimeCount      atomic.Int64
	CompositeCount  atomic.Int64
	QuadrupletCount atomic.Int64
	ValidCount      atomic.Int64
	TotalNanos      atomic.Int64
}

// RecordCandidate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCandidate(verdict primality.Verdict) {
	b.CandidateCount.Add(1)
	if verdict == primality.VerdictPrime {
		b.PrimeCount.Add(1)
	} else {
		b.CompositeCount.Add(1)
	}
}

// RecordQuadruplet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuadruplet(valid bool, duration time.Duration) {
	b.QuadrupletCount.Add(1)
	b.TotalNanos.Add(duration.Nanoseconds())
	if valid {
		b.ValidCount.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CandidateCount:  b.CandidateCount.Load(),
		PrimeCount:      b.PrimeCount.Load(),
		CompositeCount:  b.CompositeCount.Load(),
		QuadrupletCount: b.QuadrupletCount.Load(),
		ValidCount:      b.ValidCount.Load(),
		AvgNanos:        b.avgNanos(),
	}
}

func (b *BasicMetricsCollector) avgNanos() int64 {
	count := b.QuadrupletCount.Load()
	if count == 0 {
		return 0
	}
	return b.TotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CandidateCount  int64
	PrimeCount      int64
	CompositeCount  int64
	QuadrupletCount int64
	ValidCount      int64
	AvgNanos        int64
}
