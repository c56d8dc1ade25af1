package monitoring

import (
	"math"
	"sort"
	"sync"
	"time"
)

const defaultLatencyWindow = 1024

// PerformanceTracker keeps the most recent prediction latencies per source
// in a fixed-size ring and summarizes them on demand.
type PerformanceTracker struct {
	mu      sync.RWMutex
	window  int
	samples map[string]*latencyRing
}

type latencyRing struct {
	values []time.Duration
	next   int
	total  int64
	failed int64
}

// LatencySummary describes the samples currently in one source's window.
// Count and Failed are lifetime totals.
type LatencySummary struct {
	Source string        `json:"source"`
	Count  int64         `json:"count"`
	Failed int64         `json:"failed"`
	Mean   time.Duration `json:"mean_ns"`
	P50    time.Duration `json:"p50_ns"`
	P95    time.Duration `json:"p95_ns"`
	Max    time.Duration `json:"max_ns"`
}

// NewPerformanceTracker keeps up to window samples per source. A
// non-positive window uses the default.
func NewPerformanceTracker(window int) *PerformanceTracker {
	if window <= 0 {
		window = defaultLatencyWindow
	}
	return &PerformanceTracker{
		window:  window,
		samples: make(map[string]*latencyRing),
	}
}

// Record adds one prediction's duration. Failed predictions count toward
// Failed but not toward the latency figures.
func (pt *PerformanceTracker) Record(source string, elapsed time.Duration, failed bool) {
	if pt == nil {
		return
	}
	pt.mu.Lock()
	defer pt.mu.Unlock()

	ring, ok := pt.samples[source]
	if !ok {
		ring = &latencyRing{values: make([]time.Duration, 0, pt.window)}
		pt.samples[source] = ring
	}
	ring.total++
	if failed {
		ring.failed++
		return
	}
	if len(ring.values) < pt.window {
		ring.values = append(ring.values, elapsed)
		return
	}
	ring.values[ring.next] = elapsed
	ring.next = (ring.next + 1) % pt.window
}

// Summaries returns one summary per source, sorted by source.
func (pt *PerformanceTracker) Summaries() []LatencySummary {
	if pt == nil {
		return nil
	}
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	summaries := make([]LatencySummary, 0, len(pt.samples))
	for source, ring := range pt.samples {
		summaries = append(summaries, ring.summarize(source))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Source < summaries[j].Source
	})
	return summaries
}

func (r *latencyRing) summarize(source string) LatencySummary {
	summary := LatencySummary{Source: source, Count: r.total, Failed: r.failed}
	if len(r.values) == 0 {
		return summary
	}

	sorted := make([]time.Duration, len(r.values))
	copy(sorted, r.values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, v := range sorted {
		sum += v
	}
	summary.Mean = sum / time.Duration(len(sorted))
	summary.P50 = percentile(sorted, 0.50)
	summary.P95 = percentile(sorted, 0.95)
	summary.Max = sorted[len(sorted)-1]
	return summary
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
