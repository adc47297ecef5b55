// Package stats summarizes benchmark samples and tracks per-target results
// across a run for ranking.
package stats

import (
	"math"
	"sort"
	"sync"
	"time"

	moremath "github.com/aclements/go-moremath/stats"
	"golang.org/x/perf/benchmath"
)

// Confidence is the level of the median confidence interval.
const Confidence = 0.95

// Summary holds statistics over per-iteration sample times, in nanoseconds.
// Low and High bound the median at the Confidence level without assuming
// a distribution; they are clamped to [Min, Max].
type Summary struct {
	N          int
	Mean       float64
	Median     float64
	StdDev     float64
	Min        float64
	Max        float64
	Low        float64
	High       float64
	Confidence float64
}

// Summarize computes a Summary. The input is not modified.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	// NewSample sorts in place.
	values := make([]float64, len(samples))
	copy(values, samples)
	sample := benchmath.NewSample(values, &benchmath.DefaultThresholds)
	center := benchmath.AssumeNothing.Summary(sample, Confidence)

	lo, hi := moremath.Bounds(sample.Values)
	return Summary{
		N:          len(values),
		Mean:       moremath.Mean(sample.Values),
		Median:     center.Center,
		StdDev:     moremath.StdDev(sample.Values),
		Min:        lo,
		Max:        hi,
		Low:        clamp(center.Lo, lo, hi),
		High:       clamp(center.Hi, lo, hi),
		Confidence: Confidence,
	}
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v) || v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// Throughput returns decimal megabytes per second for processing bytes in
// nsPerIter nanoseconds.
func Throughput(bytes int64, nsPerIter float64) float64 {
	if nsPerIter <= 0 {
		return 0
	}
	return float64(bytes) / 1e6 / (nsPerIter / float64(time.Second))
}

// TargetStats is the recorded result of one target.
type TargetStats struct {
	Benchset   string
	Target     string
	Engine     string
	Mean       float64 // ns per iteration
	Throughput float64 // MB/s
	Runs       int64
	LastSeen   time.Time
}

// Tracker accumulates target results from one or more benchsets.
type Tracker struct {
	mu      sync.RWMutex
	targets map[string]*TargetStats
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{targets: make(map[string]*TargetStats)}
}

// Record stores the latest result for a target. Repeated records of the
// same benchset and target overwrite the timing and bump Runs.
// This method is O(1) and thread-safe.
func (t *Tracker) Record(benchset, target, engine string, summary Summary, bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := benchset + "\x00" + target
	s, exists := t.targets[key]
	if !exists {
		s = &TargetStats{Benchset: benchset, Target: target, Engine: engine}
		t.targets[key] = s
	}
	s.Mean = summary.Mean
	s.Throughput = Throughput(bytes, summary.Mean)
	s.Runs++
	s.LastSeen = time.Now()
}

// Fastest returns the top n targets of a benchset by throughput, fastest
// first. An empty benchset selects across all benchsets.
func (t *Tracker) Fastest(benchset string, n int) []TargetStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 || len(t.targets) == 0 {
		return []TargetStats{}
	}

	stats := make([]TargetStats, 0, len(t.targets))
	for _, s := range t.targets {
		if benchset != "" && s.Benchset != benchset {
			continue
		}
		stats = append(stats, *s)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Throughput != stats[j].Throughput {
			return stats[i].Throughput > stats[j].Throughput
		}
		return stats[i].Target < stats[j].Target
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Len returns the number of tracked targets.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.targets)
}
