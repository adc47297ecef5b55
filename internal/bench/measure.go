package bench

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jpbench/jpbench/internal/engine"
	"github.com/jpbench/jpbench/internal/stats"
)

// DefaultOptions are the sampler settings used for zero option fields.
var DefaultOptions = Options{
	WarmUp:      3 * time.Second,
	Measurement: 5 * time.Second,
	SampleSize:  100,
}

// Measurement is the sampled result of one target.
type Measurement struct {
	TargetID   string
	Engine     engine.Kind
	Query      string
	Count      uint64
	Iterations int64
	// Samples are mean nanoseconds per iteration, one per sample.
	Samples    []float64
	Summary    stats.Summary
	Throughput float64 // decimal MB/s at the mean
}

// Report is the result of measuring a benchset outside of go test.
type Report struct {
	BenchsetID   string
	DatasetPath  string
	DatasetBytes int64
	Options      Options
	StartedAt    time.Time
	Duration     time.Duration
	Measurements []Measurement
}

// Measure samples every target with the benchset's options, falling back to
// DefaultOptions for zero fields.
func (c *ConfiguredBenchset) Measure(ctx context.Context) (*Report, error) {
	return c.MeasureWith(ctx, c.Options.WithDefaults(DefaultOptions))
}

// MeasureWith samples every target with explicit options. Each target is
// warmed up, then timed in SampleSize samples spread over the measurement
// time. An execution error aborts the benchset. Cancellation is checked
// between samples.
func (c *ConfiguredBenchset) MeasureWith(ctx context.Context, opts Options) (*Report, error) {
	opts = opts.WithDefaults(Options{SampleSize: 1})
	report := &Report{
		BenchsetID:   c.ID,
		DatasetPath:  c.File.Path,
		DatasetBytes: c.File.Size,
		Options:      opts,
		StartedAt:    time.Now(),
	}

	for _, target := range c.Targets {
		m, err := c.measureTarget(ctx, target, opts)
		if err != nil {
			return nil, fmt.Errorf("measuring %s/%s: %w", c.ID, target.ID(), err)
		}
		log.Printf("%s/%s: %d matches, mean %s, %.2f MB/s",
			c.ID, target.ID(), m.Count, time.Duration(m.Summary.Mean), m.Throughput)
		report.Measurements = append(report.Measurements, *m)
	}

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

func (c *ConfiguredBenchset) measureTarget(ctx context.Context, target engine.Target, opts Options) (*Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	perIter, err := warmUp(target, opts.WarmUp)
	if err != nil {
		return nil, err
	}
	if perIter <= 0 {
		perIter = 1
	}

	itersPerSample := int64(opts.Measurement) / int64(perIter) / int64(opts.SampleSize)
	if itersPerSample < 1 {
		itersPerSample = 1
	}

	m := &Measurement{
		TargetID: target.ID(),
		Engine:   target.Engine(),
		Query:    target.Query(),
		Samples:  make([]float64, 0, opts.SampleSize),
	}

	for s := 0; s < opts.SampleSize; s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		for i := int64(0); i < itersPerSample; i++ {
			n, err := target.Run()
			if err != nil {
				return nil, err
			}
			m.Count = n
		}
		elapsed := time.Since(start)
		m.Iterations += itersPerSample
		m.Samples = append(m.Samples, float64(elapsed.Nanoseconds())/float64(itersPerSample))
	}
	sink = m.Count

	m.Summary = stats.Summarize(m.Samples)
	m.Throughput = stats.Throughput(c.File.Size, m.Summary.Mean)
	return m, nil
}
