// Package bench configures and runs benchsets: groups of engine targets that
// execute against the same dataset, compared by throughput.
package bench

import (
	"fmt"
	"time"
)

// MB is a decimal megabyte. Size tiers and throughput use decimal units.
const MB = 1_000_000

// Options are the timing parameters of a benchset. A zero field means the
// runner's default.
type Options struct {
	WarmUp      time.Duration
	Measurement time.Duration
	SampleSize  int
}

// OptionsForSize derives timing options from the dataset size so that slow
// engines still complete enough iterations on large files without small
// files wasting suite time.
func OptionsForSize(size int64) Options {
	var o Options

	switch {
	case size >= 100*MB:
		o.WarmUp = 10 * time.Second
	case size >= 10*MB:
		o.WarmUp = 5 * time.Second
	}

	switch {
	case size >= 100*MB:
		o.Measurement = 45 * time.Second
	case size >= 10*MB:
		o.Measurement = 25 * time.Second
	case size >= 1*MB:
		o.Measurement = 10 * time.Second
	}

	if size >= 100*MB {
		o.SampleSize = 10
	}
	return o
}

// WithDefaults fills every zero field from d.
func (o Options) WithDefaults(d Options) Options {
	if o.WarmUp == 0 {
		o.WarmUp = d.WarmUp
	}
	if o.Measurement == 0 {
		o.Measurement = d.Measurement
	}
	if o.SampleSize == 0 {
		o.SampleSize = d.SampleSize
	}
	return o
}

// String renders the options for logs.
func (o Options) String() string {
	return fmt.Sprintf("warm-up=%s measurement=%s samples=%d", o.WarmUp, o.Measurement, o.SampleSize)
}
