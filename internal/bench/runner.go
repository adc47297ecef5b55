package bench

import (
	"testing"
	"time"

	"github.com/jpbench/jpbench/internal/engine"
)

// sink receives every match count so the compiler cannot drop the runs.
var sink uint64

// RunB runs every target as a sub-benchmark of b. Warm-up happens once per
// target before the timer starts. Measurement time and sample size have no
// direct equivalent in the testing package and are logged as -benchtime and
// -count hints.
func (c *ConfiguredBenchset) RunB(b *testing.B) {
	if c.Options.Measurement > 0 || c.Options.SampleSize > 0 {
		b.Logf("%s: %s (use -benchtime and -count to match)", c.ID, c.Options)
	}

	b.Run(c.ID, func(b *testing.B) {
		for _, target := range c.Targets {
			target := target
			warmed := c.Options.WarmUp == 0

			b.Run(target.ID(), func(b *testing.B) {
				b.SetBytes(c.File.Size)
				if !warmed {
					if _, err := warmUp(target, c.Options.WarmUp); err != nil {
						b.Fatalf("%s: %v", c.ID, err)
					}
					warmed = true
				}

				var count uint64
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					n, err := target.Run()
					if err != nil {
						b.Fatalf("%s: %v", c.ID, err)
					}
					count = n
				}
				b.StopTimer()

				sink = count
				b.ReportMetric(float64(count), "matches/op")
			})
		}
	})
}

// warmUp runs target repeatedly for at least d and at least once. It returns
// the mean time per run.
func warmUp(target engine.Target, d time.Duration) (time.Duration, error) {
	start := time.Now()
	var iters int64
	for {
		n, err := target.Run()
		if err != nil {
			return 0, err
		}
		sink = n
		iters++
		if elapsed := time.Since(start); elapsed >= d {
			return elapsed / time.Duration(iters), nil
		}
	}
}
