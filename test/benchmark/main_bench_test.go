package benchmark

import (
	"testing"

	"github.com/jpbench/jpbench/internal/suites"
)

func BenchmarkMain(b *testing.B) {
	runSuite(b, suites.Main())
}
