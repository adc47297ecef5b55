package dataset

import (
	"fmt"
	"io"
	"log"
	"time"
)

// progressInterval bounds how often a progress line is logged per stream.
var progressInterval = time.Second

// progressReader logs how much of a stream has been consumed. Lines are
// emitted at most once per progressInterval so large datasets do not flood
// the log.
type progressReader struct {
	r     io.Reader
	stage string
	name  string
	total int64
	read  int64
	last  time.Time
}

func newProgressReader(r io.Reader, stage, name string, total int64) *progressReader {
	return &progressReader{
		r:     r,
		stage: stage,
		name:  name,
		total: total,
		last:  time.Now(),
	}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)

	if now := time.Now(); now.Sub(p.last) >= progressInterval {
		p.last = now
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.total > 0 {
		log.Printf("%s %s: %s/%s (%.1f%%)", p.stage, p.name,
			formatBytes(p.read), formatBytes(p.total), 100*float64(p.read)/float64(p.total))
		return
	}
	log.Printf("%s %s: %s", p.stage, p.name, formatBytes(p.read))
}

// formatBytes renders a byte count with a decimal unit.
func formatBytes(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "kMGTPE"[exp])
}
