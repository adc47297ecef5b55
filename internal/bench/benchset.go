package bench

import (
	"context"
	"fmt"
	"log"

	"github.com/jpbench/jpbench/internal/dataset"
	"github.com/jpbench/jpbench/internal/engine"
)

// Benchset builds a group of targets over one dataset. Methods chain; the
// first error is kept and every later call becomes a no-op, so a failing
// engine aborts the whole group instead of silently dropping out of it.
type Benchset struct {
	id       string
	file     dataset.File
	options  Options
	targets  []engine.Target
	perRun   []engine.Option
	err      error
	finished bool
}

// New resolves the dataset registered as datasetID and starts a benchset
// named "<dataset>::<name>" with timing options derived from its size.
func New(ctx context.Context, resolver *dataset.Resolver, datasetID, name string) *Benchset {
	d, err := resolver.Registry.Lookup(datasetID)
	if err != nil {
		return &Benchset{id: datasetID + "::" + name, err: err}
	}
	file, err := resolver.Resolve(ctx, d)
	if err != nil {
		return &Benchset{id: d.Name + "::" + name, err: err}
	}
	return NewFromFile(d.Name, name, *file)
}

// NewFromFile starts a benchset over an already resolved file.
func NewFromFile(datasetName, name string, file dataset.File) *Benchset {
	return &Benchset{
		id:      datasetName + "::" + name,
		file:    file,
		options: OptionsForSize(file.Size),
	}
}

// ID returns the benchset id.
func (b *Benchset) ID() string { return b.id }

// Options returns the derived timing options.
func (b *Benchset) Options() Options { return b.options }

// Err returns the first error recorded by the builder.
func (b *Benchset) Err() error { return b.err }

// MeasureFileLoadTime makes targets added afterwards load the file inside
// every measured iteration.
func (b *Benchset) MeasureFileLoadTime() *Benchset {
	b.perRun = append(b.perRun, engine.WithLoadPerRun())
	return b
}

// MeasureCompilationTime makes targets added afterwards compile the query
// inside every measured iteration.
func (b *Benchset) MeasureCompilationTime() *Benchset {
	b.perRun = append(b.perRun, engine.WithCompilePerRun())
	return b
}

// Add prepares query on the engine of the given kind. The target id is the
// engine id.
func (b *Benchset) Add(kind engine.Kind, query string) *Benchset {
	return b.AddWithID(kind, query, "")
}

// AddWithID is Add with an explicit target id, for benchsets that run the
// same engine with several queries.
func (b *Benchset) AddWithID(kind engine.Kind, query, id string) *Benchset {
	if b.err != nil || b.finished {
		return b
	}
	target, err := engine.PrepareKind(kind, id, b.file.Path, query, b.perRun...)
	if err != nil {
		b.err = err
		return b
	}
	b.targets = append(b.targets, target)
	return b
}

// AddAll applies one JSONPath query to every engine of
// engine.JSONPathEngines.
func (b *Benchset) AddAll(query string) *Benchset {
	return b.AddAllExcept(query)
}

// AddAllExcept is AddAll without the listed engines.
func (b *Benchset) AddAllExcept(query string, except ...engine.Kind) *Benchset {
	for _, kind := range engine.JSONPathEngines {
		if contains(except, kind) {
			continue
		}
		b.Add(kind, query)
	}
	return b
}

// Finish freezes the benchset. If any step failed, the targets prepared so
// far are released and the first error is returned.
func (b *Benchset) Finish() (*ConfiguredBenchset, error) {
	b.finished = true
	if b.err != nil {
		closeTargets(b.targets)
		b.targets = nil
		return nil, fmt.Errorf("configuring benchset %s: %w", b.id, b.err)
	}
	if len(b.targets) == 0 {
		return nil, fmt.Errorf("configuring benchset %s: no targets", b.id)
	}
	return &ConfiguredBenchset{
		ID:      b.id,
		File:    b.file,
		Options: b.options,
		Targets: b.targets,
	}, nil
}

// ConfiguredBenchset is an immutable, runnable benchset.
type ConfiguredBenchset struct {
	ID      string
	File    dataset.File
	Options Options
	Targets []engine.Target
}

// Throughput returns the number of bytes processed per iteration.
func (c *ConfiguredBenchset) Throughput() int64 { return c.File.Size }

// Close releases every target's loaded document.
func (c *ConfiguredBenchset) Close() error {
	return closeTargets(c.Targets)
}

func closeTargets(targets []engine.Target) error {
	var first error
	for _, t := range targets {
		if err := t.Close(); err != nil {
			log.Printf("Warning: failed to close target %s: %v", t.ID(), err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func contains(kinds []engine.Kind, k engine.Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}
