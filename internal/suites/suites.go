// Package suites declares the benchmark catalog: named benchsets grouped
// into suites, each built against the dataset resolver on demand.
package suites

import (
	"context"
	"fmt"
	"sort"

	"github.com/jpbench/jpbench/internal/bench"
	"github.com/jpbench/jpbench/internal/dataset"
	"github.com/jpbench/jpbench/internal/engine"
	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// Benchmark is one benchset declaration.
type Benchmark struct {
	// Name is the benchset name within its dataset.
	Name string
	// Dataset is the registry id of the input.
	Dataset string
	// Build resolves the dataset and prepares every target.
	Build func(ctx context.Context, resolver *dataset.Resolver) (*bench.ConfiguredBenchset, error)
}

// ID returns "<dataset>::<name>".
func (b Benchmark) ID() string {
	return b.Dataset + "::" + b.Name
}

// Suite is a named group of benchmarks.
type Suite struct {
	Name       string
	Benchmarks []Benchmark
}

// Datasets returns the distinct dataset ids the suite needs, sorted.
func (s Suite) Datasets() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range s.Benchmarks {
		if !seen[b.Dataset] {
			seen[b.Dataset] = true
			ids = append(ids, b.Dataset)
		}
	}
	sort.Strings(ids)
	return ids
}

// All returns every suite.
func All() []Suite {
	return []Suite{Main(), Openfood(), Crossref(), Parity(), Rewrite()}
}

// Names returns the names of all suites.
func Names() []string {
	var names []string
	for _, s := range All() {
		names = append(names, s.Name)
	}
	return names
}

// Lookup returns the suite called name.
func Lookup(name string) (Suite, error) {
	for _, s := range All() {
		if s.Name == name {
			return s, nil
		}
	}
	return Suite{}, bencherrors.NewConfigError(fmt.Sprintf("unknown suite %q", name))
}

// define builds a Benchmark whose targets are added by configure.
func define(datasetID, name string, configure func(b *bench.Benchset) *bench.Benchset) Benchmark {
	return Benchmark{
		Name:    name,
		Dataset: datasetID,
		Build: func(ctx context.Context, resolver *dataset.Resolver) (*bench.ConfiguredBenchset, error) {
			return configure(bench.New(ctx, resolver, datasetID, name)).Finish()
		},
	}
}

// native holds equivalent queries for the engines with their own dialects.
// Empty fields are skipped.
type native struct {
	gjson    string
	gojq     string
	gabs     string
	fastjson string
}

func (n native) addTo(b *bench.Benchset) *bench.Benchset {
	for _, q := range []struct {
		kind  engine.Kind
		query string
	}{
		{engine.KindGjson, n.gjson},
		{engine.KindGojq, n.gojq},
		{engine.KindGabs, n.gabs},
		{engine.KindFastjson, n.fastjson},
	} {
		if q.query != "" {
			b.Add(q.kind, q.query)
		}
	}
	return b
}

// allWith applies query to the JSONPath roster and adds the native
// equivalents.
func allWith(query string, n native) func(b *bench.Benchset) *bench.Benchset {
	return func(b *bench.Benchset) *bench.Benchset {
		return n.addTo(b.AddAll(query))
	}
}
