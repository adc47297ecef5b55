package suites

import (
	"github.com/jpbench/jpbench/internal/bench"
	"github.com/jpbench/jpbench/internal/dataset"
	"github.com/jpbench/jpbench/internal/engine"
)

// Crossref runs descendant-heavy queries over the Crossref dumps, plus the
// same affiliation query on every dump size to show scaling.
func Crossref() Suite {
	benchmarks := []Benchmark{
		define(dataset.Crossref4, "DOI", func(b *bench.Benchset) *bench.Benchset {
			return b.AddAll("$..DOI")
		}),
		define(dataset.Crossref4, "title", func(b *bench.Benchset) *bench.Benchset {
			return native{
				gjson:    "items.#.title",
				gojq:     ".items[].title | values",
				gabs:     "items.*.title",
				fastjson: "items.*.title",
			}.addTo(b.AddAll("$..title"))
		}),
		define(dataset.Crossref4, "orcid", func(b *bench.Benchset) *bench.Benchset {
			return native{
				gjson:    "items.#.author.#.ORCID",
				gojq:     ".items[].author[]?.ORCID | values",
				fastjson: "items.*.author.*.ORCID",
			}.addTo(b.AddAll("$..author..ORCID"))
		}),
		define(dataset.Crossref4, "affiliation", func(b *bench.Benchset) *bench.Benchset {
			return native{
				gjson:    "items.#.author.#.affiliation.#.name",
				gojq:     ".items[].author[]?.affiliation[]?.name | values",
				fastjson: "items.*.author.*.affiliation.*.name",
			}.addTo(b.AddAll("$..affiliation..name"))
		}),
	}

	for _, id := range []string{dataset.Crossref0, dataset.Crossref1, dataset.Crossref2, dataset.Crossref4} {
		benchmarks = append(benchmarks, define(id, "scalability_affiliation", func(b *bench.Benchset) *bench.Benchset {
			return b.
				Add(engine.Primary, "$..affiliation..name").
				Add(engine.KindAjson, "$..affiliation..name")
		}))
	}

	return Suite{Name: "crossref", Benchmarks: benchmarks}
}
