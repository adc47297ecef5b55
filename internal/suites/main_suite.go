package suites

import (
	"github.com/jpbench/jpbench/internal/bench"
	"github.com/jpbench/jpbench/internal/dataset"
	"github.com/jpbench/jpbench/internal/engine"
)

// Main compares the primary engine with ajson on direct and descendant
// forms of the same queries.
func Main() Suite {
	return Suite{
		Name: "main",
		Benchmarks: []Benchmark{
			define(dataset.AST, "nested_inner", func(b *bench.Benchset) *bench.Benchset {
				return b.
					Add(engine.Primary, "$..inner..inner..type.qualType").
					Add(engine.KindAjson, "$..inner..inner..type.qualType")
			}),
			define(dataset.PisonBestbuy, "products_category", func(b *bench.Benchset) *bench.Benchset {
				return native{
					gjson:    "products.#.categoryPath.#.id",
					fastjson: "products.*.categoryPath.*.id",
				}.addTo(b.
					Add(engine.Primary, "$.products[*].categoryPath[*].id").
					Add(engine.KindAjson, "$.products[*].categoryPath[*].id"))
			}),
			directAndDescendant(dataset.PisonBestbuy, "products_video_only",
				"$.products[*].videoChapters", "$..videoChapters"),
			define(dataset.PisonGoogleMap, "routes", func(b *bench.Benchset) *bench.Benchset {
				return b.
					Add(engine.Primary, "$[*].routes[*].legs[*].steps[*].distance.text").
					Add(engine.KindAjson, "$[*].routes[*].legs[*].steps[*].distance.text")
			}),
			directAndDescendant(dataset.PisonGoogleMap, "travel_modes",
				"$[*].available_travel_modes", "$..available_travel_modes"),
			directAndDescendant(dataset.PisonWalmart, "items_name",
				"$.items[*].name", "$..items[*].name"),
			directAndDescendant(dataset.Twitter, "metadata",
				"$.search_metadata.count", "$..count"),
		},
	}
}

// directAndDescendant runs the primary engine and ajson on both a direct
// path and its descendant rewrite.
func directAndDescendant(datasetID, name, direct, descendant string) Benchmark {
	return define(datasetID, name, func(b *bench.Benchset) *bench.Benchset {
		primary := string(engine.Primary)
		return b.
			AddWithID(engine.Primary, direct, primary+"_direct").
			AddWithID(engine.Primary, descendant, primary+"_descendant").
			AddWithID(engine.KindAjson, direct, "ajson_direct").
			AddWithID(engine.KindAjson, descendant, "ajson_descendant")
	})
}
