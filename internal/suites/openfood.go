package suites

import (
	"github.com/jpbench/jpbench/internal/bench"
	"github.com/jpbench/jpbench/internal/dataset"
)

// Openfood runs direct and descendant queries over the Open Food Facts dump
// on every JSONPath engine.
func Openfood() Suite {
	all := func(query string) func(*bench.Benchset) *bench.Benchset {
		return func(b *bench.Benchset) *bench.Benchset { return b.AddAll(query) }
	}

	return Suite{
		Name: "openfood",
		Benchmarks: []Benchmark{
			define(dataset.Openfood, "specific_ingredients", allWith(
				"$.products[*].specific_ingredients[*].ingredient",
				native{
					gjson:    "products.#.specific_ingredients.#.ingredient",
					gojq:     ".products[].specific_ingredients[]?.ingredient | values",
					fastjson: "products.*.specific_ingredients.*.ingredient",
				})),
			define(dataset.Openfood, "specific_ingredients_descendant",
				all("$..specific_ingredients..ingredient")),
			define(dataset.Openfood, "added_countries_tags", allWith(
				"$.products[*].added_countries_tags",
				native{
					gjson:    "products.#.added_countries_tags",
					gojq:     ".products[].added_countries_tags | values",
					gabs:     "products.*.added_countries_tags",
					fastjson: "products.*.added_countries_tags",
				})),
			define(dataset.Openfood, "added_countries_tags_descendant",
				all("$..added_countries_tags")),
			define(dataset.Openfood, "vitamins_tags", allWith(
				"$.products[*].vitamins_tags",
				native{
					gjson:    "products.#.vitamins_tags",
					gojq:     ".products[].vitamins_tags | values",
					gabs:     "products.*.vitamins_tags",
					fastjson: "products.*.vitamins_tags",
				})),
			define(dataset.Openfood, "vitamins_tags_descendant",
				all("$..vitamins_tags")),
		},
	}
}
