package suites

import (
	"github.com/jpbench/jpbench/internal/bench"
	"github.com/jpbench/jpbench/internal/dataset"
	"github.com/jpbench/jpbench/internal/engine"
)

// Rewrite measures descendant queries against the direct paths they can be
// rewritten to, per engine.
func Rewrite() Suite {
	pair := func(datasetID, name, descendant, direct string) Benchmark {
		return define(datasetID, name, func(b *bench.Benchset) *bench.Benchset {
			for _, kind := range []engine.Kind{engine.Primary, engine.KindAjson} {
				b.AddWithID(kind, descendant, string(kind)+"_descendant").
					AddWithID(kind, direct, string(kind)+"_direct")
			}
			return b
		})
	}

	return Suite{
		Name: "rewrite",
		Benchmarks: []Benchmark{
			pair(dataset.PisonBestbuy, "BB1'_products_category", "$..categoryPath..id", "$.products[*].categoryPath[*].id"),
			pair(dataset.PisonBestbuy, "BB2'_products_video", "$..videoChapters..chapter", "$.products[*].videoChapters[*].chapter"),
			pair(dataset.PisonBestbuy, "BB3'_products_video_only", "$..videoChapters", "$.products[*].videoChapters"),
			pair(dataset.PisonGoogleMap, "GMD2'_travel_modes", "$..available_travel_modes", "$[*].available_travel_modes"),
			pair(dataset.PisonWalmart, "WM1'_items_price", "$..bestMarketplacePrice.price", "$.items[*].bestMarketplacePrice.price"),
			pair(dataset.PisonWalmart, "WM2'_items_name", "$..name", "$.items[*].name"),
			pair(dataset.PisonWiki, "WP1'_claims_p150", "$..P150..mainsnak.property", "$[*].claims.P150[*].mainsnak.property"),
		},
	}
}
