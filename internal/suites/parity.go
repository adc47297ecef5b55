package suites

import (
	"github.com/jpbench/jpbench/internal/dataset"
)

// Parity runs the Pison query set on every engine. JSONPath engines share
// one query; native engines get a translation with the same matches.
func Parity() Suite {
	return Suite{
		Name: "parity",
		Benchmarks: []Benchmark{
			define(dataset.PisonTwitter, "TT1_entities_urls", allWith("$[*].entities.urls[*].url", native{
				gjson:    "#.entities.urls.#.url",
				gojq:     ".[].entities.urls[]?.url | values",
				fastjson: "*.entities.urls.*.url",
			})),
			define(dataset.PisonTwitter, "TT2_text", allWith("$[*].text", native{
				gjson:    "#.text",
				gojq:     ".[].text | values",
				gabs:     "*.text",
				fastjson: "*.text",
			})),
			define(dataset.PisonBestbuy, "BB1_products_category", allWith("$.products[*].categoryPath[*].id", native{
				gjson:    "products.#.categoryPath.#.id",
				gojq:     ".products[].categoryPath[]?.id | values",
				gabs:     "products.*.categoryPath.*.id",
				fastjson: "products.*.categoryPath.*.id",
			})),
			define(dataset.PisonBestbuy, "BB2_products_video", allWith("$.products[*].videoChapters[*].chapter", native{
				gjson:    "products.#.videoChapters.#.chapter",
				gojq:     ".products[].videoChapters[]?.chapter | values",
				fastjson: "products.*.videoChapters.*.chapter",
			})),
			define(dataset.PisonBestbuy, "BB3_products_video_only", allWith("$.products[*].videoChapters", native{
				gjson:    "products.#.videoChapters",
				gojq:     ".products[].videoChapters | values",
				gabs:     "products.*.videoChapters",
				fastjson: "products.*.videoChapters",
			})),
			define(dataset.PisonGoogleMap, "GMD1_routes", allWith("$[*].routes[*].legs[*].steps[*].distance.text", native{
				gjson:    "#.routes.#.legs.#.steps.#.distance.text",
				gojq:     ".[].routes[]?.legs[]?.steps[]?.distance.text | values",
				fastjson: "*.routes.*.legs.*.steps.*.distance.text",
			})),
			define(dataset.PisonGoogleMap, "GMD2_travel_modes", allWith("$[*].available_travel_modes", native{
				gjson:    "#.available_travel_modes",
				gojq:     ".[].available_travel_modes | values",
				gabs:     "*.available_travel_modes",
				fastjson: "*.available_travel_modes",
			})),
			define(dataset.PisonNSPL, "NSPL1_meta_columns", allWith("$.meta.view.columns[*].name", native{
				gjson:    "meta.view.columns.#.name",
				gojq:     ".meta.view.columns[].name | values",
				gabs:     "meta.view.columns.*.name",
				fastjson: "meta.view.columns.*.name",
			})),
			define(dataset.PisonNSPL, "NSPL2_data", allWith("$.data[*][*][*]", native{
				gojq:     ".data[][][]",
				fastjson: "data.*.*.*",
			})),
			define(dataset.PisonWalmart, "WM1_items_price", allWith("$.items[*].bestMarketplacePrice.price", native{
				gjson:    "items.#.bestMarketplacePrice.price",
				gojq:     ".items[].bestMarketplacePrice.price? | values",
				fastjson: "items.*.bestMarketplacePrice.price",
			})),
			define(dataset.PisonWalmart, "WM2_items_name", allWith("$.items[*].name", native{
				gjson:    "items.#.name",
				gojq:     ".items[].name | values",
				gabs:     "items.*.name",
				fastjson: "items.*.name",
			})),
			define(dataset.PisonWiki, "WP1_claims_p150", allWith("$[*].claims.P150[*].mainsnak.property", native{
				gjson:    "#.claims.P150.#.mainsnak.property",
				gojq:     ".[].claims.P150[]?.mainsnak.property | values",
				fastjson: "*.claims.P150.*.mainsnak.property",
			})),
		},
	}
}
