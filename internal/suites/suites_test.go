package suites

import (
	"bytes"
	"context"
	"crypto/sha256"
	"io"
	"testing"

	"github.com/jpbench/jpbench/internal/checksum"
	"github.com/jpbench/jpbench/internal/dataset"
	"github.com/jpbench/jpbench/internal/storage"
)

// fixtureResolver serves docs[id] for every dataset id in docs.
func fixtureResolver(t *testing.T, docs map[string]string) *dataset.Resolver {
	t.Helper()
	registry := dataset.NewRegistry()
	for id, doc := range docs {
		registry.Register(id, dataset.Descriptor{
			Name:     id,
			Path:     id + "/" + id + ".json",
			Source:   dataset.JSONSource("https://fixtures.test/" + id + ".json"),
			Checksum: checksum.Digest(sha256.Sum256([]byte(doc))),
		})
	}
	fetcher := storage.FetcherFunc(func(ctx context.Context, rawURL string) (*storage.Object, error) {
		for id, doc := range docs {
			if rawURL == "https://fixtures.test/"+id+".json" {
				return &storage.Object{Body: io.NopCloser(bytes.NewReader([]byte(doc))), Size: int64(len(doc))}, nil
			}
		}
		return nil, storage.ErrObjectNotFound
	})
	return dataset.NewResolver(t.TempDir(), fetcher, registry)
}

func TestAll_Declarations(t *testing.T) {
	registry := dataset.DefaultRegistry()
	for _, suite := range All() {
		if len(suite.Benchmarks) == 0 {
			t.Errorf("suite %s is empty", suite.Name)
		}
		seen := make(map[string]bool)
		for _, b := range suite.Benchmarks {
			if seen[b.ID()] {
				t.Errorf("suite %s: duplicate benchmark %s", suite.Name, b.ID())
			}
			seen[b.ID()] = true
			if _, err := registry.Lookup(b.Dataset); err != nil {
				t.Errorf("suite %s: %s uses unknown dataset: %v", suite.Name, b.ID(), err)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		s, err := Lookup(name)
		if err != nil || s.Name != name {
			t.Errorf("Lookup(%q) = %v, %v", name, s.Name, err)
		}
	}
	if _, err := Lookup("nope"); err == nil {
		t.Error("expected error for unknown suite")
	}
}

func TestSuite_Datasets(t *testing.T) {
	got := Crossref().Datasets()
	want := []string{dataset.Crossref0, dataset.Crossref1, dataset.Crossref2, dataset.Crossref4}
	if len(got) != len(want) {
		t.Fatalf("Datasets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Datasets() = %v, want %v", got, want)
		}
	}
}

// Every declared query must compile on its engine.
func TestAll_Build(t *testing.T) {
	docs := make(map[string]string)
	for _, id := range dataset.DefaultRegistry().IDs() {
		docs[id] = "{}"
	}
	resolver := fixtureResolver(t, docs)
	ctx := context.Background()

	for _, suite := range All() {
		for _, b := range suite.Benchmarks {
			cs, err := b.Build(ctx, resolver)
			if err != nil {
				t.Errorf("%s/%s: %v", suite.Name, b.ID(), err)
				continue
			}
			if cs.ID != b.ID() {
				t.Errorf("benchset id = %s, want %s", cs.ID, b.ID())
			}
			cs.Close()
		}
	}
}

const (
	bestbuyFixture = `{"products":[
		{"categoryPath":[{"id":"a"},{"id":"b"}],"videoChapters":[{"chapter":"intro"}]},
		{"categoryPath":[{"id":"c"}],"videoChapters":[{"chapter":"setup"},{"chapter":"demo"}]}]}`
	twitterFixture = `[{"text":"one","entities":{"urls":[{"url":"u1"}]}},{"text":"two","entities":{"urls":[{"url":"u2"},{"url":"u3"}]}}]`
	walmartFixture = `{"items":[{"name":"kettle","bestMarketplacePrice":{"price":10}},{"name":"toaster","bestMarketplacePrice":{"price":20}}]}`
)

// Engines in a parity benchmark must agree on the number of matches.
func TestParity_EnginesAgree(t *testing.T) {
	resolver := fixtureResolver(t, map[string]string{
		dataset.PisonBestbuy: bestbuyFixture,
		dataset.PisonTwitter: twitterFixture,
		dataset.PisonWalmart: walmartFixture,
	})
	want := map[string]uint64{
		"BB1_products_category": 3,
		"BB2_products_video":    3,
		"TT1_entities_urls":     3,
		"TT2_text":              2,
		"WM1_items_price":       2,
		"WM2_items_name":        2,
	}

	for _, b := range Parity().Benchmarks {
		n, ok := want[b.Name]
		if !ok {
			continue
		}
		t.Run(b.Name, func(t *testing.T) {
			cs, err := b.Build(context.Background(), resolver)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			defer cs.Close()

			for _, target := range cs.Targets {
				got, err := target.Run()
				if err != nil {
					t.Errorf("%s: %v", target.ID(), err)
					continue
				}
				if got != n {
					t.Errorf("%s (%s) matched %d, want %d", target.ID(), target.Query(), got, n)
				}
			}
		})
	}
}

func TestRewrite_DescendantMatchesDirect(t *testing.T) {
	resolver := fixtureResolver(t, map[string]string{dataset.PisonBestbuy: bestbuyFixture})

	for _, b := range Rewrite().Benchmarks {
		if b.Dataset != dataset.PisonBestbuy {
			continue
		}
		cs, err := b.Build(context.Background(), resolver)
		if err != nil {
			t.Fatalf("%s: %v", b.ID(), err)
		}
		counts := make(map[string]uint64)
		for _, target := range cs.Targets {
			n, err := target.Run()
			if err != nil {
				t.Fatalf("%s/%s: %v", b.ID(), target.ID(), err)
			}
			counts[target.ID()] = n
		}
		cs.Close()
		if counts["ojg_descendant"] != counts["ojg_direct"] || counts["ajson_descendant"] != counts["ajson_direct"] {
			t.Errorf("%s: %v", b.ID(), counts)
		}
	}
}
