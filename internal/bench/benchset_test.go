package bench

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpbench/jpbench/internal/checksum"
	"github.com/jpbench/jpbench/internal/dataset"
	"github.com/jpbench/jpbench/internal/engine"
	bencherrors "github.com/jpbench/jpbench/internal/errors"
	"github.com/jpbench/jpbench/internal/storage"
)

const fixture = `{"products":[{"id":1,"tags":["a","b"]},{"id":2,"tags":["c"]}],"meta":{"count":2}}`

func fixtureFile(t *testing.T) dataset.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixture), 0644); err != nil {
		t.Fatal(err)
	}
	return dataset.File{Path: path, Size: int64(len(fixture)), Checksum: sha256.Sum256([]byte(fixture))}
}

func TestBenchset_AddAll(t *testing.T) {
	cs, err := NewFromFile("fixture", "tags", fixtureFile(t)).
		AddAll("$.products[*].tags[*]").
		Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	defer cs.Close()

	if cs.ID != "fixture::tags" {
		t.Errorf("ID = %q", cs.ID)
	}
	if len(cs.Targets) != len(engine.JSONPathEngines) {
		t.Fatalf("expected %d targets, got %d", len(engine.JSONPathEngines), len(cs.Targets))
	}
	for i, target := range cs.Targets {
		if target.Engine() != engine.JSONPathEngines[i] {
			t.Errorf("target %d engine = %s, want %s", i, target.Engine(), engine.JSONPathEngines[i])
		}
		n, err := target.Run()
		if err != nil || n != 3 {
			t.Errorf("%s: n=%d err=%v", target.ID(), n, err)
		}
	}
	if cs.Throughput() != int64(len(fixture)) {
		t.Errorf("Throughput = %d", cs.Throughput())
	}
}

func TestBenchset_AddAllExceptAndNative(t *testing.T) {
	cs, err := NewFromFile("fixture", "ids", fixtureFile(t)).
		AddAllExcept("$.products[*].id", engine.KindPaessler, engine.KindOjgBytes).
		Add(engine.KindGjson, "products.#.id").
		AddWithID(engine.KindOjg, "$..id", "ojg_descendant").
		Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	defer cs.Close()

	var ids []string
	for _, target := range cs.Targets {
		ids = append(ids, target.ID())
	}
	want := []string{"ojg", "ajson", "gjson", "ojg_descendant"}
	if len(ids) != len(want) {
		t.Fatalf("targets = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("targets = %v, want %v", ids, want)
			break
		}
	}
}

func TestBenchset_StickyError(t *testing.T) {
	b := NewFromFile("fixture", "broken", fixtureFile(t)).
		Add(engine.KindOjg, "$.products[*].id").
		Add(engine.KindGojq, ".products[][").
		Add(engine.KindAjson, "$.products[*].id")

	if b.Err() == nil {
		t.Fatal("expected builder error")
	}
	cs, err := b.Finish()
	if cs != nil {
		t.Errorf("no partial benchset may be returned")
	}
	if bencherrors.GetCode(err) != bencherrors.CodeCompileFailed {
		t.Errorf("expected compile failure, got %v", err)
	}
	if len(b.targets) != 0 {
		t.Errorf("prepared targets were not released")
	}
}

func TestBenchset_NoTargets(t *testing.T) {
	if _, err := NewFromFile("fixture", "empty", fixtureFile(t)).Finish(); err == nil {
		t.Error("expected error for empty benchset")
	}
}

func TestBenchset_MeasureFileLoadTime(t *testing.T) {
	file := fixtureFile(t)
	cs, err := NewFromFile("fixture", "load", file).
		Add(engine.KindOjg, "$.products[*].id").
		MeasureFileLoadTime().
		Add(engine.KindAjson, "$.products[*].id").
		Finish()
	if err != nil {
		t.Fatal(err)
	}
	defer cs.Close()

	if err := os.Remove(file.Path); err != nil {
		t.Fatal(err)
	}
	if _, err := cs.Targets[0].Run(); err != nil {
		t.Errorf("preloaded target failed: %v", err)
	}
	if _, err := cs.Targets[1].Run(); bencherrors.GetCode(err) != bencherrors.CodeLoadFailed {
		t.Errorf("expected per-run load failure, got %v", err)
	}
}

func TestNew_ResolvesDataset(t *testing.T) {
	data := []byte(fixture)
	d := dataset.Descriptor{
		Name:     "fixture",
		Path:     "fixture/fixture.json",
		Source:   dataset.JSONSource("https://example.com/fixture.json"),
		Checksum: checksum.Digest(sha256.Sum256(data)),
	}
	fetches := 0
	fetcher := storage.FetcherFunc(func(ctx context.Context, rawURL string) (*storage.Object, error) {
		fetches++
		return &storage.Object{Body: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
	})
	resolver := dataset.NewResolver(t.TempDir(), fetcher, dataset.NewRegistry(d))

	cs, err := New(context.Background(), resolver, "fixture", "ids").
		AddAll("$.products[*].id").
		Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	defer cs.Close()

	if cs.ID != "fixture::ids" || cs.File.Size != int64(len(data)) || fetches != 1 {
		t.Errorf("unexpected benchset: id=%s size=%d fetches=%d", cs.ID, cs.File.Size, fetches)
	}
	if cs.Options != (Options{}) {
		t.Errorf("small dataset should use default options, got %+v", cs.Options)
	}

	_, err = New(context.Background(), resolver, "missing", "ids").AddAll("$").Finish()
	if !errors.Is(err, bencherrors.ErrUnknownDataset) {
		t.Errorf("expected unknown dataset, got %v", err)
	}
}

func TestMeasureWith(t *testing.T) {
	cs, err := NewFromFile("fixture", "tags", fixtureFile(t)).
		AddAll("$.products[*].tags[*]").
		Finish()
	if err != nil {
		t.Fatal(err)
	}
	defer cs.Close()

	report, err := cs.MeasureWith(context.Background(), Options{
		WarmUp:      time.Millisecond,
		Measurement: 5 * time.Millisecond,
		SampleSize:  3,
	})
	if err != nil {
		t.Fatalf("MeasureWith failed: %v", err)
	}
	if report.BenchsetID != "fixture::tags" || len(report.Measurements) != len(cs.Targets) {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, m := range report.Measurements {
		if m.Count != 3 {
			t.Errorf("%s: count = %d", m.TargetID, m.Count)
		}
		if len(m.Samples) != 3 || m.Summary.N != 3 {
			t.Errorf("%s: %d samples", m.TargetID, len(m.Samples))
		}
		if m.Summary.Mean <= 0 || m.Throughput <= 0 {
			t.Errorf("%s: empty timings %+v", m.TargetID, m.Summary)
		}
	}
}

func TestMeasureWith_Cancelled(t *testing.T) {
	cs, err := NewFromFile("fixture", "tags", fixtureFile(t)).
		Add(engine.KindOjg, "$.products[*].tags[*]").
		Finish()
	if err != nil {
		t.Fatal(err)
	}
	defer cs.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cs.MeasureWith(ctx, Options{SampleSize: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

func TestRunB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping benchmark driver in short mode")
	}
	cs, err := NewFromFile("fixture", "tags", fixtureFile(t)).
		Add(engine.KindOjg, "$.products[*].tags[*]").
		Finish()
	if err != nil {
		t.Fatal(err)
	}
	defer cs.Close()

	sink = 0
	testing.Benchmark(cs.RunB)
	if sink != 3 {
		t.Errorf("sink = %d, want 3", sink)
	}
}
