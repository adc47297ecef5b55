package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

const fixture = `{
  "products": [
    {"id": 1, "categoryPath": [{"id": "a"}, {"id": "b"}], "videoChapters": [{"chapter": 1}]},
    {"id": 2, "categoryPath": [{"id": "c"}]},
    {"id": 3, "categoryPath": [{"id": "d"}, {"id": "e"}, {"id": "f"}]}
  ],
  "search_metadata": {"count": 15}
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixture), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

type engineCase struct {
	kind  Kind
	query string
	want  uint64
}

func jsonPathCases() []engineCase {
	var cases []engineCase
	for _, k := range JSONPathEngines {
		cases = append(cases,
			engineCase{k, "$.products[*].categoryPath[*].id", 6},
			engineCase{k, "$.products[*].id", 3},
			engineCase{k, "$.search_metadata.count", 1},
		)
	}
	return cases
}

func nativeCases() []engineCase {
	return []engineCase{
		{KindGjson, "products.#.categoryPath.#.id", 6},
		{KindGjson, "products.#.id", 3},
		{KindGjson, "search_metadata.count", 1},
		{KindGjson, "search_metadata.missing", 0},
		{KindGojq, ".products[].categoryPath[].id", 6},
		{KindGojq, ".products[].id", 3},
		{KindGojq, ".search_metadata.count", 1},
		{KindGabs, "products.*.id", 3},
		{KindGabs, "search_metadata.count", 1},
		{KindGabs, "search_metadata.missing", 0},
		{KindFastjson, "products.*.categoryPath.*.id", 6},
		{KindFastjson, "products.*.videoChapters", 1},
		{KindFastjson, "search_metadata.*", 1},
		{KindFastjson, "search_metadata.missing", 0},
	}
}

func TestEngines_Counts(t *testing.T) {
	path := writeFixture(t)
	cases := append(jsonPathCases(), nativeCases()...)

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.kind, tc.query), func(t *testing.T) {
			target, err := PrepareKind(tc.kind, "", path, tc.query)
			if err != nil {
				t.Fatalf("PrepareKind failed: %v", err)
			}
			defer target.Close()

			got, err := target.Run()
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("count = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEngines_RunIsIdempotent(t *testing.T) {
	path := writeFixture(t)
	cases := append(jsonPathCases(), nativeCases()...)

	for _, tc := range cases {
		target, err := PrepareKind(tc.kind, "", path, tc.query)
		if err != nil {
			t.Fatalf("%s %q: PrepareKind failed: %v", tc.kind, tc.query, err)
		}
		first, err := target.Run()
		if err != nil {
			t.Fatalf("%s %q: Run failed: %v", tc.kind, tc.query, err)
		}
		for _, k := range []int{1, 2, 100} {
			for i := 0; i < k; i++ {
				got, err := target.Run()
				if err != nil {
					t.Fatalf("%s %q: run %d of %d failed: %v", tc.kind, tc.query, i, k, err)
				}
				if got != first {
					t.Fatalf("%s %q: run %d of %d returned %d, first returned %d", tc.kind, tc.query, i, k, got, first)
				}
			}
		}
		target.Close()
	}
}

func TestOjg_PartialMatches(t *testing.T) {
	path := writeFixture(t)
	for _, kind := range []Kind{KindOjg, KindOjgBytes, KindAjson} {
		target, err := PrepareKind(kind, "", path, "$.products[*].videoChapters")
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		got, err := target.Run()
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if got != 1 {
			t.Errorf("%s: count = %d, want 1", kind, got)
		}
	}
}

func TestPrepareKind_TargetIdentity(t *testing.T) {
	path := writeFixture(t)

	target, err := PrepareKind(KindOjg, "", path, "$.products[*].id")
	if err != nil {
		t.Fatal(err)
	}
	if target.ID() != "ojg" || target.Engine() != KindOjg || target.Query() != "$.products[*].id" {
		t.Errorf("unexpected identity: %s %s %s", target.ID(), target.Engine(), target.Query())
	}

	named, err := PrepareKind(KindAjson, "ajson_direct", path, "$.products[*].id")
	if err != nil {
		t.Fatal(err)
	}
	if named.ID() != "ajson_direct" || named.Engine() != KindAjson {
		t.Errorf("unexpected identity: %s %s", named.ID(), named.Engine())
	}
}

func TestPrepareKind_CompileErrors(t *testing.T) {
	path := writeFixture(t)
	tests := []struct {
		kind  Kind
		query string
	}{
		{KindOjg, "$.products[?("},
		{KindGojq, ".products[]["},
		{KindGabs, "products..id"},
		{KindFastjson, "products..id"},
		{KindGjson, ""},
	}
	for _, tt := range tests {
		_, err := PrepareKind(tt.kind, "", path, tt.query)
		if bencherrors.GetCode(err) != bencherrors.CodeCompileFailed {
			t.Errorf("%s %q: expected compile failure, got %v", tt.kind, tt.query, err)
			continue
		}
		var be *bencherrors.BenchError
		if errors.As(err, &be) && be.Details["engine"] != string(tt.kind) {
			t.Errorf("%s: details do not name the engine: %v", tt.kind, be.Details)
		}
	}
}

func TestPrepareKind_LoadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	for _, kind := range AllKinds {
		query := "$.a"
		if !kind.IsJSONPath() {
			query = map[Kind]string{KindGjson: "a", KindGojq: ".a", KindGabs: "a", KindFastjson: "a"}[kind]
		}
		_, err := PrepareKind(kind, "", missing, query)
		if bencherrors.GetCode(err) != bencherrors.CodeLoadFailed {
			t.Errorf("%s: expected load failure, got %v", kind, err)
		}
	}

	invalid := filepath.Join(t.TempDir(), "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"a":`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := PrepareKind(KindGjson, "", invalid, "a"); bencherrors.GetCode(err) != bencherrors.CodeLoadFailed {
		t.Errorf("gjson accepted invalid JSON: %v", err)
	}
}

func TestPreparedQuery_LoadPerRun(t *testing.T) {
	path := writeFixture(t)

	preloaded, err := PrepareKind(KindOjg, "", path, "$.products[*].id")
	if err != nil {
		t.Fatal(err)
	}
	perRun, err := PrepareKind(KindOjg, "", path, "$.products[*].id", WithLoadPerRun(), WithCompilePerRun())
	if err != nil {
		t.Fatal(err)
	}
	if n, err := perRun.Run(); err != nil || n != 3 {
		t.Fatalf("per-run target: n=%d err=%v", n, err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if n, err := preloaded.Run(); err != nil || n != 3 {
		t.Errorf("preloaded target should not touch the file: n=%d err=%v", n, err)
	}
	if _, err := perRun.Run(); bencherrors.GetCode(err) != bencherrors.CodeLoadFailed {
		t.Errorf("per-run target should reload the file, got %v", err)
	}
}

func TestGojq_ErrorValueFailsRun(t *testing.T) {
	path := writeFixture(t)
	target, err := PrepareKind(KindGojq, "", path, `error("boom")`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := target.Run(); bencherrors.GetCode(err) != bencherrors.CodeRunFailed {
		t.Errorf("expected run failure, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds {
		got, err := ParseKind(" " + string(k) + " ")
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("jsurfer"); bencherrors.GetCode(err) != bencherrors.CodeUnknownEngine {
		t.Errorf("expected unknown engine, got %v", err)
	}
	if _, err := PrepareKind(Kind("jsurfer"), "", "x", "$"); bencherrors.GetCode(err) != bencherrors.CodeUnknownEngine {
		t.Errorf("expected unknown engine, got %v", err)
	}
}

func TestRosters(t *testing.T) {
	if !Primary.IsJSONPath() {
		t.Errorf("primary engine must accept JSONPath")
	}
	for _, k := range []Kind{KindGjson, KindGojq, KindGabs, KindFastjson} {
		if k.IsJSONPath() {
			t.Errorf("%s should not be in the JSONPath roster", k)
		}
	}
}

func TestIsPluralPath(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"$.search_metadata.count", false},
		{"$.items[0].name", false},
		{"$['a']", false},
		{"$.items[*].name", true},
		{"$..name", true},
		{"$.items[0:2]", true},
		{"$.items[0,1]", true},
		{"$.items[?(@.price > 1)]", true},
	}
	for _, tt := range tests {
		if got := isPluralPath(tt.query); got != tt.want {
			t.Errorf("isPluralPath(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
