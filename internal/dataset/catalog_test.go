package dataset

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalog(t *testing.T) {
	reg := DefaultRegistry()
	if reg.Len() != 13 {
		t.Errorf("expected 13 datasets, got %d", reg.Len())
	}

	for _, id := range reg.IDs() {
		d, err := reg.Lookup(id)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", id, err)
		}
		if d.Name != id {
			t.Errorf("dataset %q registered under %q", d.Name, id)
		}
		if d.Checksum.IsZero() {
			t.Errorf("%s: zero checksum", id)
		}
		if filepath.Ext(d.Path) != ".json" {
			t.Errorf("%s: path %q is not a JSON file", id, d.Path)
		}
		if !strings.HasPrefix(d.Source.URL(), "https://") {
			t.Errorf("%s: unexpected source URL %q", id, d.Source.URL())
		}
		if d.Source.IsArchive() && d.Source.Archive.Checksum.IsZero() {
			t.Errorf("%s: archive without checksum", id)
		}
	}
}

func TestArchivePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pison/wiki_large_record.json", "pison/wiki_large_record.gz"},
		{"crossref/crossref0.json", "crossref/crossref0.gz"},
		{"noext", "noext.gz"},
	}
	for _, tt := range tests {
		if got := archivePath(tt.in); got != tt.want {
			t.Errorf("archivePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1500, "1.5 kB"},
		{2_500_000, "2.5 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
