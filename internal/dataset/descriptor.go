// Package dataset describes the benchmark corpus and produces verified local
// copies of it. A Descriptor's expected checksum is the authority: files in
// the local cache are disposable and rebuilt from the source on any mismatch.
package dataset

import (
	"path/filepath"
	"strings"

	"github.com/jpbench/jpbench/internal/checksum"
)

// SourceKind tells the resolver how to turn downloaded bytes into JSON.
type SourceKind int

const (
	// SourceJSON is a plain JSON document downloaded as-is.
	SourceJSON SourceKind = iota
	// SourceGzip is a gzip-compressed single JSON document.
	SourceGzip
	// SourceTarGz is a gzip-compressed tar archive unpacked in full.
	SourceTarGz
)

// String returns the source kind name used in logs.
func (k SourceKind) String() string {
	switch k {
	case SourceJSON:
		return "json"
	case SourceGzip:
		return "gzip"
	case SourceTarGz:
		return "tar.gz"
	default:
		return "unknown"
	}
}

// Archive is a compressed download with its own expected checksum.
type Archive struct {
	URL      string
	Checksum checksum.Digest
}

// Source is where a dataset comes from.
type Source struct {
	Kind SourceKind
	// JSONURL is set for SourceJSON.
	JSONURL string
	// Archive is set for SourceGzip and SourceTarGz.
	Archive Archive
	// ExtractDir is the directory, relative to the data root, that a tar
	// archive is unpacked into.
	ExtractDir string
}

// JSONSource returns a source for a plain JSON document.
func JSONSource(url string) Source {
	return Source{Kind: SourceJSON, JSONURL: url}
}

// GzipSource returns a source for a gzip-compressed JSON document.
func GzipSource(archive Archive) Source {
	return Source{Kind: SourceGzip, Archive: archive}
}

// TarGzSource returns a source for a tar.gz archive unpacked into extractDir.
func TarGzSource(archive Archive, extractDir string) Source {
	return Source{Kind: SourceTarGz, Archive: archive, ExtractDir: extractDir}
}

// URL returns the remote location that is actually downloaded.
func (s Source) URL() string {
	if s.Kind == SourceJSON {
		return s.JSONURL
	}
	return s.Archive.URL
}

// IsArchive reports whether the source needs decoding after download.
func (s Source) IsArchive() bool {
	return s.Kind == SourceGzip || s.Kind == SourceTarGz
}

// Descriptor is the static declaration of one dataset.
type Descriptor struct {
	// Name identifies the dataset in diagnostics and benchset ids.
	Name string
	// Path is the final decoded JSON file, relative to the data root.
	Path string
	// Source is where the file comes from.
	Source Source
	// Checksum is the expected sha256 of the final JSON file.
	Checksum checksum.Digest
}

// archivePath returns the sibling path used for the transient archive
// download: the JSON path with its extension replaced by ".gz".
func archivePath(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".gz"
}

// File is a resolved, checksum-verified local copy of a dataset.
type File struct {
	// Path is the local filesystem path of the JSON document.
	Path string
	// Size is the byte length of the document.
	Size int64
	// Checksum is the digest of the bytes actually read.
	Checksum checksum.Digest
}
