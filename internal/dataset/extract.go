package dataset

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// decodeReader marks every failure of the underlying reader as a decoding
// failure, so corrupt archives are distinguishable from disk errors.
type decodeReader struct {
	r io.Reader
}

func (d decodeReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && err != io.EOF {
		var be *bencherrors.BenchError
		if !errors.As(err, &be) {
			err = bencherrors.NewIOError(bencherrors.CodeDecodeFailed, "decompressing archive", err)
		}
	}
	return n, err
}

// openGzip opens a gzip stream over r.
func openGzip(r io.Reader) (*gzip.Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, bencherrors.NewIOError(bencherrors.CodeDecodeFailed, "reading gzip header", err)
	}
	return gz, nil
}

// unpackTarGz extracts every regular file and directory of a gzip-compressed
// tar stream into dest. Entries that would land outside dest are rejected.
func unpackTarGz(r io.Reader, dest string) error {
	gz, err := openGzip(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return bencherrors.NewFilesystemError(bencherrors.CodeCreateFailed, "creating extract directory", err)
	}

	tr := tar.NewReader(decodeReader{r: gz})
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return extractError("reading tar entry", err)
		}

		target, err := entryPath(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return bencherrors.NewFilesystemError(bencherrors.CodeCreateFailed,
					fmt.Sprintf("creating directory %s", target), err)
			}
		case tar.TypeReg:
			if err := writeEntry(tr, target); err != nil {
				return err
			}
		default:
			log.Printf("Skipping tar entry %s of type %c", hdr.Name, hdr.Typeflag)
		}
	}
}

// entryPath joins name onto dest and checks the result stays inside dest.
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", bencherrors.NewIOError(bencherrors.CodeExtractFailed,
			fmt.Sprintf("tar entry %q escapes extract directory", name), nil)
	}
	return target, nil
}

func writeEntry(r io.Reader, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return bencherrors.NewFilesystemError(bencherrors.CodeCreateFailed,
			fmt.Sprintf("creating directory for %s", target), err)
	}
	f, err := os.Create(target)
	if err != nil {
		return bencherrors.NewFilesystemError(bencherrors.CodeCreateFailed,
			fmt.Sprintf("creating %s", target), err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return extractError(fmt.Sprintf("writing %s", target), err)
	}
	if err := f.Close(); err != nil {
		return bencherrors.NewIOError(bencherrors.CodeWriteFailed, fmt.Sprintf("closing %s", target), err)
	}
	return nil
}

func extractError(msg string, err error) error {
	var be *bencherrors.BenchError
	if errors.As(err, &be) {
		return err
	}
	return bencherrors.NewIOError(bencherrors.CodeExtractFailed, msg, err)
}
