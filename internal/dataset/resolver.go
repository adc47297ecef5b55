package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jpbench/jpbench/internal/checksum"
	bencherrors "github.com/jpbench/jpbench/internal/errors"
	"github.com/jpbench/jpbench/internal/storage"
)

// Resolver turns descriptors into verified local files, downloading and
// decoding them when the cached copy is absent or corrupt.
type Resolver struct {
	// Root is the data directory every descriptor path is relative to.
	Root string
	// Fetcher retrieves remote sources.
	Fetcher storage.Fetcher
	// Registry maps ids for ResolveID.
	Registry *Registry
}

// NewResolver creates a resolver rooted at root.
func NewResolver(root string, fetcher storage.Fetcher, registry *Registry) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Resolver{
		Root:     root,
		Fetcher:  fetcher,
		Registry: registry,
	}
}

// Path returns the local path of the descriptor's JSON file.
func (r *Resolver) Path(d Descriptor) string {
	return filepath.Join(r.Root, filepath.FromSlash(d.Path))
}

// ResolveID resolves the dataset registered under id.
func (r *Resolver) ResolveID(ctx context.Context, id string) (*File, error) {
	d, err := r.Registry.Lookup(id)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, d)
}

// Resolve returns a local copy of the dataset whose checksum matches the
// descriptor. A matching cached file is returned without touching the
// network. Anything else is downloaded again and verified once; there are
// no retries.
func (r *Resolver) Resolve(ctx context.Context, d Descriptor) (*File, error) {
	file, _, err := r.resolve(ctx, d)
	return file, err
}

// resolve is Resolve reporting whether the cached copy was used. The cached
// file is hashed at most once.
func (r *Resolver) resolve(ctx context.Context, d Descriptor) (*File, bool, error) {
	local, err := r.loadLocal(d)
	if err != nil {
		return nil, false, err
	}
	switch {
	case local == nil:
		log.Printf("File for dataset %s does not exist.", d.Name)
	case local.Checksum == d.Checksum:
		return local, true, nil
	default:
		log.Printf("File for dataset %s does not match expected checksum (%s expected, %s actual). Redownloading.",
			d.Name, d.Checksum, local.Checksum)
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	file, err := r.download(ctx, d)
	if err != nil {
		return nil, false, err
	}
	if file.Checksum != d.Checksum {
		return nil, false, jsonMismatch(d.Source.URL(), d.Checksum, file.Checksum)
	}
	return file, false, nil
}

// Verify checks the cached copy without downloading anything.
func (r *Resolver) Verify(ctx context.Context, d Descriptor) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	local, err := r.loadLocal(d)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return nil, bencherrors.New(bencherrors.ErrCategoryDataset, bencherrors.CodeNotCached,
			fmt.Sprintf("dataset %s is not cached at %s", d.Name, r.Path(d)))
	}
	if local.Checksum != d.Checksum {
		return nil, bencherrors.New(bencherrors.ErrCategoryChecksum, bencherrors.CodeJSONMismatch,
			fmt.Sprintf("File for dataset %s does not match expected checksum (%s expected, %s actual).",
				d.Name, d.Checksum, local.Checksum)).
			WithDetails(map[string]interface{}{
				"path":     local.Path,
				"expected": d.Checksum.String(),
				"actual":   local.Checksum.String(),
			})
	}
	return local, nil
}

// Remove deletes the cached JSON file and any leftover archive. Removing a
// dataset that is not cached is not an error.
func (r *Resolver) Remove(d Descriptor) error {
	for _, p := range []string{r.Path(d), archivePath(r.Path(d))} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return bencherrors.NewFilesystemError(bencherrors.CodeInvalidPath,
				fmt.Sprintf("removing %s", p), err)
		}
	}
	return nil
}

// loadLocal digests the cached file. It returns nil when the file does not
// exist.
func (r *Resolver) loadLocal(d Descriptor) (*File, error) {
	path := r.Path(d)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, bencherrors.NewFilesystemError(bencherrors.CodeOpenFailed,
			fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	var total int64 = -1
	if info, err := f.Stat(); err == nil {
		total = info.Size()
	}

	sum, size, err := checksum.Sum(newProgressReader(f, "Checking dataset integrity", d.Name, total), nil)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Size: size, Checksum: sum}, nil
}

func (r *Resolver) download(ctx context.Context, d Descriptor) (*File, error) {
	if err := r.createDirectories(d); err != nil {
		return nil, err
	}

	switch d.Source.Kind {
	case SourceJSON:
		return r.downloadJSON(ctx, d)
	case SourceGzip:
		return r.downloadGzip(ctx, d)
	case SourceTarGz:
		return r.downloadTarGz(ctx, d)
	default:
		return nil, bencherrors.NewInternalError(
			fmt.Sprintf("dataset %s has unknown source kind %d", d.Name, d.Source.Kind), nil)
	}
}

func (r *Resolver) createDirectories(d Descriptor) error {
	dir := filepath.Dir(r.Path(d))
	if d.Path == "" || filepath.Base(d.Path) == "." {
		return bencherrors.NewFilesystemError(bencherrors.CodeInvalidPath,
			fmt.Sprintf("invalid dataset path: %q is not a valid path", d.Path), nil)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return bencherrors.NewFilesystemError(bencherrors.CodeCreateFailed,
			fmt.Sprintf("creating directory %s", dir), err)
	}
	return nil
}

func (r *Resolver) downloadJSON(ctx context.Context, d Descriptor) (*File, error) {
	path := r.Path(d)
	sum, size, err := r.fetchTo(ctx, d.Name, d.Source.JSONURL, path)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Size: size, Checksum: sum}, nil
}

func (r *Resolver) downloadGzip(ctx context.Context, d Descriptor) (*File, error) {
	path := r.Path(d)
	gzPath := archivePath(path)
	archiveSize, err := r.fetchArchive(ctx, d, gzPath)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(gzPath)
	if err != nil {
		return nil, bencherrors.NewFilesystemError(bencherrors.CodeOpenFailed,
			fmt.Sprintf("opening %s", gzPath), err)
	}
	defer in.Close()

	gz, err := openGzip(newProgressReader(in, "Extracting", d.Name, archiveSize))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	out, err := os.Create(path)
	if err != nil {
		return nil, bencherrors.NewFilesystemError(bencherrors.CodeCreateFailed,
			fmt.Sprintf("creating %s", path), err)
	}
	sum, size, err := checksum.Sum(decodeReader{r: gz}, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = bencherrors.NewIOError(bencherrors.CodeWriteFailed, fmt.Sprintf("closing %s", path), cerr)
	}
	if err != nil {
		return nil, err
	}

	removeArchive(gzPath)
	return &File{Path: path, Size: size, Checksum: sum}, nil
}

func (r *Resolver) downloadTarGz(ctx context.Context, d Descriptor) (*File, error) {
	path := r.Path(d)
	gzPath := archivePath(path)
	archiveSize, err := r.fetchArchive(ctx, d, gzPath)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(gzPath)
	if err != nil {
		return nil, bencherrors.NewFilesystemError(bencherrors.CodeOpenFailed,
			fmt.Sprintf("opening %s", gzPath), err)
	}
	dest := filepath.Join(r.Root, filepath.FromSlash(d.Source.ExtractDir))
	err = unpackTarGz(newProgressReader(in, "Extracting", d.Name, archiveSize), dest)
	in.Close()
	if err != nil {
		return nil, err
	}
	removeArchive(gzPath)

	local, err := r.loadLocal(d)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return nil, bencherrors.NewFilesystemError(bencherrors.CodeOpenFailed,
			fmt.Sprintf("archive %s did not contain %s", d.Source.Archive.URL, d.Path), os.ErrNotExist)
	}
	return local, nil
}

// fetchArchive downloads the source archive to gzPath and checks it against
// the archive checksum. A mismatching archive is deleted and never decoded.
func (r *Resolver) fetchArchive(ctx context.Context, d Descriptor, gzPath string) (int64, error) {
	archive := d.Source.Archive
	sum, size, err := r.fetchTo(ctx, d.Name, archive.URL, gzPath)
	if err != nil {
		return 0, err
	}
	if sum != archive.Checksum {
		removeArchive(gzPath)
		return 0, archiveMismatch(archive.URL, archive.Checksum, sum)
	}
	return size, nil
}

// fetchTo streams url into path, hashing on the way.
func (r *Resolver) fetchTo(ctx context.Context, name, url, path string) (checksum.Digest, int64, error) {
	log.Printf("Downloading %s", url)
	obj, err := r.Fetcher.Fetch(ctx, url)
	if err != nil {
		return checksum.Digest{}, 0, err
	}
	defer obj.Body.Close()

	out, err := os.Create(path)
	if err != nil {
		return checksum.Digest{}, 0, bencherrors.NewFilesystemError(bencherrors.CodeCreateFailed,
			fmt.Sprintf("creating %s", path), err)
	}

	body := networkReader{r: obj.Body, url: url}
	sum, size, err := checksum.Sum(newProgressReader(body, "Downloading", name, obj.Size), out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = bencherrors.NewIOError(bencherrors.CodeWriteFailed, fmt.Sprintf("closing %s", path), cerr)
	}
	if err != nil {
		return checksum.Digest{}, 0, err
	}
	return sum, size, nil
}

// networkReader classifies failures while reading a response body as
// download failures.
type networkReader struct {
	r   io.Reader
	url string
}

func (n networkReader) Read(p []byte) (int, error) {
	c, err := n.r.Read(p)
	if err != nil && err != io.EOF {
		var be *bencherrors.BenchError
		if !errors.As(err, &be) {
			err = bencherrors.NewNetworkError(bencherrors.CodeDownloadFailed,
				fmt.Sprintf("error downloading a dataset from %s", n.url), err)
		}
	}
	return c, err
}

func removeArchive(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to remove archive %s: %v", path, err)
	}
}

func jsonMismatch(url string, expected, actual checksum.Digest) error {
	return bencherrors.New(bencherrors.ErrCategoryChecksum, bencherrors.CodeJSONMismatch,
		fmt.Sprintf("Checksum validation failed. The URL source might be corrupted. "+
			"Expected JSON from %s to have SHA2 checksum of %s, but it has %s.", url, expected, actual)).
		WithDetails(map[string]interface{}{
			"url":      url,
			"expected": expected.String(),
			"actual":   actual.String(),
		})
}

func archiveMismatch(url string, expected, actual checksum.Digest) error {
	return bencherrors.New(bencherrors.ErrCategoryChecksum, bencherrors.CodeArchiveMismatch,
		fmt.Sprintf("Checksum validation failed. The URL source might be corrupted. "+
			"Expected archive from %s to have SHA2 checksum of %s, but it has %s.", url, expected, actual)).
		WithDetails(map[string]interface{}{
			"url":      url,
			"expected": expected.String(),
			"actual":   actual.String(),
		})
}
