package dataset

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// PrefetchResult holds the outcome of a Prefetch call.
type PrefetchResult struct {
	Files     map[string]*File
	Errors    map[string]error
	CacheHits int
	Downloads int
}

// Failed reports whether any dataset could not be resolved.
func (p *PrefetchResult) Failed() bool {
	return len(p.Errors) > 0
}

// Prefetch resolves the given datasets with at most concurrency downloads in
// flight. Datasets extracted from the same archive are resolved one after
// another in a single worker. Per-dataset failures are collected in the result.
func (r *Resolver) Prefetch(ctx context.Context, descriptors []Descriptor, concurrency int) *PrefetchResult {
	if concurrency < 1 {
		concurrency = 1
	}
	result := &PrefetchResult{
		Files:  make(map[string]*File),
		Errors: make(map[string]error),
	}

	var groups [][]Descriptor
	byArchive := make(map[string]int)
	for _, d := range descriptors {
		if d.Source.Kind == SourceTarGz {
			if i, ok := byArchive[d.Source.Archive.URL]; ok {
				groups[i] = append(groups[i], d)
				continue
			}
			byArchive[d.Source.Archive.URL] = len(groups)
		}
		groups = append(groups, []Descriptor{d})
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, group := range groups {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			for _, d := range group {
				result.Errors[d.Name] = fmt.Errorf("prefetch of %s cancelled: %w", d.Name, err)
			}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(group []Descriptor) {
			defer sem.Release(1)
			defer wg.Done()

			for _, d := range group {
				file, cached, err := r.resolve(ctx, d)

				mu.Lock()
				switch {
				case err != nil:
					result.Errors[d.Name] = err
				case cached:
					result.Files[d.Name] = file
					result.CacheHits++
				default:
					result.Files[d.Name] = file
					result.Downloads++
				}
				mu.Unlock()
			}
		}(group)
	}

	wg.Wait()
	return result
}
