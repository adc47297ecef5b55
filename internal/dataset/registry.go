package dataset

import (
	"fmt"
	"sort"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// Registry maps dataset ids to descriptors. It is built once and passed to
// the Resolver; tests build their own.
type Registry struct {
	descriptors map[string]Descriptor
}

// NewRegistry creates a registry keyed by each descriptor's Name.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{descriptors: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		r.Register(d.Name, d)
	}
	return r
}

// Register adds or replaces the descriptor for id.
func (r *Registry) Register(id string, d Descriptor) {
	r.descriptors[id] = d
}

// Lookup returns the descriptor registered for id.
func (r *Registry) Lookup(id string) (Descriptor, error) {
	d, ok := r.descriptors[id]
	if !ok {
		return Descriptor{}, bencherrors.New(bencherrors.ErrCategoryDataset, bencherrors.CodeUnknownDataset,
			fmt.Sprintf("unknown dataset %q", id))
	}
	return d, nil
}

// IDs returns all registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.descriptors))
	for id := range r.descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered datasets.
func (r *Registry) Len() int {
	return len(r.descriptors)
}
