package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

// GabsQuery is a dotted gabs hierarchy. A "*" segment maps over an array and
// nests its results, so depth levels are flattened when counting.
type GabsQuery struct {
	hierarchy []string
	depth     int
}

// Gabs runs dotted path searches with Jeffail/gabs.
type Gabs struct{}

// NewGabs creates the gabs adapter.
func NewGabs() (*Gabs, error) {
	return &Gabs{}, nil
}

func (*Gabs) ID() string { return string(KindGabs) }

func (*Gabs) LoadFile(path string) (*gabs.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return gabs.ParseJSON(data)
}

func (*Gabs) CompileQuery(query string) (GabsQuery, error) {
	if query == "" {
		return GabsQuery{}, nil
	}
	hierarchy := strings.Split(query, ".")
	for _, seg := range hierarchy {
		if seg == "" {
			return GabsQuery{}, fmt.Errorf("gabs: empty segment in %q", query)
		}
	}
	return GabsQuery{hierarchy: hierarchy, depth: strings.Count(query, "*")}, nil
}

func (*Gabs) Run(query GabsQuery, doc *gabs.Container) (uint64, error) {
	found := doc.Search(query.hierarchy...)
	if found == nil {
		return 0, nil
	}
	return countNested(found.Data(), query.depth), nil
}

// countNested counts the leaves of a value nested depth arrays deep.
func countNested(v interface{}, depth int) uint64 {
	if v == nil {
		return 0
	}
	arr, ok := v.([]interface{})
	if depth == 0 || !ok {
		return 1
	}
	var n uint64
	for _, elem := range arr {
		n += countNested(elem, depth-1)
	}
	return n
}
