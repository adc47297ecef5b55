package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// GjsonQuery is a gjson path. Each "#." segment maps over an array and
// nests the result one level deeper; depth records how many to flatten.
type GjsonQuery struct {
	path  string
	depth int
}

// Gjson runs gjson paths against the raw document bytes.
type Gjson struct{}

// NewGjson creates the gjson adapter.
func NewGjson() (*Gjson, error) {
	return &Gjson{}, nil
}

func (*Gjson) ID() string { return string(KindGjson) }

func (*Gjson) LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("gjson: %s is not valid JSON", path)
	}
	return data, nil
}

func (*Gjson) CompileQuery(query string) (GjsonQuery, error) {
	if strings.TrimSpace(query) == "" {
		return GjsonQuery{}, fmt.Errorf("gjson: empty path")
	}
	depth := strings.Count(query, "#.")
	if strings.HasPrefix(query, "#") && !strings.HasPrefix(query, "#.") {
		return GjsonQuery{}, fmt.Errorf("gjson: path %q is a length query", query)
	}
	return GjsonQuery{path: query, depth: depth}, nil
}

func (*Gjson) Run(query GjsonQuery, data []byte) (uint64, error) {
	return countGjson(gjson.GetBytes(data, query.path), query.depth), nil
}

func countGjson(r gjson.Result, depth int) uint64 {
	if !r.Exists() {
		return 0
	}
	if depth == 0 || !r.IsArray() {
		return 1
	}
	var n uint64
	r.ForEach(func(_, v gjson.Result) bool {
		n += countGjson(v, depth-1)
		return true
	})
	return n
}
