package engine

import (
	"context"
	"os"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PaesslerQuery is a compiled PaesslerAG/jsonpath evaluable. Plural paths
// evaluate to a slice of matches, singular paths to the matched value.
type PaesslerQuery struct {
	eval   gval.Evaluable
	plural bool
}

// Paessler runs JSONPath queries with PaesslerAG/jsonpath over a document
// decoded by json-iterator.
type Paessler struct{}

// NewPaessler creates the PaesslerAG adapter.
func NewPaessler() (*Paessler, error) {
	return &Paessler{}, nil
}

func (*Paessler) ID() string { return string(KindPaessler) }

func (*Paessler) LoadFile(path string) (any, error) {
	return decodeFile(path)
}

func (*Paessler) CompileQuery(query string) (PaesslerQuery, error) {
	eval, err := jsonpath.New(query)
	if err != nil {
		return PaesslerQuery{}, err
	}
	return PaesslerQuery{eval: eval, plural: isPluralPath(query)}, nil
}

func (*Paessler) Run(query PaesslerQuery, doc any) (uint64, error) {
	v, err := query.eval(context.Background(), doc)
	if err != nil {
		return 0, err
	}
	if !query.plural {
		return 1, nil
	}
	if matches, ok := v.([]interface{}); ok {
		return uint64(len(matches)), nil
	}
	return 0, nil
}

// isPluralPath reports whether a JSONPath can select more than one node:
// wildcards, descendant segments, filters, slices and unions.
func isPluralPath(query string) bool {
	if strings.Contains(query, "*") || strings.Contains(query, "..") {
		return true
	}
	depth := 0
	for _, r := range query {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case '?', ':', ',':
			if depth > 0 {
				return true
			}
		}
	}
	return false
}

// decodeFile reads a JSON file into plain Go values.
func decodeFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
