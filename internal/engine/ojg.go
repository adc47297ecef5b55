package engine

import (
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Ojg runs JSONPath queries with ohler55/ojg against a pre-parsed document.
type Ojg struct{}

// NewOjg creates the primary engine adapter.
func NewOjg() (*Ojg, error) {
	return &Ojg{}, nil
}

func (*Ojg) ID() string { return string(KindOjg) }

func (*Ojg) LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return oj.Parse(data)
}

func (*Ojg) CompileQuery(query string) (jp.Expr, error) {
	return jp.ParseString(query)
}

func (*Ojg) Run(query jp.Expr, doc any) (uint64, error) {
	return uint64(len(query.Get(doc))), nil
}

// OjgBytes keeps the raw bytes and parses them inside every run, so the
// measurement covers parsing plus evaluation.
type OjgBytes struct{}

// NewOjgBytes creates the parse-per-run ojg adapter.
func NewOjgBytes() (*OjgBytes, error) {
	return &OjgBytes{}, nil
}

func (*OjgBytes) ID() string { return string(KindOjgBytes) }

func (*OjgBytes) LoadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (*OjgBytes) CompileQuery(query string) (jp.Expr, error) {
	return jp.ParseString(query)
}

func (*OjgBytes) Run(query jp.Expr, data []byte) (uint64, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return 0, err
	}
	return uint64(len(query.Get(doc))), nil
}
