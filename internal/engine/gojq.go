package engine

import (
	"github.com/itchyny/gojq"
)

// Gojq runs jq programs with itchyny/gojq. Every emitted value is a match.
type Gojq struct{}

// NewGojq creates the gojq adapter.
func NewGojq() (*Gojq, error) {
	return &Gojq{}, nil
}

func (*Gojq) ID() string { return string(KindGojq) }

func (*Gojq) LoadFile(path string) (any, error) {
	return decodeFile(path)
}

func (*Gojq) CompileQuery(query string) (*gojq.Code, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, err
	}
	return gojq.Compile(parsed)
}

func (*Gojq) Run(code *gojq.Code, doc any) (uint64, error) {
	var n uint64
	iter := code.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return 0, err
		}
		n++
	}
	return n, nil
}
