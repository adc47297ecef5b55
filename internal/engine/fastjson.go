package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/valyala/fastjson"
)

// Fastjson walks dotted paths over a valyala/fastjson value. A "*" segment
// visits every element of an array or every value of an object.
type Fastjson struct{}

// NewFastjson creates the fastjson adapter.
func NewFastjson() (*Fastjson, error) {
	return &Fastjson{}, nil
}

func (*Fastjson) ID() string { return string(KindFastjson) }

func (*Fastjson) LoadFile(path string) (*fastjson.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fastjson.ParseBytes(data)
}

func (*Fastjson) CompileQuery(query string) ([]string, error) {
	if query == "" {
		return nil, nil
	}
	segments := strings.Split(query, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("fastjson: empty segment in %q", query)
		}
	}
	return segments, nil
}

func (*Fastjson) Run(segments []string, root *fastjson.Value) (uint64, error) {
	return walkFastjson(root, segments), nil
}

func walkFastjson(v *fastjson.Value, segments []string) uint64 {
	if v == nil {
		return 0
	}
	if len(segments) == 0 {
		return 1
	}
	seg, rest := segments[0], segments[1:]
	if seg != "*" {
		return walkFastjson(v.Get(seg), rest)
	}

	var n uint64
	switch v.Type() {
	case fastjson.TypeArray:
		for _, elem := range v.GetArray() {
			n += walkFastjson(elem, rest)
		}
	case fastjson.TypeObject:
		v.GetObject().Visit(func(_ []byte, elem *fastjson.Value) {
			n += walkFastjson(elem, rest)
		})
	}
	return n
}
