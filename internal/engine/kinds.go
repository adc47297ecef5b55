package engine

import (
	"fmt"

	"github.com/Jeffail/gabs/v2"
	"github.com/itchyny/gojq"
	"github.com/ohler55/ojg/jp"
	"github.com/spyzhov/ajson"
	"github.com/valyala/fastjson"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// PrepareKind constructs the engine of the given kind and prepares query
// against the file at path. An empty id uses the engine id.
func PrepareKind(kind Kind, id, path, query string, opts ...Option) (Target, error) {
	switch kind {
	case KindOjg:
		impl, err := NewOjg()
		if err != nil {
			return nil, setupError(kind, err)
		}
		return prepareTarget[jp.Expr, any](impl, id, path, query, opts)
	case KindOjgBytes:
		impl, err := NewOjgBytes()
		if err != nil {
			return nil, setupError(kind, err)
		}
		return prepareTarget[jp.Expr, []byte](impl, id, path, query, opts)
	case KindAjson:
		impl, err := NewAjson()
		if err != nil {
			return nil, setupError(kind, err)
		}
		return prepareTarget[[]string, *ajson.Node](impl, id, path, query, opts)
	case KindPaessler:
		impl, err := NewPaessler()
		if err != nil {
			return nil, setupError(kind, err)
		}
		return prepareTarget[PaesslerQuery, any](impl, id, path, query, opts)
	case KindGjson:
		impl, err := NewGjson()
		if err != nil {
			return nil, setupError(kind, err)
		}
		return prepareTarget[GjsonQuery, []byte](impl, id, path, query, opts)
	case KindGojq:
		impl, err := NewGojq()
		if err != nil {
			return nil, setupError(kind, err)
		}
		return prepareTarget[*gojq.Code, any](impl, id, path, query, opts)
	case KindGabs:
		impl, err := NewGabs()
		if err != nil {
			return nil, setupError(kind, err)
		}
		return prepareTarget[GabsQuery, *gabs.Container](impl, id, path, query, opts)
	case KindFastjson:
		impl, err := NewFastjson()
		if err != nil {
			return nil, setupError(kind, err)
		}
		return prepareTarget[[]string, *fastjson.Value](impl, id, path, query, opts)
	default:
		return nil, bencherrors.NewEngineError(bencherrors.CodeUnknownEngine, fmt.Sprintf("unknown engine %q", kind), nil)
	}
}

func prepareTarget[Q, F any](impl Implementation[Q, F], id, path, query string, opts []Option) (Target, error) {
	if id == "" {
		id = impl.ID()
	}
	p, err := PrepareWithID(impl, id, path, query, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func setupError(kind Kind, err error) error {
	return bencherrors.NewEngineError(bencherrors.CodeEngineSetup, fmt.Sprintf("creating %s engine", kind), err)
}
