// Package engine defines the contract every benchmarked query engine
// implements and the adapters for the engines the harness ships with.
//
// An engine is reached only through Implementation: it loads a file into
// whatever in-memory form it prefers, compiles a query string in its own
// dialect, and runs the compiled query against the loaded file, returning
// the number of matches. Results are never materialized by the harness.
package engine

import (
	"fmt"
	"io"
	"strings"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// Implementation is the contract between the harness and a query engine.
// Run must be idempotent for a fixed query and file.
type Implementation[Q, F any] interface {
	// ID returns the stable engine identifier used in benchmark ids.
	ID() string
	// LoadFile reads the JSON document at path into the engine's file form.
	LoadFile(path string) (F, error)
	// CompileQuery compiles a query string in the engine's dialect.
	CompileQuery(query string) (Q, error)
	// Run executes query against file and returns the match count.
	Run(query Q, file F) (uint64, error)
}

// Kind names a supported engine.
type Kind string

const (
	KindOjg      Kind = "ojg"
	KindOjgBytes Kind = "ojg_bytes"
	KindAjson    Kind = "ajson"
	KindPaessler Kind = "paessler"
	KindGjson    Kind = "gjson"
	KindGojq     Kind = "gojq"
	KindGabs     Kind = "gabs"
	KindFastjson Kind = "fastjson"
)

// Primary is the engine under test. The other kinds are competitors.
const Primary = KindOjg

// JSONPathEngines is the roster used when one JSONPath query is applied to
// "all" engines. Only engines accepting standard JSONPath syntax belong here;
// native-dialect engines are added individually with translated queries.
var JSONPathEngines = []Kind{KindOjg, KindOjgBytes, KindAjson, KindPaessler}

// AllKinds lists every supported engine.
var AllKinds = []Kind{KindOjg, KindOjgBytes, KindAjson, KindPaessler, KindGjson, KindGojq, KindGabs, KindFastjson}

// ParseKind returns the kind named by s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds {
		if k == known {
			return k, nil
		}
	}
	return "", bencherrors.NewEngineError(bencherrors.CodeUnknownEngine, fmt.Sprintf("unknown engine %q", s), nil)
}

// IsJSONPath reports whether the kind accepts standard JSONPath syntax.
func (k Kind) IsJSONPath() bool {
	for _, j := range JSONPathEngines {
		if k == j {
			return true
		}
	}
	return false
}

// Target is a fully prepared (engine, query, file) unit ready to be measured.
type Target interface {
	// ID returns the target id within its benchset.
	ID() string
	// Engine returns the engine kind that executes the target.
	Engine() Kind
	// Query returns the query string as given to the engine.
	Query() string
	// Run executes the target once and returns the match count.
	Run() (uint64, error)
	// Close releases the loaded document.
	Close() error
}

// Option changes what a prepared query does inside Run.
type Option func(*prepareConfig)

type prepareConfig struct {
	loadPerRun    bool
	compilePerRun bool
}

// WithLoadPerRun makes every Run load the file again, so file loading is
// part of the measured work.
func WithLoadPerRun() Option {
	return func(c *prepareConfig) { c.loadPerRun = true }
}

// WithCompilePerRun makes every Run compile the query again, so compilation
// is part of the measured work.
func WithCompilePerRun() Option {
	return func(c *prepareConfig) { c.compilePerRun = true }
}

// PreparedQuery binds an implementation to a compiled query and a loaded file.
type PreparedQuery[Q, F any] struct {
	impl     Implementation[Q, F]
	id       string
	path     string
	query    string
	compiled Q
	file     F
	cfg      prepareConfig
}

// Prepare compiles query and loads the file at path for impl. The target id
// is the engine id.
func Prepare[Q, F any](impl Implementation[Q, F], path, query string, opts ...Option) (*PreparedQuery[Q, F], error) {
	return PrepareWithID(impl, impl.ID(), path, query, opts...)
}

// PrepareWithID is Prepare with an explicit target id. The query is always
// compiled here so an invalid query fails during configuration, even when
// compilation is also measured per run.
func PrepareWithID[Q, F any](impl Implementation[Q, F], id, path, query string, opts ...Option) (*PreparedQuery[Q, F], error) {
	var cfg prepareConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	compiled, err := impl.CompileQuery(query)
	if err != nil {
		return nil, compileError(impl.ID(), query, err)
	}

	p := &PreparedQuery[Q, F]{
		impl:     impl,
		id:       id,
		path:     path,
		query:    query,
		compiled: compiled,
		cfg:      cfg,
	}
	if !cfg.loadPerRun {
		file, err := impl.LoadFile(path)
		if err != nil {
			return nil, loadError(impl.ID(), path, err)
		}
		p.file = file
	}
	return p, nil
}

// ID returns the target id.
func (p *PreparedQuery[Q, F]) ID() string { return p.id }

// Engine returns the engine kind.
func (p *PreparedQuery[Q, F]) Engine() Kind { return Kind(p.impl.ID()) }

// Query returns the query string.
func (p *PreparedQuery[Q, F]) Query() string { return p.query }

// Run executes the compiled query against the loaded file.
func (p *PreparedQuery[Q, F]) Run() (uint64, error) {
	q := p.compiled
	if p.cfg.compilePerRun {
		var err error
		if q, err = p.impl.CompileQuery(p.query); err != nil {
			return 0, compileError(p.impl.ID(), p.query, err)
		}
	}

	f := p.file
	if p.cfg.loadPerRun {
		var err error
		if f, err = p.impl.LoadFile(p.path); err != nil {
			return 0, loadError(p.impl.ID(), p.path, err)
		}
		defer closeFile(f)
	}

	n, err := p.impl.Run(q, f)
	if err != nil {
		return 0, bencherrors.NewEngineError(bencherrors.CodeRunFailed,
			fmt.Sprintf("%s failed running %q", p.impl.ID(), p.query), err).
			WithDetails(map[string]interface{}{"engine": p.impl.ID(), "query": p.query})
	}
	return n, nil
}

// Close releases the loaded document.
func (p *PreparedQuery[Q, F]) Close() error {
	err := closeFile(p.file)
	var zero F
	p.file = zero
	return err
}

func closeFile(f any) error {
	if c, ok := f.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func compileError(engine, query string, err error) error {
	return bencherrors.NewEngineError(bencherrors.CodeCompileFailed,
		fmt.Sprintf("%s failed to compile %q", engine, query), err).
		WithDetails(map[string]interface{}{"engine": engine, "query": query})
}

func loadError(engine, path string, err error) error {
	return bencherrors.NewEngineError(bencherrors.CodeLoadFailed,
		fmt.Sprintf("%s failed to load %s", engine, path), err).
		WithDetails(map[string]interface{}{"engine": engine, "path": path})
}
