package engine

import (
	"os"

	"github.com/spyzhov/ajson"
)

// Ajson runs JSONPath queries with spyzhov/ajson.
type Ajson struct{}

// NewAjson creates the ajson adapter.
func NewAjson() (*Ajson, error) {
	return &Ajson{}, nil
}

func (*Ajson) ID() string { return string(KindAjson) }

func (*Ajson) LoadFile(path string) (*ajson.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ajson.Unmarshal(data)
}

// CompileQuery splits the path into ajson's command list.
func (*Ajson) CompileQuery(query string) ([]string, error) {
	return ajson.ParseJSONPath(query)
}

func (*Ajson) Run(commands []string, root *ajson.Node) (uint64, error) {
	nodes, err := ajson.ApplyJSONPath(root, commands)
	if err != nil {
		return 0, err
	}
	return uint64(len(nodes)), nil
}
