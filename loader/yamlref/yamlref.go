// Package yamlref is a minimal, illustrative source.Loader for YAML
// documents, provided only as a reference loader demonstrating the Loader
// contract beyond JSON — real YAML ownership (anchors, multi-document
// streams, tags) is an external collaborator's concern, not this module's.
package yamlref

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/source"
	"github.com/ikalinin1/gestalt/token"
)

// Loader parses a YAML document into a config tree fragment.
type Loader struct {
	Mappers *token.Registry
}

// New builds a Loader using the default path mapper registry.
func New() *Loader {
	return &Loader{Mappers: token.NewRegistry()}
}

func (*Loader) Name() string { return "yaml" }

func (*Loader) Accepts(format string) bool { return format == "yaml" || format == "yml" }

func (*Loader) Load(data []byte) result.R[node.Node] {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return result.Invalid[node.Node](result.ValidationError{
			Level: result.LevelError, Kind: "SourceLoadFailure",
			Message: "could not parse YAML: " + err.Error(),
		})
	}
	return result.Valid(fromAny(raw))
}

// LoadKV builds a fragment from flat key/value pairs the same way any
// list-backed source does, via source.BuildTree.
func (l *Loader) LoadKV(pairs []source.KV) result.R[node.Node] {
	mappers := l.Mappers
	if mappers == nil {
		mappers = token.NewRegistry()
	}
	return source.BuildTree(pairs, mappers)
}

// fromAny walks the value tree yaml.Unmarshal produces into an any target:
// mapping nodes decode as map[string]any (not map[any]any, since yaml.v3's
// generic decoder already normalizes string-keyed maps), sequences as
// []any, scalars as their native Go type.
func fromAny(v any) node.Node {
	switch tv := v.(type) {
	case map[string]any:
		m := node.NewMap()
		for k, val := range tv {
			m.Set(k, fromAny(val))
		}
		return m
	case []any:
		elems := make([]node.Node, len(tv))
		for i, val := range tv {
			elems[i] = fromAny(val)
		}
		return node.NewArray(elems...)
	case nil:
		return node.NewEmptyLeaf()
	case string:
		return node.NewLeaf(tv)
	case bool:
		if tv {
			return node.NewLeaf("true")
		}
		return node.NewLeaf("false")
	case int:
		return node.NewLeaf(strconv.Itoa(tv))
	case float64:
		return node.NewLeaf(strconv.FormatFloat(tv, 'f', -1, 64))
	default:
		return node.NewEmptyLeaf()
	}
}
