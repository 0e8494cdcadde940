// Package postprocess implements the post-processor chain (C5): processors
// that rewrite tree nodes depth-first, in priority order, at generation-
// build time. The two shipped processors are the substitution engine and
// the temporary-secret decorator.
package postprocess

import (
	"log/slog"
	"sort"
	"strconv"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

// Processor rewrites a node found at path, returning the replacement (or
// the same node, unchanged) plus any accumulated errors.
type Processor interface {
	Name() string
	Priority() int
	Process(path string, n node.Node) result.R[node.Node]
}

// RootAware is implemented by processors that resolve references against
// the tree being built rather than one captured at construction time.
// Chain.Run calls SetRoot with the root as it stands right before that
// processor's pass, so a processor sees its own prior passes' rewrites.
type RootAware interface {
	SetRoot(root node.Node)
}

// Chain runs a list of processors depth-first over a tree, in descending
// priority order, mirroring the teacher's registry-with-dedupe pattern
// generalized from decoders to tree rewriters.
type Chain struct {
	processors []Processor
	logger     *slog.Logger
}

// NewChain builds a processor chain; logger may be nil (defaults to
// slog.Default()).
func NewChain(logger *slog.Logger, processors ...Processor) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	sorted := append([]Processor{}, processors...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() > sorted[j].Priority() })
	return &Chain{processors: sorted, logger: logger}
}

// Add appends a processor and re-sorts by descending priority (stable, so
// equal-priority processors keep relative order).
func (c *Chain) Add(p Processor) {
	c.processors = append(c.processors, p)
	sort.SliceStable(c.processors, func(i, j int) bool { return c.processors[i].Priority() > c.processors[j].Priority() })
}

// Run applies every processor, in priority order, depth-first over root.
func (c *Chain) Run(root node.Node) result.R[node.Node] {
	current := root
	var errs []result.ValidationError
	for _, p := range c.processors {
		if ra, ok := p.(RootAware); ok {
			ra.SetRoot(current)
		}
		r := c.walk(p, "", current)
		errs = append(errs, r.Errors...)
		if v, ok := r.Value(); ok {
			current = v
		}
	}
	return result.Of[node.Node](&current, errs)
}

func (c *Chain) walk(p Processor, path string, n node.Node) result.R[node.Node] {
	if n == nil {
		return result.Valid[node.Node](nil)
	}

	var rewritten node.Node = n
	var errs []result.ValidationError

	switch v := n.(type) {
	case *node.Map:
		out := node.NewMap()
		out.Meta = v.Metadata()
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			childPath := joinPath(path, k)
			r := c.walk(p, childPath, child)
			errs = append(errs, r.Errors...)
			if cv, ok := r.Value(); ok {
				out.Set(k, cv)
			} else {
				out.Set(k, child)
			}
		}
		rewritten = out
	case *node.Array:
		out := &node.Array{Elements: make([]node.Node, len(v.Elements)), Meta: v.Metadata()}
		for i, child := range v.Elements {
			childPath := path + "[" + strconv.Itoa(i) + "]"
			r := c.walk(p, childPath, child)
			errs = append(errs, r.Errors...)
			if cv, ok := r.Value(); ok {
				out.Elements[i] = cv
			} else {
				out.Elements[i] = child
			}
		}
		rewritten = out
	}

	pr := p.Process(path, rewritten)
	errs = append(errs, pr.Errors...)
	if v, ok := pr.Value(); ok {
		rewritten = v
	}

	return result.Of[node.Node](&rewritten, errs)
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
