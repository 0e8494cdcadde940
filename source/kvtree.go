package source

import (
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/token"
)

// BuildTree turns a flat key/value list into a nested tree fragment by
// tokenizing each key through mappers and creating/descending into Map
// nodes for each Object token. No Array nodes are built: a key whose tokens
// include an Array token is skipped from that token on.
func BuildTree(pairs []KV, mappers *token.Registry) result.R[node.Node] {
	root := node.NewMap()
	var errs []result.ValidationError

	for _, kv := range pairs {
		toksR := mappers.Map(kv.Key)
		errs = append(errs, toksR.Errors...)
		toks, ok := toksR.Value()
		if !ok || len(toks) == 0 {
			continue
		}
		setAt(root, toks, node.NewLeaf(kv.Value))
	}

	return result.Of[node.Node](nodePtr(node.Node(root)), errs)
}

// setAt descends/creates containers for all but the last token, then sets
// the leaf at the final token.
func setAt(root *node.Map, toks []token.Token, leaf *node.Leaf) {
	current := root
	for i, t := range toks {
		last := i == len(toks)-1
		switch t.Kind {
		case token.KindObject:
			if last {
				current.Set(t.Name, leaf)
				return
			}
			next, ok := current.Get(t.Name)
			nextMap, isMap := next.(*node.Map)
			if !ok || !isMap {
				nextMap = node.NewMap()
				current.Set(t.Name, nextMap)
			}
			current = nextMap
		case token.KindArray:
			// Array tokens are not built at any depth; stop here rather
			// than guess at a shape, consistent with Navigate's
			// "array token requires an array node" invariant.
			return
		}
	}
}

func nodePtr(n node.Node) *node.Node { return &n }
