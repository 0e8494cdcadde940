package node_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ikalinin1/gestalt/node"
)

func TestDump_RendersPathsInSortedOrder(t *testing.T) {
	root := node.NewMap()
	root.Set("zeta", node.NewLeaf("z"))
	root.Set("alpha", node.NewLeaf("a"))

	out := node.Dump(root)
	alphaIdx := strings.Index(out, "alpha")
	zetaIdx := strings.Index(out, "zeta")
	assert.True(t, alphaIdx < zetaIdx)
	assert.Contains(t, out, "alpha = a")
	assert.Contains(t, out, "zeta = z")
}

func TestDump_RedactsSecretTaggedLeaf(t *testing.T) {
	root := node.NewMap()
	leaf := node.NewLeaf("hunter2")
	leaf.Meta = map[string][]node.MetaValue{"isSecret": {{Kind: "isSecret", Value: "true"}}}
	root.Set("db.password", leaf)

	out := node.Dump(root)
	assert.Contains(t, out, "db.password = ***")
	assert.NotContains(t, out, "hunter2")
}

func TestDump_ArrayIndicesAndNesting(t *testing.T) {
	root := node.NewMap()
	arr := node.NewArray(node.NewLeaf("one"), node.NewLeaf("two"))
	root.Set("items", arr)

	out := node.Dump(root)
	assert.Contains(t, out, "items[0] = one")
	assert.Contains(t, out, "items[1] = two")
}
