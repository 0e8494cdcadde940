package node_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/token"
)

func tokensOf(t *testing.T, path string) []token.Token {
	t.Helper()
	r := token.Tokenize(path, path)
	require.True(t, r.HasValue())
	return r.MustValue()
}

func TestMapCaseInsensitiveLookup(t *testing.T) {
	m := node.NewMap()
	m.Set("Db", node.NewLeaf("x"))

	v, ok := m.Get("db")
	require.True(t, ok)
	require.Equal(t, "x", *v.(*node.Leaf).Value)

	require.Equal(t, []string{"Db"}, m.Keys(), "display case must be preserved in Keys()")
}

func TestNavigate(t *testing.T) {
	root := node.NewMap()
	servers := node.NewArray(node.NewMap())
	servers.Elements[0].(*node.Map).Set("host", node.NewLeaf("h1"))
	root.Set("db", node.NewMap())
	root.Set("servers", servers)

	toks := tokensOf(t, "servers[0].host")
	r := node.Navigate(root, toks)
	require.True(t, r.HasValue())
	leaf := r.MustValue().(*node.Leaf)
	require.Equal(t, "h1", *leaf.Value)
}

func TestNavigateMissing(t *testing.T) {
	root := node.NewMap()
	toks := tokensOf(t, "a.b")
	r := node.Navigate(root, toks)
	require.False(t, r.HasValue())
	require.True(t, r.HasErrors())
	require.Equal(t, "NoResultsFoundForNode", r.Errors[0].Kind)
}

func TestMergeAssociative(t *testing.T) {
	build := func(port, host string) *node.Map {
		root := node.NewMap()
		db := node.NewMap()
		if port != "" {
			db.Set("port", node.NewLeaf(port))
		}
		if host != "" {
			db.Set("host", node.NewLeaf(host))
		}
		root.Set("db", db)
		return root
	}

	a := build("1", "")
	b := build("2", "h")
	c := build("3", "")

	left := mustMerge(t, mustMergeNode(t, a, b), c)
	right := mustMerge(t, a, mustMergeNode(t, b, c))

	portToks := tokensOf(t, "db.port")
	hostToks := tokensOf(t, "db.host")

	leftPort := node.Navigate(left, portToks).MustValue().(*node.Leaf)
	rightPort := node.Navigate(right, portToks).MustValue().(*node.Leaf)
	require.Equal(t, *leftPort.Value, *rightPort.Value, "merge must be associative on conflicting scalars")

	leftHost := node.Navigate(left, hostToks).MustValue().(*node.Leaf)
	rightHost := node.Navigate(right, hostToks).MustValue().(*node.Leaf)
	require.Equal(t, *leftHost.Value, *rightHost.Value, "merge must be associative on non-conflicting scalars")
}

func TestMergePrecedence_S7(t *testing.T) {
	s1 := node.NewMap()
	db1 := node.NewMap()
	db1.Set("port", node.NewLeaf("1"))
	s1.Set("db", db1)

	s2 := node.NewMap()
	db2 := node.NewMap()
	db2.Set("port", node.NewLeaf("2"))
	db2.Set("host", node.NewLeaf("h"))
	s2.Set("db", db2)

	merged := mustMergeNode(t, s1, s2)

	portToks := tokensOf(t, "db.port")
	hostToks := tokensOf(t, "db.host")

	portR := node.Navigate(merged, portToks)
	require.Equal(t, "2", *portR.MustValue().(*node.Leaf).Value)

	hostR := node.Navigate(merged, hostToks)
	require.Equal(t, "h", *hostR.MustValue().(*node.Leaf).Value)
}

func mustMergeNode(t *testing.T, a, b node.Node) node.Node {
	t.Helper()
	r := node.Merge(a, b)
	require.False(t, r.HasFatalErrors(), r.Errors)
	v, ok := r.Value()
	require.True(t, ok)
	return v
}

func mustMerge(t *testing.T, a, b node.Node) node.Node {
	return mustMergeNode(t, a, b)
}
