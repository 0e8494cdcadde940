package yamlref_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/loader/yamlref"
	"github.com/ikalinin1/gestalt/node"
)

func TestLoadParsesNestedDocument(t *testing.T) {
	l := yamlref.New()
	r := l.Load([]byte("db:\n  host: localhost\n  port: \"5432\"\ntags:\n  - a\n  - b\n"))
	require.True(t, r.HasValue())

	root := r.MustValue().(*node.Map)
	db, ok := root.Get("db")
	require.True(t, ok)
	host, _ := db.(*node.Map).Get("host")
	require.Equal(t, "localhost", *host.(*node.Leaf).Value)

	tags, ok := root.Get("tags")
	require.True(t, ok)
	arr := tags.(*node.Array)
	require.Len(t, arr.Elements, 2)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	l := yamlref.New()
	r := l.Load([]byte("db:\n  - not: valid\n  yaml here"))
	require.False(t, r.HasValue())
}

func TestAcceptsYamlAndYmlFormats(t *testing.T) {
	l := yamlref.New()
	require.True(t, l.Accepts("yaml"))
	require.True(t, l.Accepts("yml"))
	require.False(t, l.Accepts("json"))
}
