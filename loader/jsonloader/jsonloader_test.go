package jsonloader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/loader/jsonloader"
	"github.com/ikalinin1/gestalt/node"
)

func TestLoadParsesNestedDocument(t *testing.T) {
	l := jsonloader.New()
	r := l.Load([]byte(`{"db": {"host": "localhost", "port": "5432"}, "tags": ["a", "b"]}`))
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

func TestLoadRejectsMalformedJSON(t *testing.T) {
	l := jsonloader.New()
	r := l.Load([]byte(`{not json`))
	require.False(t, r.HasValue())
	require.Equal(t, "SourceLoadFailure", r.Errors[0].Kind)
}
