package source_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/source"
	"github.com/ikalinin1/gestalt/token"
)

func TestEnvironmentSourceLoadListWithPrefix(t *testing.T) {
	os.Setenv("GESTALT_TEST_DB_HOST", "db1")
	defer os.Unsetenv("GESTALT_TEST_DB_HOST")

	s := source.NewEnvironmentSource("GESTALT_TEST")
	require.False(t, s.HasStream())
	require.True(t, s.HasList())

	pairs, err := s.LoadList()
	require.NoError(t, err)

	found := false
	for _, kv := range pairs {
		if kv.Key == "db.host" {
			require.Equal(t, "db1", kv.Value)
			found = true
		}
	}
	require.True(t, found, "expected db.host key from GESTALT_TEST_DB_HOST")
}

func TestMapSourceRoundTrip(t *testing.T) {
	s := source.NewMapSource("overrides", map[string]string{"a.b": "1"})
	pairs, err := s.LoadList()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Equal(t, "a.b", pairs[0].Key)
	require.Equal(t, "1", pairs[0].Value)
}

func TestBuildTreeNestsObjectTokens(t *testing.T) {
	mappers := token.NewRegistry()
	r := source.BuildTree([]source.KV{{Key: "db.host", Value: "h"}, {Key: "db.port", Value: "5432"}}, mappers)
	require.True(t, r.HasValue())

	root := r.MustValue().(*node.Map)
	db, ok := root.Get("db")
	require.True(t, ok)
	host, _ := db.(*node.Map).Get("host")
	require.Equal(t, "h", *host.(*node.Leaf).Value)
}
