package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/token"
)

func TestSnakeCaseMapper_ConvertsCamelCaseSegments(t *testing.T) {
	r := token.SnakeCaseMapper{}.Map("dbConfig.maxConnections", "dbConfig.maxConnections")
	require.True(t, r.HasValue())
	require.Equal(t, "db_config.max_connections", token.Render(r.MustValue()))
}

func TestRegistry_TriesStandardBeforeSnakeCase(t *testing.T) {
	r := token.NewRegistry()
	res := r.Map("dbConfig.port")
	require.True(t, res.HasValue())
	require.Equal(t, "dbConfig.port", token.Render(res.MustValue()))
}

func TestRegistry_RegisterKeepsDescendingPriorityOrder(t *testing.T) {
	r := &token.Registry{}
	r.Register(token.SnakeCaseMapper{}) // priority 50
	r.Register(token.StandardMapper{})  // priority 100
	res := r.Map("dbConfig.port")
	require.True(t, res.HasValue())
	require.Equal(t, "dbConfig.port", token.Render(res.MustValue()))
}

func TestRegistry_MapConcatenatesErrorsOnTotalFailure(t *testing.T) {
	r := &token.Registry{}
	r.Register(token.StandardMapper{})
	res := r.Map("servers[0")
	require.False(t, res.HasValue())
	require.NotEmpty(t, res.Errors)
}
