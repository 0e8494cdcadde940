package gestalt

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/decoder"
	"github.com/ikalinin1/gestalt/metrics"
	"github.com/ikalinin1/gestalt/postprocess"
	"github.com/ikalinin1/gestalt/source"
)

func TestBuild_WithCacheReturnsGestaltCache(t *testing.T) {
	g, err := Build(
		WithSource(source.NewMapSource("test", map[string]string{"a": "1"})),
		WithCache(),
	)
	require.NoError(t, err)
	_, ok := g.(*GestaltCache)
	assert.True(t, ok, "expected Build with WithCache to return *GestaltCache")
}

func TestBuild_WithoutCacheReturnsCore(t *testing.T) {
	g, err := Build(WithSource(source.NewMapSource("test", map[string]string{"a": "1"})))
	require.NoError(t, err)
	_, ok := g.(*Core)
	assert.True(t, ok, "expected Build without WithCache to return *Core")
}

func TestBuild_WithPolicyTreatWarningsAsErrors(t *testing.T) {
	g, err := Build(
		WithSource(source.NewMapSource("test", map[string]string{"code": "ab"})),
		WithPolicy(decoder.Policy{TreatWarningsAsErrors: true}),
	)
	require.NoError(t, err)
	require.NoError(t, g.LoadConfigs())

	_, err = GetConfig[decoder.Char](g, "code")
	assert.Error(t, err, "a too-long char value is a WARN-level result, which TreatWarningsAsErrors promotes to fatal")
}

func TestBuild_RelaxedPolicyAllowsCharWarning(t *testing.T) {
	g, err := Build(WithSource(source.NewMapSource("test", map[string]string{"code": "ab"})))
	require.NoError(t, err)
	require.NoError(t, g.LoadConfigs())

	v, err := GetConfig[decoder.Char](g, "code")
	require.NoError(t, err)
	assert.Equal(t, decoder.Char('a'), v)
}

func TestBuild_WithMetricsRecordsDecodeOutcome(t *testing.T) {
	reg := metrics.NewRegistry()
	g, err := Build(
		WithSource(source.NewMapSource("test", map[string]string{"a": "1"})),
		WithMetrics(reg),
	)
	require.NoError(t, err)
	require.NoError(t, g.LoadConfigs())

	_, err = GetConfig[string](g, "a")
	require.NoError(t, err)

	count := testutil.ToFloat64(reg.CoreMetrics().DecodeTotal.WithLabelValues("string", "ok"))
	assert.Equal(t, 1.0, count)
}

func TestBuild_WithModuleConfigOverridesSecretChecker(t *testing.T) {
	checker := postprocess.NewPatternSecretChecker(2)
	g, err := Build(
		WithSource(source.NewMapSource("test", map[string]string{"db.password": "hunter2"})),
		WithModuleConfig(TemporarySecretModuleConfig{Checker: checker}),
	)
	require.NoError(t, err)
	require.NoError(t, g.LoadConfigs())

	v, err := GetConfig[string](g, "db.password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v, "first read within the configured access limit returns the real value")

	v, err = GetConfig[string](g, "db.password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v, "second read succeeds because the module config's limit of 2 replaced the default of 1")
}
