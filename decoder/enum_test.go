package decoder_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/decoder"
	"github.com/ikalinin1/gestalt/node"
)

func newEnumRegistry(t *testing.T) *decoder.Registry {
	t.Helper()
	r := decoder.NewRegistry(nil, decoder.DefaultPolicy())
	r.Register(decoder.EnumDecoder{})
	return r
}

// logLevel implements Enum with value receivers.
type logLevel int

const (
	logLevelInfo logLevel = iota
	logLevelWarn
	logLevelError
)

func (logLevel) EnumValues() []string { return []string{"info", "warn", "error"} }

func (logLevel) FromName(name string) (any, bool) {
	switch strings.ToLower(name) {
	case "info":
		return logLevelInfo, true
	case "warn":
		return logLevelWarn, true
	case "error":
		return logLevelError, true
	default:
		return nil, false
	}
}

// workerMode implements Enum with pointer receivers only — EnumDecoder must
// still handle this without a value-receiver type assertion panicking.
type workerMode int

const (
	workerModeActive workerMode = iota
	workerModeIdle
)

func (*workerMode) EnumValues() []string { return []string{"active", "idle"} }

func (*workerMode) FromName(name string) (any, bool) {
	switch strings.ToLower(name) {
	case "active":
		return workerModeActive, true
	case "idle":
		return workerModeIdle, true
	default:
		return nil, false
	}
}

func TestEnumDecoder_CaseInsensitiveMatch(t *testing.T) {
	r := newEnumRegistry(t)
	res := r.DecodeNode("level", node.NewLeaf("WaRn"), reflect.TypeOf(logLevel(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, logLevelWarn, res.MustValue())
}

func TestEnumDecoder_NoMatchIsError(t *testing.T) {
	r := newEnumRegistry(t)
	res := r.DecodeNode("level", node.NewLeaf("verbose"), reflect.TypeOf(logLevel(0)))
	require.False(t, res.HasValue())
	assert.Equal(t, "DecodingNumberParsing", res.Errors[0].Kind)
}

func TestEnumDecoder_MissingLeafValueIsError(t *testing.T) {
	r := newEnumRegistry(t)
	res := r.DecodeNode("level", node.NewEmptyLeaf(), reflect.TypeOf(logLevel(0)))
	require.False(t, res.HasValue())
	assert.Equal(t, "DecodingLeafMissingValue", res.Errors[0].Kind)
}

// Exercises the pointer-receiver Enum case Matches accepts via
// reflect.PointerTo(t).Implements — decoding must not panic.
func TestEnumDecoder_PointerReceiverEnumDoesNotPanic(t *testing.T) {
	r := newEnumRegistry(t)
	require.NotPanics(t, func() {
		res := r.DecodeNode("mode", node.NewLeaf("idle"), reflect.TypeOf(workerMode(0)))
		require.True(t, res.HasValue())
		assert.Equal(t, workerModeIdle, res.MustValue())
	})
}
