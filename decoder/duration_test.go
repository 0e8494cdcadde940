package decoder_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/decoder"
	"github.com/ikalinin1/gestalt/node"
)

func newDurationRegistry(t *testing.T) *decoder.Registry {
	t.Helper()
	r := decoder.NewRegistry(nil, decoder.DefaultPolicy())
	r.Register(decoder.DurationDecoder{})
	return r
}

// S8: a bare integer leaf is milliseconds.
func TestDurationDecoder_IntegerStringIsMilliseconds(t *testing.T) {
	r := newDurationRegistry(t)
	res := r.DecodeNode("timeout", node.NewLeaf("500"), reflect.TypeOf(time.Duration(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, 500*time.Millisecond, res.MustValue())
}

func TestDurationDecoder_NegativeIntegerStringIsMilliseconds(t *testing.T) {
	r := newDurationRegistry(t)
	res := r.DecodeNode("offset", node.NewLeaf("-250"), reflect.TypeOf(time.Duration(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, -250*time.Millisecond, res.MustValue())
}

func TestDurationDecoder_ISO8601HoursMinutesSeconds(t *testing.T) {
	r := newDurationRegistry(t)
	res := r.DecodeNode("timeout", node.NewLeaf("PT1H30M"), reflect.TypeOf(time.Duration(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, time.Hour+30*time.Minute, res.MustValue())
}

func TestDurationDecoder_ISO8601FractionalSeconds(t *testing.T) {
	r := newDurationRegistry(t)
	res := r.DecodeNode("timeout", node.NewLeaf("PT0.5S"), reflect.TypeOf(time.Duration(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, 500*time.Millisecond, res.MustValue())
}

func TestDurationDecoder_ISO8601Days(t *testing.T) {
	r := newDurationRegistry(t)
	res := r.DecodeNode("ttl", node.NewLeaf("P2D"), reflect.TypeOf(time.Duration(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, 48*time.Hour, res.MustValue())
}

func TestDurationDecoder_UnparsableStringIsError(t *testing.T) {
	r := newDurationRegistry(t)
	res := r.DecodeNode("timeout", node.NewLeaf("not-a-duration"), reflect.TypeOf(time.Duration(0)))
	require.False(t, res.HasValue())
	assert.Equal(t, "DecodingNumberParsing", res.Errors[0].Kind)
}

func TestDurationDecoder_MissingLeafValueIsError(t *testing.T) {
	r := newDurationRegistry(t)
	res := r.DecodeNode("timeout", node.NewEmptyLeaf(), reflect.TypeOf(time.Duration(0)))
	require.False(t, res.HasValue())
	assert.Equal(t, "DecodingLeafMissingValue", res.Errors[0].Kind)
}
