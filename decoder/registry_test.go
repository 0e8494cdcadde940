package decoder_test

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/decoder"
	"github.com/ikalinin1/gestalt/node"
)

func newRegistry(t *testing.T, policy decoder.Policy) *decoder.Registry {
	t.Helper()
	return decoder.NewRegistry(nil, policy)
}

func TestDecodeNode_NoDecoderRegisteredIsError(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	res := r.DecodeNode("x", node.NewLeaf("1"), reflect.TypeOf(int(0)))
	require.False(t, res.HasValue())
	require.Equal(t, "NoDecoderFor", res.Errors[0].Kind)
}

func TestDecodeNode_IntDecoder(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.IntDecoder{})
	res := r.DecodeNode("port", node.NewLeaf("5432"), reflect.TypeOf(int(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, 5432, res.MustValue())
}

func TestDecodeNode_IntDecoderOverflow(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.IntDecoder{})
	res := r.DecodeNode("small", node.NewLeaf("99999"), reflect.TypeOf(int8(0)))
	require.False(t, res.HasValue())
	assert.Equal(t, "DecodingNumberParsing", res.Errors[0].Kind)
}

func TestDecodeNode_BoolDecoderAcceptsYesNo(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.BoolDecoder{})
	res := r.DecodeNode("flag", node.NewLeaf("yes"), reflect.TypeOf(false))
	require.True(t, res.HasValue())
	assert.Equal(t, true, res.MustValue())
}

func TestDecodeNode_HigherPriorityDecoderWins(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.CharDecoder{}) // VERY_HIGH, matches only decoder.Char
	r.Register(decoder.IntDecoder{})  // MEDIUM, also matches Char's int32 kind
	res := r.DecodeNode("code", node.NewLeaf("a"), reflect.TypeOf(decoder.Char(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, decoder.Char('a'), res.MustValue())
}

func TestDecodeNode_DuplicateDecoderIgnored(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.IntDecoder{})
	r.Register(decoder.IntDecoder{}) // same name+priority, dropped with a WARN log
	res := r.DecodeNode("port", node.NewLeaf("5432"), reflect.TypeOf(int(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, 5432, res.MustValue())
}

func TestDecodeNode_CharWrongSizeWarnsButSucceeds(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.CharDecoder{})
	res := r.DecodeNode("code", node.NewLeaf("ab"), reflect.TypeOf(decoder.Char(0)))
	require.True(t, res.HasValue())
	assert.Equal(t, decoder.Char('a'), res.MustValue())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "DecodingCharWrongSize", res.Errors[0].Kind)
}

func TestDecodeNode_CharEmptyIsFatal(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.CharDecoder{})
	res := r.DecodeNode("code", node.NewEmptyLeaf(), reflect.TypeOf(decoder.Char(0)))
	require.False(t, res.HasValue())
}

func TestDecodeNode_UUIDDecoder(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.UUIDDecoder{})
	id := "4c9184f3-1225-4896-8f45-f9f852e4d940"
	res := r.DecodeNode("id", node.NewLeaf(id), reflect.TypeOf(uuid.UUID{}))
	require.True(t, res.HasValue())
	assert.Equal(t, id, res.MustValue().(uuid.UUID).String())
}

func TestDecodeNode_UUIDDecoderInvalid(t *testing.T) {
	r := newRegistry(t, decoder.DefaultPolicy())
	r.Register(decoder.UUIDDecoder{})
	res := r.DecodeNode("id", node.NewLeaf("not-a-uuid"), reflect.TypeOf(uuid.UUID{}))
	require.False(t, res.HasValue())
}

func TestDecodeNode_PolicyTreatWarningsAsErrorsIsExposedToCaller(t *testing.T) {
	r := newRegistry(t, decoder.Policy{TreatWarningsAsErrors: true})
	assert.True(t, r.PolicyOf().TreatWarningsAsErrors)
}
