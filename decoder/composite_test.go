package decoder_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/decoder"
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

func newRegistryWithScalars(t *testing.T, policy decoder.Policy) *decoder.Registry {
	t.Helper()
	r := decoder.NewRegistry(nil, policy)
	r.Register(decoder.IntDecoder{})
	r.Register(decoder.StringDecoder{})
	r.Register(decoder.ArrayDecoder{})
	r.Register(decoder.MapDecoder{})
	r.Register(decoder.ObjectDecoder{})
	r.Register(decoder.OptionalDecoder{})
	return r
}

// S3: a leaf holding a comma-separated string decodes to an array by
// splitting and trimming each element, decoding it as the slice's
// component type.
func TestArrayDecoder_CommaSeparatedLeaf(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	leaf := node.NewLeaf("1, 2 ,3")

	res := r.DecodeNode("ids", leaf, reflect.TypeOf([]int(nil)))
	require.True(t, res.HasValue())
	assert.Equal(t, []int{1, 2, 3}, res.MustValue())
}

func TestArrayDecoder_RealArrayNode(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	arr := node.NewArray(node.NewLeaf("1"), node.NewLeaf("2"))

	res := r.DecodeNode("ids", arr, reflect.TypeOf([]int(nil)))
	require.True(t, res.HasValue())
	assert.Equal(t, []int{1, 2}, res.MustValue())
}

func TestArrayDecoder_MissingIndexWarnsByDefault(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	arr := node.NewArray(node.NewLeaf("1"), nil, node.NewLeaf("3"))

	res := r.DecodeNode("ids", arr, reflect.TypeOf([]int(nil)))
	require.True(t, res.HasValue())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, result.LevelWarn, res.Errors[0].Level)
	assert.Equal(t, "ArrayMissingIndex", res.Errors[0].Kind)
}

func TestArrayDecoder_MissingIndexAsErrorPolicy(t *testing.T) {
	policy := decoder.DefaultPolicy()
	policy.TreatMissingArrayIndexAsError = true
	r := newRegistryWithScalars(t, policy)
	arr := node.NewArray(node.NewLeaf("1"), nil)

	res := r.DecodeNode("ids", arr, reflect.TypeOf([]int(nil)))
	require.True(t, res.HasValue(), "the array decoder still returns a best-effort value on a fatal element error")
	require.True(t, res.HasFatalErrors())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, result.LevelError, res.Errors[0].Level)
}

func TestArrayDecoder_NonArrayNodeIsError(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	m := node.NewMap()
	res := r.DecodeNode("ids", m, reflect.TypeOf([]int(nil)))
	require.False(t, res.HasValue())
	assert.Equal(t, "DecodingExpectedArray", res.Errors[0].Kind)
}

func TestMapDecoder_DecodesEachEntry(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	m := node.NewMap()
	m.Set("a", node.NewLeaf("1"))
	m.Set("b", node.NewLeaf("2"))

	res := r.DecodeNode("values", m, reflect.TypeOf(map[string]int(nil)))
	require.True(t, res.HasValue())
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, res.MustValue())
}

func TestMapDecoder_NonMapNodeIsError(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	res := r.DecodeNode("values", node.NewLeaf("x"), reflect.TypeOf(map[string]int(nil)))
	require.False(t, res.HasValue())
	assert.Equal(t, "DecodingExpectedMap", res.Errors[0].Kind)
}

type poolConfig struct {
	MaxSize int    `config:"max_size"`
	Name    string `config:"name"`
}

func TestObjectDecoder_DecodesDeclaredFields(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	m := node.NewMap()
	m.Set("max_size", node.NewLeaf("10"))
	m.Set("name", node.NewLeaf("primary"))

	res := r.DecodeNode("pool", m, reflect.TypeOf(poolConfig{}))
	require.True(t, res.HasValue())
	assert.Equal(t, poolConfig{MaxSize: 10, Name: "primary"}, res.MustValue())
}

func TestObjectDecoder_MissingFieldIsOptionalByDefault(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	m := node.NewMap()
	m.Set("max_size", node.NewLeaf("10"))

	res := r.DecodeNode("pool", m, reflect.TypeOf(poolConfig{}))
	require.True(t, res.HasValue())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, result.LevelMissingOptionalValue, res.Errors[0].Level)
}

func TestObjectDecoder_TreatMissingValuesAsErrorsPolicy(t *testing.T) {
	policy := decoder.DefaultPolicy()
	policy.TreatMissingValuesAsErrors = true
	r := newRegistryWithScalars(t, policy)
	m := node.NewMap()
	m.Set("max_size", node.NewLeaf("10"))

	res := r.DecodeNode("pool", m, reflect.TypeOf(poolConfig{}))
	require.True(t, res.HasValue(), "the object decoder still returns a best-effort value on a fatal field error")
	require.True(t, res.HasFatalErrors())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, result.LevelError, res.Errors[0].Level)
}

type withPointer struct {
	Name *string `config:"name"`
}

func TestObjectDecoder_TreatNullValuesInClassAsErrorsPolicy(t *testing.T) {
	policy := decoder.DefaultPolicy()
	policy.TreatNullValuesInClassAsErrors = true
	r := newRegistryWithScalars(t, policy)
	m := node.NewMap()
	m.Set("name", node.NewEmptyLeaf())

	res := r.DecodeNode("obj", m, reflect.TypeOf(withPointer{}))
	require.True(t, res.HasValue(), "the object decoder still returns a best-effort value on a fatal field error")
	require.True(t, res.HasFatalErrors())
	found := false
	for _, e := range res.Errors {
		if e.Kind == "DecodingExpectedObject" {
			found = true
		}
	}
	assert.True(t, found, "expected a DecodingExpectedObject error when a null field is disallowed")
}

func TestOptionalDecoder_AbsentNodeYieldsNilPointer(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	res := r.DecodeNode("opt", nil, reflect.TypeOf((*int)(nil)))
	require.True(t, res.HasValue())
	v := res.MustValue()
	assert.Nil(t, v.(*int))
}

func TestOptionalDecoder_PresentNodeDecodesAndWraps(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	res := r.DecodeNode("opt", node.NewLeaf("5"), reflect.TypeOf((*int)(nil)))
	require.True(t, res.HasValue())
	v := res.MustValue().(*int)
	require.NotNil(t, v)
	assert.Equal(t, 5, *v)
}

// An optional nested sub-config (a *poolConfig field) must dispatch to
// ObjectDecoder for the pointed-to struct, not fail with NoDecoderFor.
func TestOptionalDecoder_PointerToStructDelegatesToObjectDecoder(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	m := node.NewMap()
	m.Set("max_size", node.NewLeaf("10"))
	m.Set("name", node.NewLeaf("primary"))

	res := r.DecodeNode("pool", m, reflect.TypeOf((*poolConfig)(nil)))
	require.True(t, res.HasValue())
	v := res.MustValue().(*poolConfig)
	require.NotNil(t, v)
	assert.Equal(t, poolConfig{MaxSize: 10, Name: "primary"}, *v)
}

func TestOptionalDecoder_AbsentPointerToStructYieldsNilPointer(t *testing.T) {
	r := newRegistryWithScalars(t, decoder.DefaultPolicy())
	res := r.DecodeNode("pool", nil, reflect.TypeOf((*poolConfig)(nil)))
	require.True(t, res.HasValue())
	assert.Nil(t, res.MustValue().(*poolConfig))
}
