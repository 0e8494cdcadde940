package decoder

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

// ArrayDecoder accepts either an Array node or a Leaf whose value is
// comma-separated (S3), splitting/trimming and recursively decoding each
// element as the slice's component type via registry.DecodeNode — never by
// calling another decoder directly.
type ArrayDecoder struct{}

func (ArrayDecoder) Name() string       { return "array" }
func (ArrayDecoder) Priority() Priority { return PriorityMedium }
func (ArrayDecoder) Matches(t reflect.Type) bool { return t.Kind() == reflect.Slice }

func (ArrayDecoder) Decode(path string, n node.Node, t reflect.Type, registry *Registry) result.R[any] {
	elemType := t.Elem()

	if leaf, ok := n.(*node.Leaf); ok {
		if leaf.Value == nil {
			return result.Invalid[any](result.ValidationError{
				Level: result.LevelMissingValue, Kind: "DecodingLeafMissingValue", Path: path,
				Message: "leaf at " + path + " has no value",
			})
		}
		parts := strings.Split(*leaf.Value, ",")
		out := reflect.MakeSlice(t, 0, len(parts))
		var errs []result.ValidationError
		for i, p := range parts {
			elemPath := path + "[" + strconv.Itoa(i) + "]"
			elemLeaf := node.NewLeaf(strings.TrimSpace(p))
			r := registry.DecodeNode(elemPath, elemLeaf, elemType)
			errs = append(errs, r.Errors...)
			if v, ok := r.Value(); ok {
				out = reflect.Append(out, reflect.ValueOf(v))
			}
		}
		return result.Of[any](anyPtr(out.Interface()), errs)
	}

	arr, ok := n.(*node.Array)
	if !ok {
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "DecodingExpectedArray", Path: path,
			Message: "expected an array at " + path,
		})
	}

	out := reflect.MakeSlice(t, 0, len(arr.Elements))
	var errs []result.ValidationError
	for i, el := range arr.Elements {
		elemPath := path + "[" + strconv.Itoa(i) + "]"
		if el == nil {
			errs = append(errs, result.ValidationError{
				Level: result.LevelWarn, Kind: "ArrayMissingIndex", Path: elemPath,
				Message: "missing array index at " + elemPath,
			})
			if registry.PolicyOf().TreatMissingArrayIndexAsError {
				errs[len(errs)-1].Level = result.LevelError
			}
			out = reflect.Append(out, reflect.Zero(elemType))
			continue
		}
		r := registry.DecodeNode(elemPath, el, elemType)
		errs = append(errs, r.Errors...)
		if v, ok := r.Value(); ok {
			out = reflect.Append(out, reflect.ValueOf(v))
		} else {
			out = reflect.Append(out, reflect.Zero(elemType))
		}
	}
	return result.Of[any](anyPtr(out.Interface()), errs)
}

// MapDecoder walks Map entries, decoding each value as the target map's
// value type.
type MapDecoder struct{}

func (MapDecoder) Name() string       { return "map" }
func (MapDecoder) Priority() Priority { return PriorityMedium }
func (MapDecoder) Matches(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func (MapDecoder) Decode(path string, n node.Node, t reflect.Type, registry *Registry) result.R[any] {
	m, ok := n.(*node.Map)
	if !ok {
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "DecodingExpectedMap", Path: path,
			Message: "expected a map at " + path,
		})
	}
	valueType := t.Elem()
	out := reflect.MakeMapWithSize(t, m.Len())
	var errs []result.ValidationError
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		entryPath := path + "." + k
		r := registry.DecodeNode(entryPath, v, valueType)
		errs = append(errs, r.Errors...)
		if dv, ok := r.Value(); ok {
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), reflect.ValueOf(dv))
		}
	}
	return result.Of[any](anyPtr(out.Interface()), errs)
}

// ObjectDecoder iterates the target struct type's declared fields, for each
// field computing path+"."+field_name, navigating and recursively decoding.
// Missing fields obey TreatMissingValuesAsErrors; null fields obey
// TreatNullValuesInClassAsErrors. Grounded on component.ValidateConfig's
// required-field walk, generalized with Go's native reflect package instead
// of a hand-maintained schema (Design Notes §9: Go has real reflection).
type ObjectDecoder struct{}

func (ObjectDecoder) Name() string       { return "object" }
func (ObjectDecoder) Priority() Priority { return PriorityLowest }
func (ObjectDecoder) Matches(t reflect.Type) bool { return t.Kind() == reflect.Struct }

func (ObjectDecoder) Decode(path string, n node.Node, t reflect.Type, registry *Registry) result.R[any] {
	out := reflect.New(t).Elem()
	var errs []result.ValidationError
	policy := registry.PolicyOf()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldConfigName(field)
		fieldPath := path + "." + name

		navR := registry.GetNextNode(path, name, n)
		if !navR.HasValue() {
			level := result.LevelMissingOptionalValue
			if policy.TreatMissingValuesAsErrors {
				level = result.LevelError
			}
			errs = append(errs, result.ValidationError{
				Level: level, Kind: "NoResultsFoundForNode", Path: fieldPath,
				Message: "missing field " + name + " at " + fieldPath,
			})
			continue
		}

		fieldNode := navR.MustValue()
		fieldR := registry.DecodeNode(fieldPath, fieldNode, field.Type)
		errs = append(errs, fieldR.Errors...)
		v, ok := fieldR.Value()
		if !ok {
			continue
		}
		rv := reflect.ValueOf(v)
		if isNilValue(rv) && policy.TreatNullValuesInClassAsErrors {
			errs = append(errs, result.ValidationError{
				Level: result.LevelError, Kind: "DecodingExpectedObject", Path: fieldPath,
				Message: "field " + name + " decoded to null",
			})
			continue
		}
		out.Field(i).Set(rv)
	}

	return result.Of[any](anyPtr(out.Interface()), errs)
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

func fieldConfigName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("config"); ok && tag != "" && tag != "-" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OptionalDecoder wraps pointer types: a missing value decodes to a nil
// pointer with a MISSING_OPTIONAL_VALUE entry, a present value delegates
// to the pointed-to type's decoder and wraps the result.
type OptionalDecoder struct{}

func (OptionalDecoder) Name() string       { return "optional" }
func (OptionalDecoder) Priority() Priority { return PriorityVeryHigh }
func (OptionalDecoder) Matches(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr
}

func (OptionalDecoder) Decode(path string, n node.Node, t reflect.Type, registry *Registry) result.R[any] {
	if n == nil {
		nilPtr := reflect.Zero(t).Interface()
		return result.WithValue[any](nilPtr, result.ValidationError{
			Level: result.LevelMissingOptionalValue, Kind: "NoResultsFoundForNode", Path: path,
			Message: "optional value absent at " + path,
		})
	}
	inner := registry.DecodeNode(path, n, t.Elem())
	v, ok := inner.Value()
	if !ok {
		nilPtr := reflect.Zero(t).Interface()
		return result.Of[any](anyPtr(nilPtr), inner.Errors)
	}
	ptr := reflect.New(t.Elem())
	ptr.Elem().Set(reflect.ValueOf(v))
	return result.Of[any](anyPtr(ptr.Interface()), inner.Errors)
}

func anyPtr(v any) *any { return &v }

