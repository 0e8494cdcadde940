package decoder

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

// leafValue extracts the opaque string from a Leaf node, mirroring
// config/helpers.go's safe-coercion style but generalized from "map value
// coercion" to "leaf string parsing." Any non-leaf or empty-value node
// produces the appropriate taxonomy error instead of a panic.
func leafValue(path string, n node.Node) (string, *result.ValidationError) {
	if src, ok := n.(node.LeafSource); ok {
		v, ok := src.ReadLeafValue()
		if !ok {
			return "", &result.ValidationError{
				Level: result.LevelMissingValue, Kind: "DecodingLeafMissingValue", Path: path,
				Message: "leaf at " + path + " has no value",
			}
		}
		return v, nil
	}

	leaf, ok := n.(*node.Leaf)
	if !ok {
		return "", &result.ValidationError{
			Level: result.LevelError, Kind: "DecodingExpectedLeaf", Path: path,
			Message: "expected a leaf value at " + path,
		}
	}
	if leaf.Value == nil {
		return "", &result.ValidationError{
			Level: result.LevelMissingValue, Kind: "DecodingLeafMissingValue", Path: path,
			Message: "leaf at " + path + " has no value",
		}
	}
	return *leaf.Value, nil
}

// IntDecoder decodes signed integer leaf values, with overflow detection
// driven by the target type's bit size.
type IntDecoder struct{}

func (IntDecoder) Name() string       { return "int" }
func (IntDecoder) Priority() Priority { return PriorityMedium }
func (IntDecoder) Matches(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func (IntDecoder) Decode(path string, n node.Node, t reflect.Type, _ *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	bits := t.Bits()
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
	if err != nil {
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "DecodingNumberParsing", Path: path,
			Message: "could not parse " + s + " as " + t.String(),
		})
	}
	v := reflect.New(t).Elem()
	v.SetInt(i)
	return result.Valid[any](v.Interface())
}

// FloatDecoder decodes floating-point leaf values with range checking.
type FloatDecoder struct{}

func (FloatDecoder) Name() string       { return "float" }
func (FloatDecoder) Priority() Priority { return PriorityMedium }
func (FloatDecoder) Matches(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

func (FloatDecoder) Decode(path string, n node.Node, t reflect.Type, _ *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	bits := t.Bits()
	f, err := strconv.ParseFloat(strings.TrimSpace(s), bits)
	if err != nil {
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "DecodingNumberFormatException", Path: path,
			Message: "could not parse " + s + " as " + t.String(),
		})
	}
	v := reflect.New(t).Elem()
	v.SetFloat(f)
	return result.Valid[any](v.Interface())
}

// BoolDecoder accepts case-insensitive true/false/yes/no/1/0.
type BoolDecoder struct{}

func (BoolDecoder) Name() string       { return "bool" }
func (BoolDecoder) Priority() Priority { return PriorityMedium }
func (BoolDecoder) Matches(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func (BoolDecoder) Decode(path string, n node.Node, t reflect.Type, _ *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return result.Valid[any](true)
	case "false", "no", "0":
		return result.Valid[any](false)
	default:
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "DecodingNumberParsing", Path: path,
			Message: "could not parse " + s + " as bool",
		})
	}
}

// StringDecoder passes the leaf value through unchanged.
type StringDecoder struct{}

func (StringDecoder) Name() string       { return "string" }
func (StringDecoder) Priority() Priority { return PriorityLow }
func (StringDecoder) Matches(t reflect.Type) bool { return t.Kind() == reflect.String }

func (StringDecoder) Decode(path string, n node.Node, t reflect.Type, _ *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	return result.Valid[any](s)
}

// Char is a distinct type from rune/int32 so CharDecoder can target it. Its
// underlying kind is int32, so IntDecoder matches it too; CharDecoder is
// chosen because its priority (VERY_HIGH) is higher.
type Char rune

// CharDecoder requires the leaf value to be exactly one code point; a value
// that's too long emits WARN and keeps the first rune, too short (empty)
// emits ERROR with no result (S1, S2).
type CharDecoder struct{}

func (CharDecoder) Name() string       { return "char" }
func (CharDecoder) Priority() Priority { return PriorityVeryHigh }
func (CharDecoder) Matches(t reflect.Type) bool { return t == reflect.TypeOf(Char(0)) }

func (CharDecoder) Decode(path string, n node.Node, t reflect.Type, _ *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	runes := []rune(s)
	switch len(runes) {
	case 0:
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "DecodingCharWrongSize", Path: path,
			Message: "received the wrong size for a char, expected 1 got 0",
		})
	case 1:
		return result.Valid[any](Char(runes[0]))
	default:
		return result.WithValue[any](Char(runes[0]), result.ValidationError{
			Level: result.LevelWarn, Kind: "DecodingCharWrongSize", Path: path,
			Message: "received the wrong size for a char",
		})
	}
}

// UUIDDecoder parses RFC 4122 UUID strings.
type UUIDDecoder struct{}

func (UUIDDecoder) Name() string       { return "uuid" }
func (UUIDDecoder) Priority() Priority { return PriorityHigh }
func (UUIDDecoder) Matches(t reflect.Type) bool { return t == reflect.TypeOf(uuid.UUID{}) }

func (UUIDDecoder) Decode(path string, n node.Node, t reflect.Type, _ *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "DecodingNumberParsing", Path: path,
			Message: "could not parse " + s + " as a UUID",
		})
	}
	return result.Valid[any](id)
}

// Enum is implemented by generated or user-written enum types so EnumDecoder
// can do a case-insensitive name match without reflection-based discovery
// of valid members (the host still has to supply the member list).
type Enum interface {
	EnumValues() []string
	FromName(name string) (any, bool)
}

// EnumDecoder matches any type implementing Enum and does a case-insensitive
// name lookup against FromName.
type EnumDecoder struct{}

func (EnumDecoder) Name() string       { return "enum" }
func (EnumDecoder) Priority() Priority { return PriorityHigh }

func (EnumDecoder) Matches(t reflect.Type) bool {
	return t.Implements(reflect.TypeOf((*Enum)(nil)).Elem()) ||
		reflect.PointerTo(t).Implements(reflect.TypeOf((*Enum)(nil)).Elem())
}

func (EnumDecoder) Decode(path string, n node.Node, t reflect.Type, _ *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	// reflect.New(t) is always *T, whose method set is a superset of T's —
	// it implements Enum whether the host defined the methods on T or on
	// *T, so this works regardless of which receiver Matches accepted.
	zero, ok := reflect.New(t).Interface().(Enum)
	if !ok {
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "NoDecoderFor", Path: path,
			Message: t.String() + " does not implement Enum",
		})
	}
	for _, name := range zero.EnumValues() {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			if v, ok := zero.FromName(name); ok {
				return result.Valid[any](v)
			}
		}
	}
	return result.Invalid[any](result.ValidationError{
		Level: result.LevelError, Kind: "DecodingNumberParsing", Path: path,
		Message: "no enum value named " + s,
	})
}
