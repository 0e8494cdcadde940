package decoder

import (
	"fmt"
	"reflect"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

// Decode is the generic entry point most callers use: it resolves T's
// reflect.Type, delegates to Registry.DecodeNode, and narrows the any
// result back to a concrete R[T].
func Decode[T any](registry *Registry, path string, n node.Node) result.R[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		// zero is a nil interface/pointer; reflect.TypeOf can't recover the
		// static type in that case, so fall back to the typed-pointer trick.
		t = reflect.TypeOf(&zero).Elem()
	}
	any_ := registry.DecodeNode(path, n, t)
	return narrow[T](any_)
}

func narrow[T any](r result.R[any]) result.R[T] {
	v, ok := r.Value()
	if !ok {
		return result.Invalid[T](r.Errors...)
	}
	typed, ok := v.(T)
	if !ok {
		return result.Invalid[T](append(r.Errors, result.ValidationError{
			Level: result.LevelError, Kind: "DecodingExpectedObject",
			Message: fmt.Sprintf("decoder produced %T, expected %T", v, typed),
		})...)
	}
	return result.Of[T](&typed, r.Errors)
}
