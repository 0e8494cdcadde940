package decoder

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

// URLDecoder decodes *url.URL leaves.
type URLDecoder struct{}

func (URLDecoder) Name() string       { return "url" }
func (URLDecoder) Priority() Priority { return PriorityHigh }
func (URLDecoder) Matches(t reflect.Type) bool { return t == reflect.TypeOf(&url.URL{}) }

func (URLDecoder) Decode(path string, n node.Node, _ reflect.Type, _ *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "DecodingNumberParsing", Path: path,
			Message: "could not parse " + s + " as a URL",
		})
	}
	return result.Valid[any](u)
}
