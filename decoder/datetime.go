package decoder

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

// DateTimeDecoder decodes time.Time leaves, adapted from pkg/timestamp's
// dual-mode Parse (RFC3339 string or Unix seconds/millis integer),
// generalized to honor the configurable date/time format policy flags
// (dateDecoderFormat / localDateTimeFormat / localDateFormat) instead of the
// teacher's hardcoded RFC3339.
type DateTimeDecoder struct{}

func (DateTimeDecoder) Name() string       { return "datetime" }
func (DateTimeDecoder) Priority() Priority { return PriorityHigh }
func (DateTimeDecoder) Matches(t reflect.Type) bool { return t == reflect.TypeOf(time.Time{}) }

func (DateTimeDecoder) Decode(path string, n node.Node, _ reflect.Type, registry *Registry) result.R[any] {
	s, errp := leafValue(path, n)
	if errp != nil {
		return result.Invalid[any](*errp)
	}
	trimmed := strings.TrimSpace(s)

	if unix, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return result.Valid[any](fromUnixDualMode(unix))
	}

	formats := candidateFormats(registry.PolicyOf())
	for _, f := range formats {
		if t, err := time.Parse(f, trimmed); err == nil {
			return result.Valid[any](t)
		}
	}

	return result.Invalid[any](result.ValidationError{
		Level: result.LevelError, Kind: "DecodingNumberParsing", Path: path,
		Message: "could not parse " + s + " as a date/time",
	})
}

// fromUnixDualMode mirrors pkg/timestamp.Parse's int64 heuristic: 0 is the
// zero time, values whose magnitude exceeds 1e12 are treated as
// milliseconds, otherwise seconds.
func fromUnixDualMode(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	if v > 1e12 || v < -1e12 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

func candidateFormats(p Policy) []string {
	var formats []string
	for _, f := range []string{p.DateDecoderFormat, p.LocalDateTimeFormat, p.LocalDateFormat} {
		if f != "" {
			formats = append(formats, f)
		}
	}
	formats = append(formats, time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02")
	return formats
}
