package token

import (
	"strings"
	"unicode"

	"github.com/ikalinin1/gestalt/result"
)

// Mapper transforms a path (or leaves it as-is) before tokenizing. sentence
// is the original, unmapped path, kept so error messages can reference what
// the caller actually typed.
type Mapper interface {
	Name() string
	Priority() int
	Map(path, sentence string) result.R[[]Token]
}

// StandardMapper lexes the path exactly as given.
type StandardMapper struct{}

func (StandardMapper) Name() string     { return "standard" }
func (StandardMapper) Priority() int    { return 100 }
func (StandardMapper) Map(path, sentence string) result.R[[]Token] {
	return Tokenize(path, sentence)
}

// SnakeCaseMapper transforms camelCase segments to snake_case before
// lexing, so "dbConfig.maxConnections" maps to the tokens of
// "db_config.max_connections". In a Registry it is tried after
// StandardMapper, which accepts every path this mapper accepts, so
// Registry.Map returns the unconverted tokens.
type SnakeCaseMapper struct{}

func (SnakeCaseMapper) Name() string  { return "snake_case" }
func (SnakeCaseMapper) Priority() int { return 50 }

func (SnakeCaseMapper) Map(path, sentence string) result.R[[]Token] {
	return Tokenize(toSnakeCase(path), sentence)
}

func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '.' && runes[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Registry tries mappers in descending priority order until one produces a
// result with a value; on total failure all mappers' errors are
// concatenated, mirroring the decoder registry's fallback-and-concatenate
// rule (C6).
type Registry struct {
	mappers []Mapper
}

// NewRegistry builds a registry seeded with the standard and snake_case
// mappers, matching the pair named explicitly in the path lexer design.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(StandardMapper{})
	r.Register(SnakeCaseMapper{})
	return r
}

// Register adds a mapper, keeping the list sorted by descending priority
// (stable, so equal-priority mappers keep insertion order).
func (r *Registry) Register(m Mapper) {
	r.mappers = append(r.mappers, m)
	for i := len(r.mappers) - 1; i > 0; i-- {
		if r.mappers[i].Priority() > r.mappers[i-1].Priority() {
			r.mappers[i], r.mappers[i-1] = r.mappers[i-1], r.mappers[i]
		} else {
			break
		}
	}
}

// Map tries each mapper in priority order, returning the first result that
// carries a value. If none succeed, every mapper's errors are concatenated
// into a single failing result.
func (r *Registry) Map(path string) result.R[[]Token] {
	var allErrs []result.ValidationError
	for _, m := range r.mappers {
		res := m.Map(path, path)
		if res.HasValue() {
			return res
		}
		allErrs = append(allErrs, res.Errors...)
	}
	return result.Invalid[[]Token](allErrs...)
}
