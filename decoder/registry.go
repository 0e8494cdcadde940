// Package decoder implements the decoder registry (C6) and the standard
// leaf/composite decoders (C7). Decoders compose exclusively through
// Registry.DecodeNode — never by calling another decoder directly — so
// priority ordering applies recursively, exactly as required by §4.7.
package decoder

import (
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/token"
)

// Priority controls decoder selection order; higher wins. Mirrors the five
// discrete levels named in the decoder registry design.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityVeryHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "LOWEST"
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	case PriorityVeryHigh:
		return "VERY_HIGH"
	default:
		return "UNKNOWN"
	}
}

// Decoder decodes a config node into a value of some Go type. Because Go
// interfaces cannot carry generic methods, decoders operate on reflect.Type
// and return result.R[any]; the generic Decode[T] entry point in decode.go
// narrows the result back to a concrete T for callers.
type Decoder interface {
	Name() string
	Priority() Priority
	Matches(t reflect.Type) bool
	Decode(path string, n node.Node, t reflect.Type, registry *Registry) result.R[any]
}

type registration struct {
	decoder Decoder
	seq     int
}

// Registry holds decoders and path mappers and dispatches decode_node calls
// by priority, mirroring component.Registry's thread-safe register-with-
// dedupe pattern from the teacher repo.
type Registry struct {
	mu       sync.RWMutex
	decoders []registration
	mappers  *token.Registry
	logger   *slog.Logger
	nextSeq  int

	policy Policy
}

// Policy carries the configuration options enumerated in §6 that affect
// decode behavior.
type Policy struct {
	TreatWarningsAsErrors           bool
	TreatMissingArrayIndexAsError   bool
	TreatMissingValuesAsErrors      bool
	TreatNullValuesInClassAsErrors  bool
	DateDecoderFormat               string
	LocalDateTimeFormat             string
	LocalDateFormat                 string
}

// DefaultPolicy matches the relaxed-mode defaults implied by §4.8.
func DefaultPolicy() Policy {
	return Policy{}
}

// NewRegistry builds an empty registry with the standard path mapper set; a
// nil logger falls back to slog.Default(). Callers typically get one back from gestalt.Builder
// instead of constructing it directly.
func NewRegistry(logger *slog.Logger, policy Policy) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{mappers: token.NewRegistry(), logger: logger, policy: policy}
}

// Register adds a decoder. Duplicate (name, priority) pairs are dropped and
// logged at WARN, mirroring set_decoders' dedupe rule.
func (r *Registry) Register(d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.decoders {
		if reg.decoder.Name() == d.Name() && reg.decoder.Priority() == d.Priority() {
			r.logger.Warn("decoder.registry: duplicate decoder ignored", "name", d.Name(), "priority", d.Priority().String())
			return
		}
	}
	r.decoders = append(r.decoders, registration{decoder: d, seq: r.nextSeq})
	r.nextSeq++
}

// decodersFor returns decoders matching t, sorted by descending priority
// with ties broken by insertion order (first-added wins).
func (r *Registry) decodersFor(t reflect.Type) []Decoder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []registration
	for _, reg := range r.decoders {
		if reg.decoder.Matches(t) {
			matches = append(matches, reg)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].decoder.Priority() != matches[j].decoder.Priority() {
			return matches[i].decoder.Priority() > matches[j].decoder.Priority()
		}
		return matches[i].seq < matches[j].seq
	})

	out := make([]Decoder, len(matches))
	for i, m := range matches {
		out[i] = m.decoder
	}
	return out
}

// DecodeNode picks the highest-priority matching decoder and invokes it. If
// more than one decoder matches at the top priority, a single WARN is
// logged and the first (by insertion order) is used. No match is an ERROR
// NoDecoderFor.
func (r *Registry) DecodeNode(path string, n node.Node, t reflect.Type) result.R[any] {
	matches := r.decodersFor(t)
	if len(matches) == 0 {
		return result.Invalid[any](result.ValidationError{
			Level: result.LevelError, Kind: "NoDecoderFor", Path: path,
			Message: "no decoder registered for type " + t.String(),
		})
	}
	if len(matches) > 1 && matches[0].Priority() == matches[1].Priority() {
		r.logger.Warn("decoder.registry: multiple decoders match at same priority, using first-added",
			"type", t.String(), "decoder", matches[0].Name(), "priority", matches[0].Priority().String())
	}
	return matches[0].Decode(path, n, t, r)
}

// GetNextNode tokenizes segment via the path mapper registry (trying each
// mapper in priority order, concatenating errors on total failure) then
// navigates from n.
func (r *Registry) GetNextNode(path, segment string, n node.Node) result.R[node.Node] {
	toksR := r.mappers.Map(segment)
	if !toksR.HasValue() {
		return result.Invalid[node.Node](toksR.Errors...)
	}
	return node.Navigate(n, toksR.MustValue())
}

// Mappers exposes the underlying path mapper registry so callers can
// register additional mappers (e.g. via gestalt.Builder.WithPathMapper).
func (r *Registry) Mappers() *token.Registry { return r.mappers }

// PolicyOf returns the registry's configured Policy.
func (r *Registry) PolicyOf() Policy { return r.policy }
