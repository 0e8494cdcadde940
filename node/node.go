// Package node implements the config node tree (C2): a tagged union of
// leaf/array/map nodes with navigation and merge operations. Tree nodes are
// immutable once they belong to a frozen generation — Merge and Clone always
// return new trees rather than mutating in place.
package node

import (
	"sort"
	"strings"

	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/token"
)

// MetaValue is one piece of metadata attached to a leaf (e.g. "isSecret" ->
// "true"). Rollup copies metadata from leaves to their containing map/array
// nodes, except for kinds marked non-rolling.
type MetaValue struct {
	Kind  string
	Value string
}

// nonRollingMeta lists metadata kinds that must not propagate upward from a
// leaf to its containers (isSecret: a container holding one secret leaf
// among many plain ones is not itself secret).
var nonRollingMeta = map[string]bool{
	"isSecret": true,
}

// Node is the tagged union; callers switch on Variant() and type-assert to
// the concrete type.
//
// Post-processors outside this package (e.g. the temporary-secret decorator)
// may install their own Node implementations for VariantLeaf — Clone and
// Navigate only type-switch on the three concrete types below for the
// structural recursion, and treat anything else as an opaque leaf-shaped
// value they pass through unchanged.
type Node interface {
	Variant() Variant
	Metadata() map[string][]MetaValue
}

// LeafSource is implemented by any Node presenting a dynamically resolved
// leaf value — the access-counted temporary secret decorator, most notably
// — so decoders and the substitution engine can read through it without
// requiring a concrete *Leaf.
type LeafSource interface {
	Node
	ReadLeafValue() (string, bool)
}

// Variant identifies which concrete shape a Node has.
type Variant int

const (
	VariantLeaf Variant = iota
	VariantArray
	VariantMap
)

func (v Variant) String() string {
	switch v {
	case VariantLeaf:
		return "Leaf"
	case VariantArray:
		return "Array"
	case VariantMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// Leaf holds an opaque string value (decoding always happens downstream) and
// any metadata attached by post-processors.
type Leaf struct {
	Value *string
	Meta  map[string][]MetaValue
}

// NewLeaf builds a Leaf with a present value.
func NewLeaf(v string) *Leaf { return &Leaf{Value: &v} }

// NewEmptyLeaf builds a Leaf with no value (a placeholder, e.g. a dropped
// temporary secret).
func NewEmptyLeaf() *Leaf { return &Leaf{} }

func (l *Leaf) Variant() Variant               { return VariantLeaf }
func (l *Leaf) Metadata() map[string][]MetaValue { return l.Meta }


// Array holds sparse elements; index i lives at slot i, size is max index+1.
// Absent slots are an explicit nil entry.
type Array struct {
	Elements []Node
	Meta     map[string][]MetaValue
}

// NewArray builds an Array from a slice of elements (nil entries allowed).
func NewArray(elements ...Node) *Array {
	return &Array{Elements: elements}
}

func (a *Array) Variant() Variant                 { return VariantArray }
func (a *Array) Metadata() map[string][]MetaValue { return a.Meta }


// entry is one key/value pair in a Map, storing both the original display
// key and the lowercased canonical key used for equality (Invariant 5).
type entry struct {
	display string
	value   Node
}

// Map holds entries keyed case-insensitively. Iteration order (Keys) follows
// insertion order of the display keys.
type Map struct {
	order   []string // canonical keys, in insertion order
	entries map[string]entry
	Meta    map[string][]MetaValue
}

// NewMap builds an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[string]entry)}
}

func (m *Map) Variant() Variant                 { return VariantMap }
func (m *Map) Metadata() map[string][]MetaValue { return m.Meta }

// Set inserts or overwrites a key. The display key is what Keys()/errors
// show; equality and lookup both use its lowercased form.
func (m *Map) Set(displayKey string, v Node) {
	canonical := strings.ToLower(displayKey)
	if m.entries == nil {
		m.entries = make(map[string]entry)
	}
	if _, exists := m.entries[canonical]; !exists {
		m.order = append(m.order, canonical)
	}
	m.entries[canonical] = entry{display: displayKey, value: v}
}

// Get looks up a key case-insensitively, returning the value and whether it
// was present.
func (m *Map) Get(key string) (Node, bool) {
	if m.entries == nil {
		return nil, false
	}
	e, ok := m.entries[strings.ToLower(key)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Keys returns the display keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.order))
	for _, c := range m.order {
		keys = append(keys, m.entries[c].display)
	}
	return keys
}

// Len reports the number of entries.
func (m *Map) Len() int { return len(m.order) }

func cloneMeta(m map[string][]MetaValue) map[string][]MetaValue {
	if m == nil {
		return nil
	}
	out := make(map[string][]MetaValue, len(m))
	for k, v := range m {
		cp := make([]MetaValue, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Clone returns a deep, independent copy of the tree rooted at n. Unlike the
// teacher's JSON-roundtrip Clone, this walks the native tree directly —
// there is no lossy string<->node conversion along the way. Node
// implementations outside this package (the temporary-secret decorator) are
// not deep-copied: their mutable state (the read budget) is intentionally
// shared across clones of the same generation, so they're returned as-is.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *Leaf:
		out := &Leaf{Meta: cloneMeta(v.Meta)}
		if v.Value != nil {
			val := *v.Value
			out.Value = &val
		}
		return out
	case *Array:
		out := &Array{Elements: make([]Node, len(v.Elements)), Meta: cloneMeta(v.Meta)}
		for i, e := range v.Elements {
			out.Elements[i] = Clone(e)
		}
		return out
	case *Map:
		out := NewMap()
		out.Meta = cloneMeta(v.Meta)
		for _, k := range v.Keys() {
			e, _ := v.Get(k)
			out.Set(k, Clone(e))
		}
		return out
	default:
		return n
	}
}

// Navigate walks tokens from root, returning MISSING_VALUE when a key or
// index is absent and DecodingExpected{Array,Map} (TYPE_MISMATCH) when the
// variant does not match the token kind.
func Navigate(root Node, tokens []token.Token) result.R[Node] {
	current := root
	for i, t := range tokens {
		if current == nil {
			return missingValue(token.Render(tokens[:i+1]))
		}
		switch t.Kind {
		case token.KindObject:
			m, ok := current.(*Map)
			if !ok {
				return typeMismatch(token.Render(tokens[:i]), "Map", current.Variant())
			}
			v, found := m.Get(t.Name)
			if !found {
				return missingValue(token.Render(tokens[:i+1]))
			}
			current = v
		case token.KindArray:
			a, ok := current.(*Array)
			if !ok {
				return typeMismatch(token.Render(tokens[:i]), "Array", current.Variant())
			}
			if t.Index < 0 || t.Index >= len(a.Elements) || a.Elements[t.Index] == nil {
				return missingValue(token.Render(tokens[:i+1]))
			}
			current = a.Elements[t.Index]
		}
	}
	if current == nil {
		return missingValue(token.Render(tokens))
	}
	return result.Valid(current)
}

func missingValue(path string) result.R[Node] {
	return result.Invalid[Node](result.ValidationError{
		Level: result.LevelMissingValue, Kind: "NoResultsFoundForNode", Path: path,
		Message: "no value found at path " + path,
	})
}

func typeMismatch(path, expected string, got Variant) result.R[Node] {
	kind := "DecodingExpected" + expected
	return result.Invalid[Node](result.ValidationError{
		Level: result.LevelError, Kind: kind, Path: path,
		Message: "expected " + expected + " but found " + got.String() + " at " + path,
	})
}

// Merge recursively combines a and b; b wins on scalar conflict, maps union
// keys, arrays merge by index (b's present index overrides; b's absent slot
// preserves a's). Merging nodes of different variants is an ERROR, except
// when one side is nil (an absent fragment contributes nothing).
func Merge(a, b Node) result.R[Node] {
	if a == nil {
		return result.Valid(b)
	}
	if b == nil {
		return result.Valid(a)
	}
	if a.Variant() != b.Variant() {
		return result.Invalid[Node](result.ValidationError{
			Level: result.LevelError, Kind: "MergeConflict",
			Message: "cannot merge " + a.Variant().String() + " with " + b.Variant().String(),
		})
	}

	switch av := a.(type) {
	case *Leaf:
		bv := b.(*Leaf)
		merged := &Leaf{Meta: mergeMeta(av.Meta, bv.Meta)}
		if bv.Value != nil {
			v := *bv.Value
			merged.Value = &v
		} else if av.Value != nil {
			v := *av.Value
			merged.Value = &v
		}
		return result.Valid[Node](merged)

	case *Array:
		bv := b.(*Array)
		size := len(av.Elements)
		if len(bv.Elements) > size {
			size = len(bv.Elements)
		}
		merged := &Array{Elements: make([]Node, size), Meta: mergeMeta(av.Meta, bv.Meta)}
		var errs []result.ValidationError
		for i := 0; i < size; i++ {
			var ae, be Node
			if i < len(av.Elements) {
				ae = av.Elements[i]
			}
			if i < len(bv.Elements) {
				be = bv.Elements[i]
			}
			if be != nil {
				if ae != nil {
					r := Merge(ae, be)
					errs = append(errs, r.Errors...)
					if v, ok := r.Value(); ok {
						merged.Elements[i] = v
					}
				} else {
					merged.Elements[i] = be
				}
			} else {
				merged.Elements[i] = ae
			}
		}
		return result.Of[Node](nodePtr(merged), errs)

	case *Map:
		bv := b.(*Map)
		merged := NewMap()
		merged.Meta = mergeMeta(av.Meta, bv.Meta)
		var errs []result.ValidationError
		keys := av.Keys()
		seen := make(map[string]bool)
		for _, k := range keys {
			canon := strings.ToLower(k)
			seen[canon] = true
			av1, _ := av.Get(k)
			if bv1, ok := bv.Get(k); ok {
				r := Merge(av1, bv1)
				errs = append(errs, r.Errors...)
				if v, ok := r.Value(); ok {
					merged.Set(k, v)
				}
			} else {
				merged.Set(k, av1)
			}
		}
		for _, k := range bv.Keys() {
			if seen[strings.ToLower(k)] {
				continue
			}
			v, _ := bv.Get(k)
			merged.Set(k, v)
		}
		return result.Of[Node](nodePtr(merged), errs)
	}
	return result.Invalid[Node](result.ValidationError{Level: result.LevelError, Kind: "MergeConflict", Message: "unknown node variant"})
}

func nodePtr(n Node) *Node { return &n }

func mergeMeta(a, b map[string][]MetaValue) map[string][]MetaValue {
	if a == nil && b == nil {
		return nil
	}
	out := make(map[string][]MetaValue)
	for k, v := range a {
		out[k] = append(out[k], v...)
	}
	for k, v := range b {
		out[k] = append(out[k], v...)
	}
	return out
}

// Rollup propagates leaf metadata up to the containing map/array nodes,
// except for kinds marked non-rolling (Invariant 4). Call after Merge, once
// per generation build.
func Rollup(n Node) map[string][]MetaValue {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *Leaf:
		return filterRolling(v.Meta)
	case *Array:
		collected := map[string][]MetaValue{}
		for _, e := range v.Elements {
			mergeInto(collected, Rollup(e))
		}
		mergeInto(collected, filterRolling(v.Meta))
		v.Meta = collected
		return collected
	case *Map:
		collected := map[string][]MetaValue{}
		for _, k := range v.Keys() {
			e, _ := v.Get(k)
			mergeInto(collected, Rollup(e))
		}
		mergeInto(collected, filterRolling(v.Meta))
		v.Meta = collected
		return collected
	}
	return nil
}

func filterRolling(m map[string][]MetaValue) map[string][]MetaValue {
	if len(m) == 0 {
		return nil
	}
	out := map[string][]MetaValue{}
	for k, v := range m {
		if nonRollingMeta[k] {
			continue
		}
		out[k] = append(out[k], v...)
	}
	return out
}

func mergeInto(dst, src map[string][]MetaValue) {
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
}

// SortedKeys is a small helper that returns m's keys in a deterministic
// order, independent of Map's insertion order.
func SortedKeys(m *Map) []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}
