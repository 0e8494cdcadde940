// Package source defines the external-input contract (§6): a Source names
// and identifies a byte-stream or key/value origin, and a Loader turns a
// Source's raw content into a config tree fragment. The interface shape is
// cross-checked against EnvironmentConfigSource.java's
// hasStream/loadStream/hasList/loadList/format/name/id contract.
package source

import (
	"github.com/google/uuid"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

// KV is one flat key/value pair as produced by a list-backed source
// (environment variables, command-line flags, an in-memory map).
type KV struct {
	Key   string
	Value string
}

// Source is one origin of configuration data. A source exposes either a
// byte stream (for a format a Loader parses, e.g. JSON/YAML) or a flat list
// of key/value pairs (for already-flat origins like the environment) — not
// both are expected to be used at once, but both are queryable so a Loader
// can branch on whichever shape the source actually offers.
type Source interface {
	// HasStream reports whether LoadStream can be called.
	HasStream() bool
	// LoadStream returns the source's raw bytes.
	LoadStream() ([]byte, error)

	// HasList reports whether LoadList can be called.
	HasList() bool
	// LoadList returns the source's content as flat key/value pairs.
	LoadList() ([]KV, error)

	// Format names the content format (e.g. "json", "envVars") so the
	// Core can pick a matching Loader.
	Format() string
	// Name is a human-readable label for logging and error messages.
	Name() string
	// ID is a stable identity distinguishing this source instance from
	// another of the same kind, used as the nodemanager fragment key so
	// a reload of this source replaces only its own contribution.
	ID() string
}

// Loader turns one Source's raw content into a config tree fragment.
type Loader interface {
	// Name identifies the loader; matching against a Source's Format() goes
	// through Accepts.
	Name() string
	// Accepts reports whether this loader can parse the given format.
	Accepts(format string) bool
	// Load parses stream bytes into a tree fragment.
	Load(data []byte) result.R[node.Node]
	// LoadKV builds a tree fragment directly from flat key/value pairs,
	// splitting each key on "." the same way token.Tokenize does, so
	// environment-style sources don't need an intermediate byte format.
	LoadKV(pairs []KV) result.R[node.Node]
}

// NewID returns a fresh stable identity for a Source, mirroring
// EnvironmentConfigSource.java's UUID.randomUUID()-backed id().
func NewID() string {
	return uuid.New().String()
}
