package source

import (
	"os"
	"strings"
)

// EnvVars is the format/name EnvironmentSource reports, mirroring
// EnvironmentConfigSource.ENV_VARS.
const EnvVars = "envVars"

// EnvironmentSource exposes the process environment as a list-backed
// Source, grounded 1:1 on EnvironmentConfigSource.java: it never supports
// a byte stream, always supports a list, and its format/name are both the
// constant "envVars".
type EnvironmentSource struct {
	id     string
	prefix string
}

// NewEnvironmentSource builds an EnvironmentSource. If prefix is non-empty,
// only variables starting with prefix are returned, with the prefix
// stripped and the remainder lowercased and "_" turned into "." — the
// generalized form of config.Loader.applyEnvOverrides's
// "STREAMKIT_NATS_USERNAME" -> cfg.NATS.Username convention, applied
// uniformly instead of one env var per hand-written field.
func NewEnvironmentSource(prefix string) *EnvironmentSource {
	return &EnvironmentSource{id: NewID(), prefix: prefix}
}

func (EnvironmentSource) HasStream() bool             { return false }
func (EnvironmentSource) LoadStream() ([]byte, error) { return nil, os.ErrInvalid }
func (EnvironmentSource) HasList() bool               { return true }

func (s *EnvironmentSource) LoadList() ([]KV, error) {
	env := os.Environ()
	pairs := make([]KV, 0, len(env))
	for _, entry := range env {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if s.prefix != "" {
			if !strings.HasPrefix(k, s.prefix) {
				continue
			}
			k = strings.TrimPrefix(k, s.prefix)
			k = strings.ToLower(strings.TrimPrefix(k, "_"))
			k = strings.ReplaceAll(k, "_", ".")
		}
		pairs = append(pairs, KV{Key: k, Value: v})
	}
	return pairs, nil
}

func (EnvironmentSource) Format() string { return EnvVars }
func (EnvironmentSource) Name() string   { return EnvVars }
func (s *EnvironmentSource) ID() string  { return s.id }
