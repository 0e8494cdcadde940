package gestalt

import (
	"log/slog"
	"reflect"

	"github.com/ikalinin1/gestalt/decoder"
	"github.com/ikalinin1/gestalt/metrics"
	"github.com/ikalinin1/gestalt/nodemanager"
	"github.com/ikalinin1/gestalt/postprocess"
	"github.com/ikalinin1/gestalt/source"
	"github.com/ikalinin1/gestalt/token"
)

// ModuleConfig is implemented by a collaborator's own configuration type so
// it can be registered once on the Builder and looked up by type later,
// mirroring GestaltBuilder.addModuleConfig/registerModuleConfig's
// Class->GestaltModuleConfig map without needing Go's more limited
// reflection-by-type-assertion in place of Java's Class lookup.
type ModuleConfig interface {
	Name() string
}

// TemporarySecretModuleConfig carries the secret checker and access limit
// the temporary-secret processor should use, registrable via
// WithModuleConfig instead of (or in addition to) WithSecretChecker.
type TemporarySecretModuleConfig struct {
	Checker     postprocess.SecretChecker
	AccessLimit int
}

func (TemporarySecretModuleConfig) Name() string { return "temporary-secret" }

// Builder assembles a Core via functional options, grounded on
// config.NewLoader()/config.NewConfigManager()'s explicit, non-reflective
// construction style — generalized here into the Go idiom of composable
// With* options instead of one constructor per combination of collaborators.
type Builder struct {
	sources    []source.Source
	loaders    []source.Loader
	decoders   []decoder.Decoder
	mappers    []token.Mapper
	processors []postprocess.Processor
	policy     decoder.Policy
	logger     *slog.Logger
	metrics    *metrics.Registry
	secrets    postprocess.SecretChecker
	modules    map[reflect.Type]ModuleConfig
	cacheIt    bool
}

// WithModuleConfig registers a collaborator-specific configuration value by
// its concrete type, replacing any previously registered value of the same
// type. Build looks up TemporarySecretModuleConfig this way as an
// alternative to WithSecretChecker.
func WithModuleConfig(cfg ModuleConfig) Option {
	return func(b *Builder) {
		if b.modules == nil {
			b.modules = make(map[reflect.Type]ModuleConfig)
		}
		b.modules[reflect.TypeOf(cfg)] = cfg
	}
}

// moduleConfig looks up a registered ModuleConfig by its concrete type T.
func moduleConfig[T ModuleConfig](b *Builder) (T, bool) {
	var zero T
	v, ok := b.modules[reflect.TypeOf(zero)]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Option configures a Builder.
type Option func(*Builder)

// WithSource adds a configuration source. Adding a source whose ID matches
// one already registered replaces it in place (last-wins) rather than
// merging both contributions, mirroring component.Registry's
// duplicate-name handling generalized from "reject" to "replace."
func WithSource(s source.Source) Option {
	return func(b *Builder) {
		for i, existing := range b.sources {
			if existing.ID() == s.ID() {
				logger := b.logger
				if logger == nil {
					logger = slog.Default()
				}
				logger.Warn("gestalt.Builder: duplicate source ID, replacing", "id", s.ID(), "name", s.Name())
				b.sources[i] = s
				return
			}
		}
		b.sources = append(b.sources, s)
	}
}

// WithLoader adds a format loader.
func WithLoader(l source.Loader) Option {
	return func(b *Builder) { b.loaders = append(b.loaders, l) }
}

// WithDecoder adds a decoder in addition to the built-in leaf/composite set.
func WithDecoder(d decoder.Decoder) Option {
	return func(b *Builder) { b.decoders = append(b.decoders, d) }
}

// WithPathMapper adds a path mapper in addition to Standard/SnakeCase.
func WithPathMapper(m token.Mapper) Option {
	return func(b *Builder) { b.mappers = append(b.mappers, m) }
}

// WithPostProcessor adds a post-processor in addition to Substitution.
func WithPostProcessor(p postprocess.Processor) Option {
	return func(b *Builder) { b.processors = append(b.processors, p) }
}

// WithPolicy sets the decode policy (§6).
func WithPolicy(p decoder.Policy) Option {
	return func(b *Builder) { b.policy = p }
}

// WithLogger sets the structured logger used throughout the pipeline.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithMetrics enables Prometheus metrics collection via the given registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(b *Builder) { b.metrics = r }
}

// WithSecretChecker overrides the default pattern-based secret checker used
// by the temporary-secret post-processor.
func WithSecretChecker(checker postprocess.SecretChecker) Option {
	return func(b *Builder) { b.secrets = checker }
}

// WithCache wraps the built Core in a GestaltCache.
func WithCache() Option {
	return func(b *Builder) { b.cacheIt = true }
}

// Build assembles a Core (optionally wrapped in a GestaltCache) from the
// accumulated options, wiring the standard leaf/composite decoders, the
// substitution engine, and the temporary-secret processor by default.
func Build(opts ...Option) (Gestalt, error) {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.secrets == nil {
		if cfg, ok := moduleConfig[TemporarySecretModuleConfig](b); ok && cfg.Checker != nil {
			b.secrets = cfg.Checker
		} else if ok {
			b.secrets = postprocess.NewPatternSecretChecker(cfg.AccessLimit)
		} else {
			b.secrets = postprocess.NewPatternSecretChecker(1)
		}
	}

	registry := decoder.NewRegistry(b.logger, b.policy)
	for _, m := range b.mappers {
		registry.Mappers().Register(m)
	}
	registerBuiltinDecoders(registry)
	for _, d := range b.decoders {
		registry.Register(d)
	}

	// Substitution resolves node references against the tree Chain.Run is
	// currently building (RootAware.SetRoot), not a snapshot of the
	// manager's last published generation.
	sub := postprocess.NewSubstitution(registry.Mappers(), b.logger)
	if b.metrics != nil {
		sub.OnDepth = b.metrics.CoreMetrics().RecordSubstitutionDepth
	}
	chain := postprocess.NewChain(b.logger, sub, postprocess.TemporarySecretProcessor{Checker: b.secrets})
	for _, p := range b.processors {
		chain.Add(p)
	}
	manager := nodemanager.New(chain, b.logger)
	if b.metrics != nil {
		manager.SetMetrics(b.metrics)
	}

	core := New(b.sources, b.loaders, manager, registry, b.logger)
	if b.metrics != nil {
		core.SetMetrics(b.metrics)
	}

	var g Gestalt = core
	if b.cacheIt {
		cached := NewGestaltCache(core)
		if b.metrics != nil {
			cached.SetMetrics(b.metrics)
		}
		core.AddReloadListener(cached)
		g = cached
	}
	return g, nil
}

func registerBuiltinDecoders(r *decoder.Registry) {
	r.Register(decoder.IntDecoder{})
	r.Register(decoder.FloatDecoder{})
	r.Register(decoder.BoolDecoder{})
	r.Register(decoder.StringDecoder{})
	r.Register(decoder.CharDecoder{})
	r.Register(decoder.UUIDDecoder{})
	r.Register(decoder.EnumDecoder{})
	r.Register(decoder.DurationDecoder{})
	r.Register(decoder.DateTimeDecoder{})
	r.Register(decoder.URLDecoder{})
	r.Register(decoder.ArrayDecoder{})
	r.Register(decoder.MapDecoder{})
	r.Register(decoder.ObjectDecoder{})
	r.Register(decoder.OptionalDecoder{})
}
