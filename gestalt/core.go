// Package gestalt is the root orchestration package (C8): Core wires
// sources, loaders, the node manager, the decoder registry, and the
// post-processor chain together behind LoadConfigs/GetConfig/
// GetConfigOptional, grounded on config.Manager.Start's first-boot
// orchestration shape, generalized from "one NATS-backed Config struct" to
// "N heterogeneous sources merged into one tree."
package gestalt

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/ikalinin1/gestalt/decoder"
	"github.com/ikalinin1/gestalt/errors"
	"github.com/ikalinin1/gestalt/metrics"
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/nodemanager"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/source"
)

// Gestalt is the public surface gestalt.Build returns: LoadConfigs plus
// everything GetConfig/GetConfigOptional/OnChange need, satisfied by both
// *Core directly and *GestaltCache's decorator. Go cannot put a generic
// method on an interface, so GetConfig[T]/GetConfigOptional[T] stay
// package-level functions that call the unexported decodeAny through this
// interface instead.
type Gestalt interface {
	LoadConfigs() error
	Navigate(path string) result.R[node.Node]
	AddReloadListener(l nodemanager.CoreReloadListener)
	Manager() *nodemanager.Manager

	decodeAny(path string, t reflect.Type) (any, []result.ValidationError, error)
}

// Core orchestrates the full pipeline: LoadConfigs asks each source for
// its contribution, hands it to the matching loader, merges fragments in
// source order, runs post-processors, and publishes a core-reload event;
// GetConfig/GetConfigOptional navigate, decode, and apply the
// treat-warnings-as-errors policy (§4.8).
type Core struct {
	sources  []source.Source
	loaders  []source.Loader
	manager  *nodemanager.Manager
	decoders *decoder.Registry
	logger   *slog.Logger
	metrics  *metrics.Registry

	loaded atomic.Bool
}

// SetMetrics wires a metrics registry; every decode records outcome and
// duration against it. Called by gestalt.Builder when WithMetrics is given.
func (c *Core) SetMetrics(r *metrics.Registry) { c.metrics = r }

// New builds a Core from explicit collaborators; gestalt.Builder is the
// ergonomic functional-options entry point most callers use instead.
func New(sources []source.Source, loaders []source.Loader, manager *nodemanager.Manager, decoders *decoder.Registry, logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}
	return &Core{
		sources:  sources,
		loaders:  loaders,
		manager:  manager,
		decoders: decoders,
		logger:   logger,
	}
}

// LoadConfigs asks every source for its contribution, parses it with a
// matching loader, and merges the result into the node manager. Each source
// is added with its own AddNode call, so one call publishes one generation
// (and one core-reload event) per source. It may be called more than once: a
// later call re-reads every source and rebuilds the generations again.
func (c *Core) LoadConfigs() error {
	if len(c.sources) == 0 {
		return errors.ErrNoSources
	}

	for _, src := range c.sources {
		fragment, err := c.loadOne(src)
		if err != nil {
			return err
		}
		r := c.manager.AddNode(src.ID(), fragment)
		if r.HasFatalErrors() {
			return errors.WrapKind(errors.ErrorInvalid, errors.KindConfigurationBuild,
				"gestalt.Core", "LoadConfigs", fmt.Sprintf("fatal errors merging source %s", src.Name()))
		}
	}

	c.loaded.Store(true)
	return nil
}

func (c *Core) loadOne(src source.Source) (node.Node, error) {
	l := c.loaderFor(src.Format())

	switch {
	case src.HasStream():
		if l == nil {
			return nil, errors.WrapKind(errors.ErrorInvalid, errors.KindSourceLoadFailure,
				"gestalt.Core", "loadOne", "no loader accepts format "+src.Format())
		}
		data, err := src.LoadStream()
		if err != nil {
			return nil, errors.WrapTransient(err, "gestalt.Core", "loadOne", "reading source "+src.Name())
		}
		r := l.Load(data)
		if !r.HasValue() {
			return nil, errors.WrapKind(errors.ErrorInvalid, errors.KindSourceLoadFailure,
				"gestalt.Core", "loadOne", "parsing source "+src.Name())
		}
		return r.MustValue(), nil

	case src.HasList():
		pairs, err := src.LoadList()
		if err != nil {
			return nil, errors.WrapTransient(err, "gestalt.Core", "loadOne", "reading source "+src.Name())
		}
		var r result.R[node.Node]
		if l != nil {
			r = l.LoadKV(pairs)
		} else {
			r = source.BuildTree(pairs, c.decoders.Mappers())
		}
		if !r.HasValue() {
			return nil, errors.WrapKind(errors.ErrorInvalid, errors.KindSourceLoadFailure,
				"gestalt.Core", "loadOne", "building tree for source "+src.Name())
		}
		return r.MustValue(), nil

	default:
		return nil, errors.WrapKind(errors.ErrorInvalid, errors.KindSourceLoadFailure,
			"gestalt.Core", "loadOne", "source "+src.Name()+" offers neither a stream nor a list")
	}
}

func (c *Core) loaderFor(format string) source.Loader {
	for _, l := range c.loaders {
		if l.Accepts(format) {
			return l
		}
	}
	return nil
}

// Navigate resolves a dotted/bracketed path against the current
// generation's tree, tokenizing via the decoder registry's path mapper.
func (c *Core) Navigate(path string) result.R[node.Node] {
	toksR := c.decoders.Mappers().Map(path)
	if !toksR.HasValue() {
		return result.Invalid[node.Node](toksR.Errors...)
	}
	return node.Navigate(c.manager.Current(), toksR.MustValue())
}

// decodeAny resolves path then runs it through the decoder registry,
// applying the strict/relaxed policy (§4.8): HasFatalErrors already treats
// ERROR/MISSING_VALUE as fatal; TreatWarningsAsErrors additionally promotes
// any WARN into a fatal outcome. It is the non-generic core every
// GetConfig[T] call narrows, since Go cannot put a generic method on the
// Gestalt interface.
func (c *Core) decodeAny(path string, t reflect.Type) (any, []result.ValidationError, error) {
	started := time.Now()
	if !c.loaded.Load() {
		return nil, nil, errors.ErrNotLoaded
	}

	navR := c.Navigate(path)
	if !navR.HasValue() {
		c.recordDecode(t, "error", started)
		return nil, navR.Errors, firstFatal(navR.Errors, path)
	}

	r := c.decoders.DecodeNode(path, navR.MustValue(), t)
	errs := append(append([]result.ValidationError{}, navR.Errors...), r.Errors...)

	policy := c.decoders.PolicyOf()
	fails := !r.HasValue()
	for _, e := range errs {
		if e.IsFatal() || (policy.TreatWarningsAsErrors && e.Level == result.LevelWarn) {
			fails = true
		}
		if c.metrics != nil && (e.IsFatal() || e.Level == result.LevelWarn) {
			c.metrics.CoreMetrics().RecordValidationError(e.Kind, e.Level.String())
		}
	}
	if fails {
		c.recordDecode(t, "error", started)
		return nil, errs, firstFatal(errs, path)
	}
	c.recordDecode(t, "ok", started)
	return r.MustValue(), errs, nil
}

func (c *Core) recordDecode(t reflect.Type, outcome string, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.CoreMetrics().RecordDecode(t.String(), outcome, time.Since(started))
}

func firstFatal(errs []result.ValidationError, path string) error {
	if len(errs) == 0 {
		return errors.WrapInvalid(fmt.Errorf("no value at %s", path), "gestalt.Core", "GetConfig", "empty result with no errors")
	}
	return errs[0]
}

// typeOf recovers T's reflect.Type even when T's zero value is a nil
// interface/pointer, mirroring decoder.Decode[T]'s same trick.
func typeOf[T any]() reflect.Type {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf(&zero).Elem()
	}
	return t
}

// GetConfig decodes the value at path into T, failing the call per the
// configured policy if any error qualifies (§4.8). Works against any
// Gestalt — a plain *Core or a *GestaltCache wrapping one.
func GetConfig[T any](g Gestalt, path string) (T, error) {
	var zero T
	v, _, err := g.decodeAny(path, typeOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.WrapInvalid(fmt.Errorf("decoded %T, expected %T", v, zero), "gestalt", "GetConfig", path)
	}
	return typed, nil
}

// GetConfigOptional decodes the value at path into T, falling back to
// defaultVal instead of failing — mirroring getConfig(path, default,
// type)'s fall-through-to-default behavior.
func GetConfigOptional[T any](g Gestalt, path string, defaultVal T) T {
	v, err := GetConfig[T](g, path)
	if err != nil {
		return defaultVal
	}
	return v
}

// AddReloadListener registers a listener notified after every successful
// generation build.
func (c *Core) AddReloadListener(l nodemanager.CoreReloadListener) {
	c.manager.AddReloadListener(l)
}

// Manager exposes the underlying node manager for OnChange subscriptions.
func (c *Core) Manager() *nodemanager.Manager { return c.manager }
