// Package nodemanager implements the node manager (C4): it owns the merged,
// post-processed tree and serializes reloads behind an atomically-swapped
// generation pointer. Grounded directly on config.Manager's lifecycle shape
// (mutex-guarded subscriber map, shutdown channel, atomic stopped flag,
// pattern-matched OnChange) — generalized from "NATS KV key update" to
// "tree-fragment reload."
package nodemanager

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ikalinin1/gestalt/metrics"
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/postprocess"
	"github.com/ikalinin1/gestalt/result"
)

// generation is one immutable, frozen snapshot of the merged tree.
type generation struct {
	tree node.Node
	id   uint64
}

// ReloadEvent is published to core-reload listeners and OnChange
// subscribers after every successful generation build.
type ReloadEvent struct {
	GenerationID uint64
	SourceID     string // the reloaded source's id; empty for a ReloadMany rebuild
}

// CoreReloadListener is notified after every successful generation build —
// the supplemented CoreReloadListener interface named in the original
// Java implementation, promoted to a first-class collaborator here.
type CoreReloadListener interface {
	OnCoreReload(ev ReloadEvent)
}

// Manager owns the current generation and applies reloads/post-processing.
// Reads acquire the current generation pointer atomically and operate on
// the immutable snapshot; writers build the new generation entirely
// off-line before the atomic swap (§5).
type Manager struct {
	current atomic.Pointer[generation]
	chain   *postprocess.Chain
	logger  *slog.Logger

	mu          sync.RWMutex
	subscribers map[string][]chan ReloadEvent
	listeners   []CoreReloadListener
	metrics     *metrics.Registry

	fragments   map[string]node.Node // source id -> its last-contributed fragment
	sourceOrder []string              // order fragments are merged in

	nextGenID uint64

	shutdownCh chan struct{}
	wg         sync.WaitGroup
	stopped    atomic.Bool
}

// New builds a Manager with an empty initial generation.
func New(chain *postprocess.Chain, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		chain:       chain,
		logger:      logger,
		subscribers: make(map[string][]chan ReloadEvent),
		fragments:   make(map[string]node.Node),
		shutdownCh:  make(chan struct{}),
	}
	m.current.Store(&generation{tree: node.NewMap(), id: 0})
	return m
}

// Current returns the tree for the presently visible generation. Callers
// get a consistent snapshot: any in-flight read completes against exactly
// one generation even if a reload races it (Invariant, §4.4/§5).
func (m *Manager) Current() node.Node {
	return m.current.Load().tree
}

// AddReloadListener registers a CoreReloadListener, notified synchronously
// after every successful generation build.
func (m *Manager) AddReloadListener(l CoreReloadListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// SetMetrics wires a metrics registry; every rebuild records reload count
// and duration against it. Called by gestalt.Builder when WithMetrics is
// given; a nil registry (the default) disables recording.
func (m *Manager) SetMetrics(r *metrics.Registry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = r
}

// AddNode merges fragment into the current tree under sourceID, runs the
// post-processor chain, and publishes a new generation.
func (m *Manager) AddNode(sourceID string, fragment node.Node) result.R[node.Node] {
	m.mu.Lock()
	if _, exists := m.fragments[sourceID]; !exists {
		m.sourceOrder = append(m.sourceOrder, sourceID)
	}
	m.fragments[sourceID] = fragment
	order := append([]string{}, m.sourceOrder...)
	frags := make(map[string]node.Node, len(m.fragments))
	for k, v := range m.fragments {
		frags[k] = v
	}
	m.mu.Unlock()

	return m.rebuild(order, frags, sourceID)
}

// ReloadNode replaces the slice contributed by sourceID and re-merges in
// source order, exactly mirroring AddNode's build-off-to-the-side-then-swap
// discipline.
func (m *Manager) ReloadNode(sourceID string, fragment node.Node) result.R[node.Node] {
	return m.AddNode(sourceID, fragment)
}

// ReloadMany records several fragments at once and rebuilds with a single
// merge, post-processing pass and atomic swap. An errgroup collects the
// updates; the merge itself runs once, sequentially in source order, inside
// rebuild.
func (m *Manager) ReloadMany(ctx context.Context, updates map[string]node.Node) result.R[node.Node] {
	type built struct {
		id string
		n  node.Node
	}
	ids := make([]string, 0, len(updates))
	for id := range updates {
		ids = append(ids, id)
	}
	results := make([]built, len(ids))

	g, _ := errgroup.WithContext(ctx)
	for idx, id := range ids {
		idx, id := idx, id
		g.Go(func() error {
			results[idx] = built{id: id, n: updates[id]}
			return nil
		})
	}
	_ = g.Wait()

	m.mu.Lock()
	for _, b := range results {
		if _, exists := m.fragments[b.id]; !exists {
			m.sourceOrder = append(m.sourceOrder, b.id)
		}
		m.fragments[b.id] = b.n
	}
	order := append([]string{}, m.sourceOrder...)
	frags := make(map[string]node.Node, len(m.fragments))
	for k, v := range m.fragments {
		frags[k] = v
	}
	m.mu.Unlock()

	return m.rebuild(order, frags, "")
}

func (m *Manager) rebuild(order []string, frags map[string]node.Node, sourceID string) result.R[node.Node] {
	m.wg.Add(1)
	defer m.wg.Done()
	started := time.Now()

	var merged node.Node = node.NewMap()
	var errs []result.ValidationError
	for _, id := range order {
		r := node.Merge(merged, frags[id])
		errs = append(errs, r.Errors...)
		if v, ok := r.Value(); ok {
			merged = v
		}
	}

	if m.chain != nil {
		pr := m.chain.Run(merged)
		errs = append(errs, pr.Errors...)
		if v, ok := pr.Value(); ok {
			merged = v
		}
	}
	node.Rollup(merged)

	genID := atomic.AddUint64(&m.nextGenID, 1)

	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("nodemanager: generation built", "generation", genID, "source", sourceID, "tree", node.Dump(merged))
	}

	// Notify listeners — including the decode cache, which clears itself —
	// before the new generation becomes visible to readers. A reader that
	// beats the swap still sees the old generation, and the cache it might
	// consult was already emptied, so it recomputes against that old
	// generation rather than risk serving a value derived from the new one.
	m.publish(ReloadEvent{GenerationID: genID, SourceID: sourceID})
	m.current.Store(&generation{tree: merged, id: genID})

	if m.metrics != nil {
		outcome := "ok"
		for _, e := range errs {
			if e.IsFatal() {
				outcome = "error"
				break
			}
		}
		label := sourceID
		if label == "" {
			label = "all"
		}
		m.metrics.CoreMetrics().RecordReload(label, outcome, time.Since(started))
	}

	return result.Of[node.Node](&merged, errs)
}

func (m *Manager) publish(ev ReloadEvent) {
	m.mu.RLock()
	listeners := append([]CoreReloadListener{}, m.listeners...)
	subs := make(map[string][]chan ReloadEvent, len(m.subscribers))
	for k, v := range m.subscribers {
		subs[k] = append([]chan ReloadEvent{}, v...)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l.OnCoreReload(ev)
	}

	for pattern, chans := range subs {
		if !matchesPattern(ev.SourceID, pattern) && pattern != "*" {
			continue
		}
		for _, ch := range chans {
			select {
			case ch <- ev:
			default:
				m.logger.Warn("nodemanager: subscriber channel full, dropping reload event", "pattern", pattern)
			}
		}
	}
}

// OnChange subscribes to reload events whose source id matches pattern.
// Pattern forms, exactly mirroring config.Manager.matchesPattern:
//   - "services.metrics" — exact match
//   - "services.*" — suffix wildcard, matches "services.anything"
//   - "components.udp-*" — prefix wildcard
func (m *Manager) OnChange(pattern string) <-chan ReloadEvent {
	ch := make(chan ReloadEvent, 1)
	m.mu.Lock()
	m.subscribers[pattern] = append(m.subscribers[pattern], ch)
	m.mu.Unlock()
	return ch
}

func matchesPattern(key, pattern string) bool {
	if pattern == key {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		prefix := strings.TrimSuffix(pattern, ".*")
		return strings.HasPrefix(key, prefix+".")
	}
	if strings.Contains(pattern, "*") {
		parts := strings.SplitN(pattern, "*", 2)
		if len(parts) > 0 {
			return strings.HasPrefix(key, parts[0])
		}
	}
	return false
}

// Stop signals shutdown and waits up to timeout for in-flight reload work
// to finish, mirroring config.Manager.Stop's CAS-guarded single-shutdown
// discipline.
func (m *Manager) Stop(timeout time.Duration) error {
	if !m.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(m.shutdownCh)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		m.logger.Warn("nodemanager: stop timed out waiting for in-flight work")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chans := range m.subscribers {
		for _, ch := range chans {
			close(ch)
		}
	}
	m.subscribers = nil
	return nil
}
