package layout

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/mark/canvas-dsl/pkg/ir"
)

// maxCacheEntries bounds the result cache; exceeding it evicts one entry.
const maxCacheEntries = 100

// Manager owns the engine registry and the fingerprint-keyed result cache.
// Layout calls are single-threaded per graph; the cache is the only shared
// state and is guarded by a mutex held only to look up and insert.
//
// Memory: all engines are O(V+E) except ELK stress (O(V^2) distance
// matrix) and ELK force (O(V^2) pair forces per iteration); callers laying
// out very large graphs should gate on size before selecting those.
type Manager struct {
	engines map[string]Engine

	mu           sync.Mutex
	cache        map[CacheKey]CachedLayout
	cacheEnabled bool
}

// NewManager creates a manager with the dagre, force and elk engines
// registered and caching enabled.
func NewManager() *Manager {
	m := &Manager{
		engines:      make(map[string]Engine),
		cache:        make(map[CacheKey]CachedLayout),
		cacheEnabled: true,
	}
	m.Register(NewDagre())
	m.Register(NewForce())
	m.Register(NewElk())
	return m
}

// Register adds an engine under its Name. Re-registering a name replaces
// the previous engine.
func (m *Manager) Register(e Engine) {
	m.engines[e.Name()] = e
}

// EnableCache toggles result caching.
func (m *Manager) EnableCache(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheEnabled = enabled
}

// ClearCache drops all cached layouts.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[CacheKey]CachedLayout)
}

// Layout runs the engine named by the graph's config (default "dagre")
// using the default context.
func (m *Manager) Layout(g *ir.Graph) error {
	return m.LayoutWithContext(g, DefaultContext())
}

// LayoutWithContext dispatches to the configured engine. On a cache hit
// the stored positions are copied back onto the graph; on a miss the
// engine runs outside the cache lock and its positions are stored.
func (m *Manager) LayoutWithContext(g *ir.Graph, ctx *Context) error {
	name := g.Config.Layout
	if name == "" {
		name = "dagre"
	}

	engine, ok := m.engines[name]
	if !ok {
		return &UnknownEngineError{Name: name}
	}

	if !m.cacheIsEnabled() {
		return engine.Apply(g, ctx)
	}

	key := Fingerprint(g, name)
	if cached, ok := m.lookup(key); ok {
		log.WithFields(log.Fields{
			"engine": name,
			"nodes":  g.NodeCount(),
		}).Debug("layout cache hit")
		applyPositions(g, cached.Positions)
		return nil
	}

	if err := engine.Apply(g, ctx); err != nil {
		return err
	}

	m.store(key, CachedLayout{Positions: snapshotPositions(g)})
	return nil
}

func (m *Manager) cacheIsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheEnabled
}

func (m *Manager) lookup(key CacheKey) (CachedLayout, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cached, ok := m.cache[key]
	return cached, ok
}

func (m *Manager) store(key CacheKey, layout CachedLayout) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.cache) > maxCacheEntries {
		m.evictLocked()
	}
	m.cache[key] = layout
}

// evictLocked removes the lexicographically smallest (engine, hash) key.
// The bound and determinism are the contract; the policy is not LRU.
func (m *Manager) evictLocked() {
	var victim CacheKey
	first := true
	for key := range m.cache {
		if first || key.less(victim) {
			victim = key
			first = false
		}
	}
	if !first {
		delete(m.cache, victim)
	}
}

func (k CacheKey) less(other CacheKey) bool {
	if k.Engine != other.Engine {
		return k.Engine < other.Engine
	}
	return k.GraphHash < other.GraphHash
}

// applyPositions copies cached positions back onto the graph. Width,
// height and container bounds are not cached and keep their current
// values.
func applyPositions(g *ir.Graph, positions map[string]Point) {
	for _, h := range g.NodeIDs() {
		n := g.Node(h)
		if p, ok := positions[n.ID]; ok {
			n.X = p.X
			n.Y = p.Y
		}
	}
}
