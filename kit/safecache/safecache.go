// Package safecache provides a keyed build-once cache with explicit
// invalidation. Values are built off to the side and swapped in atomically:
// concurrent readers always observe either the previous complete value or
// the new complete value, never a partial build. There is no TTL and no
// implicit refresh; values live until Invalidate or Clear.
package safecache

import "sync"

type cell[V any] struct {
	buildMu sync.Mutex // serializes builds for this key
	gen     uint64
	val     V
	ok      bool
}

type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	cells map[K]*cell[V]
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{cells: make(map[K]*cell[V])}
}

// GetOrBuild returns the cached value for key, building it with build if
// absent or invalidated. If Invalidate races with an in-flight build, the
// freshly built value is returned to the caller but not cached.
func (m *Map[K, V]) GetOrBuild(key K, build func() (V, error)) (V, error) {
	m.mu.Lock()
	c, exists := m.cells[key]
	if !exists {
		c = &cell[V]{}
		m.cells[key] = c
	}
	if c.ok {
		v := c.val
		m.mu.Unlock()
		return v, nil
	}
	gen := c.gen
	m.mu.Unlock()

	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	// Another build may have completed while we waited.
	m.mu.RLock()
	if c.ok && c.gen == gen {
		v := c.val
		m.mu.RUnlock()
		return v, nil
	}
	m.mu.RUnlock()

	v, err := build()
	if err != nil {
		var zero V
		return zero, err
	}

	m.mu.Lock()
	if c.gen == gen {
		c.val = v
		c.ok = true
	}
	m.mu.Unlock()
	return v, nil
}

// Get returns the cached value without building.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, exists := m.cells[key]; exists && c.ok {
		return c.val, true
	}
	var zero V
	return zero, false
}

// Invalidate marks key stale. The next GetOrBuild rebuilds; readers in
// between keep seeing nothing cached (a miss), never a partial value.
func (m *Map[K, V]) Invalidate(key K) {
	m.mu.Lock()
	if c, exists := m.cells[key]; exists {
		c.gen++
		c.ok = false
		var zero V
		c.val = zero
	}
	m.mu.Unlock()
}

func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	m.cells = make(map[K]*cell[V])
	m.mu.Unlock()
}
