package registry

import (
	"weak"

	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/errors"
)

// RefCache guarantees at most one live script wrapper per native
// identity. Keys are comparable identity values (typically weak pointers
// to the native object); entries hold the wrapper handle weakly, so the
// cache never extends a script value's lifetime beyond what the engine's
// collector would otherwise permit.
//
// The cache only deduplicates: a miss means the caller creates a fresh
// wrapper and caches it again.
type RefCache struct {
	entries map[any]weak.Pointer[engine.Value]
}

// NewRefCache creates an empty reference cache.
func NewRefCache() *RefCache {
	return &RefCache{entries: make(map[any]weak.Pointer[engine.Value])}
}

// Internalize returns the cached wrapper for key. It fails with
// not_cached when no entry exists, when the handle has been collected, or
// when the handle was released; dead entries are pruned on observation.
func (c *RefCache) Internalize(key any) (*engine.Value, error) {
	p, ok := c.entries[key]
	if !ok {
		return nil, errors.NotCached()
	}
	h := p.Value()
	if h == nil || h.Released() {
		delete(c.entries, key)
		return nil, errors.NotCached()
	}
	return h, nil
}

// Cache inserts or replaces the wrapper entry for key.
func (c *RefCache) Cache(key any, h *engine.Value) {
	c.entries[key] = weak.Make(h)
}

// Invalidate removes the entry for key. No-op on an absent key.
func (c *RefCache) Invalidate(key any) {
	delete(c.entries, key)
}

// Len reports the number of entries, live or not yet pruned.
func (c *RefCache) Len() int { return len(c.entries) }

// Clear drops every entry. Used at teardown.
func (c *RefCache) Clear() {
	clear(c.entries)
}
