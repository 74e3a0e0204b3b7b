// cache.go provides an in-memory cache for compiled preview templates.
// Templates are keyed by the group they preview and a digest of their
// source, so a changed schema produces a cache miss on its own.
package engine

import (
	"encoding/hex"
	"html/template"
	"log/slog"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// cacheKey uniquely identifies a compiled template version.
type cacheKey struct {
	group   string // "module.group"
	version string // digest of the template source
}

// templateCache is a concurrency-safe in-memory cache of compiled templates.
// Cached templates are never executed directly, only clones of them, so
// they can be given request-bound functions.
type templateCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*template.Template
}

// newTemplateCache creates an empty template cache.
func newTemplateCache() *templateCache {
	return &templateCache{
		entries: make(map[cacheKey]*template.Template),
	}
}

// templateVersion returns the digest of a template source.
func templateVersion(src string) string {
	sum := blake2b.Sum256([]byte(src))
	return hex.EncodeToString(sum[:8])
}

// get retrieves a compiled template from cache. Returns nil on miss.
func (c *templateCache) get(group, version string) *template.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[cacheKey{group: group, version: version}]
}

// put stores a compiled template, replacing older versions for the group.
func (c *templateCache) put(group, version string, tmpl *template.Template) {
	c.invalidate(group)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{group: group, version: version}] = tmpl
	slog.Debug("template cached", "group", group, "version", version, "size", len(c.entries))
}

// invalidate removes all cached versions for a group.
func (c *templateCache) invalidate(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.group == group {
			delete(c.entries, k)
		}
	}
}

func (c *templateCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
