package queries

import (
	"context"
	"sync"

	"memoryhub/application/ports"
)

// ProjectsCacheTTL is how long a project list stays cached, in seconds
const ProjectsCacheTTL = 300

// ProjectsCache holds each user's project list on top of a ports.Cache.
// Writers bump a per-user generation on every create or delete, and a reader
// only stores a list if the generation it started from is still current. A
// list loaded before a concurrent write is therefore never cached.
//
// A nil *ProjectsCache caches nothing.
type ProjectsCache struct {
	store ports.Cache
	ttl   int

	mu          sync.Mutex
	generations map[string]uint64
}

// NewProjectsCache creates a project list cache with the given TTL in seconds
func NewProjectsCache(store ports.Cache, ttl int) *ProjectsCache {
	return &ProjectsCache{
		store:       store,
		ttl:         ttl,
		generations: make(map[string]uint64),
	}
}

// Lookup returns the cached list, if any, and the generation to hand back to
// Store after loading a fresh one.
func (c *ProjectsCache) Lookup(ctx context.Context, userID string) ([]string, uint64, bool) {
	if c == nil {
		return nil, 0, false
	}

	c.mu.Lock()
	generation := c.generations[userID]
	c.mu.Unlock()

	cached, ok := c.store.Get(ctx, ProjectsCacheKey(userID))
	if !ok {
		return nil, generation, false
	}
	projects, ok := cached.([]string)
	return projects, generation, ok
}

// Store caches projects unless a writer has invalidated the user since
// generation was read. It reports whether the list was stored.
func (c *ProjectsCache) Store(ctx context.Context, userID string, generation uint64, projects []string) (bool, error) {
	if c == nil {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[userID] != generation {
		return false, nil
	}
	if err := c.store.Set(ctx, ProjectsCacheKey(userID), projects, c.ttl); err != nil {
		return false, err
	}
	return true, nil
}

// Invalidate drops the user's cached list and moves its generation forward
func (c *ProjectsCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[userID]++
	return c.store.Delete(ctx, ProjectsCacheKey(userID))
}
