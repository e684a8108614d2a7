package cheqed

import (
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of environments a Cache keeps by default.
const DefaultCacheSize = 8

// Cache builds each environment once per theory list and keeps the most
// recently used ones.
type Cache struct {
	loader *Loader

	mu   sync.Mutex
	envs *lru.Cache[string, *Environment]
}

// NewCache creates a cache holding up to size environments.
func NewCache(loader *Loader, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	envs, err := lru.New[string, *Environment](size)
	if err != nil {
		return nil, err
	}
	return &Cache{loader: loader, envs: envs}, nil
}

// Get returns the environment for the theories, loading it on first use.
func (c *Cache) Get(theories ...string) (*Environment, error) {
	key := strings.Join(theories, ",")

	c.mu.Lock()
	defer c.mu.Unlock()

	if env, ok := c.envs.Get(key); ok {
		slog.Debug("environment cache hit", "theories", key)
		return env, nil
	}

	slog.Debug("environment cache miss", "theories", key)
	env, err := c.loader.Load(theories...)
	if err != nil {
		return nil, err
	}
	c.envs.Add(key, env)
	return env, nil
}

// Len returns the number of cached environments.
func (c *Cache) Len() int {
	return c.envs.Len()
}
