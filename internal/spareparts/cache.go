package spareparts

import (
	"fmt"
	"log/slog"
	"sync"
)

// Loader produces a fresh DB from the underlying source.
type Loader func() (*DB, error)

// Cache holds a lazily-loaded spare-parts database for the process lifetime.
// The first Get loads the source; subsequent calls return the cached DB until
// Reload is called. Safe for concurrent use: many readers, one loader.
type Cache struct {
	load Loader

	mu sync.RWMutex
	db *DB
}

// NewCache creates a Cache over the given loader. Nothing is loaded until
// the first Get.
func NewCache(load Loader) *Cache {
	return &Cache{load: load}
}

// NewCSVCache creates a Cache loading from a CSV file at path.
func NewCSVCache(path string) *Cache {
	return NewCache(func() (*DB, error) { return LoadCSV(path) })
}

// Get returns the cached database, loading it on first use.
func (c *Cache) Get() (*DB, error) {
	c.mu.RLock()
	if c.db != nil {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db, nil
	}

	db, err := c.load()
	if err != nil {
		return nil, fmt.Errorf("loading spare parts database: %w", err)
	}
	slog.Info("spare parts database loaded", "models", db.Len())
	c.db = db
	return db, nil
}

// Reload discards the cached database and loads the source again. On load
// failure the previous cache is kept, so readers never regress to empty data.
func (c *Cache) Reload() (*DB, error) {
	db, err := c.load()
	if err != nil {
		return nil, fmt.Errorf("reloading spare parts database: %w", err)
	}

	c.mu.Lock()
	c.db = db
	c.mu.Unlock()

	slog.Info("spare parts database reloaded", "models", db.Len())
	return db, nil
}
