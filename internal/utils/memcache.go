package utils

import (
	"context"       // Matches the Cache interface
	"encoding/json" // Values are stored as JSON so callers never share memory
	"strings"       // Prefix matching
	"sync"          // Guards the map
	"time"          // Expiry
)

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Expired entries are hidden on read and
// dropped by a background sweep.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryCache starts a cache that sweeps expired entries every interval.
// A non-positive interval disables the sweeper.
func NewMemoryCache(interval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if interval > 0 {
		go c.sweepLoop(interval)
	}
	return c
}

// Get loads key into dest
func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return false, nil // Missing or expired
	}
	return true, json.Unmarshal(e.data, dest)
}

// Set stores value under key for ttl
func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = memEntry{data: b, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes key
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// DeletePrefix removes every key starting with prefix
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep drops expired entries and returns how many were removed
func (c *MemoryCache) Sweep() int {
	now := c.now()
	removed := 0
	c.mu.Lock()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()
	return removed
}

// Close stops the sweeper. It is safe to call more than once.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stop:
			return
		}
	}
}
