// Package cache provides an LRU cache with msgpack disk persistence.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry is a cache entry with metadata, and the unit of persistence.
type Entry[V any] struct {
	Key        string    `msgpack:"key"`
	Value      V         `msgpack:"value"`
	CreatedAt  time.Time `msgpack:"created_at"`
	AccessedAt time.Time `msgpack:"accessed_at"`
}

// Options configures the LRU cache.
type Options[V any] struct {
	// MaxEntries is the maximum number of entries.
	// 0 means unlimited.
	MaxEntries int

	// OnEvict is called when an entry is evicted or deleted.
	OnEvict func(key string, value V)
}

// LRU is an in-memory least-recently-used cache. It is safe for concurrent use.
type LRU[V any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // most recent at front
	max     int
	onEvict func(key string, value V)
}

// New creates a new LRU cache with the given options.
func New[V any](opts Options[V]) *LRU[V] {
	return &LRU[V]{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		max:     opts.MaxEntries,
		onEvict: opts.OnEvict,
	}
}

// Key derives a stable cache key from parts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a value and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, found := c.items[key]
	if !found {
		var zero V
		return zero, false
	}

	e := el.Value.(*Entry[V])
	e.AccessedAt = time.Now()
	c.order.MoveToFront(el)
	return e.Value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if el, exists := c.items[key]; exists {
		e := el.Value.(*Entry[V])
		e.Value = value
		e.AccessedAt = now
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&Entry[V]{
		Key:        key,
		Value:      value,
		CreatedAt:  now,
		AccessedAt: now,
	})
	c.evictIfNeeded()
}

// Delete removes a key from the cache.
func (c *LRU[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.items[key]; found {
		c.remove(el)
	}
}

// Clear removes all entries without calling OnEvict.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of entries in the cache.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns the keys from most to least recently used.
func (c *LRU[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*Entry[V]).Key)
	}
	return keys
}

func (c *LRU[V]) evictIfNeeded() {
	for c.max > 0 && c.order.Len() > c.max {
		c.remove(c.order.Back())
	}
}

func (c *LRU[V]) remove(el *list.Element) {
	e := c.order.Remove(el).(*Entry[V])
	delete(c.items, e.Key)
	if c.onEvict != nil {
		c.onEvict(e.Key, e.Value)
	}
}

// Save persists the cache to a writer using msgpack, most recent first.
func (c *LRU[V]) Save(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry[V], 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		entries = append(entries, *el.Value.(*Entry[V]))
	}

	if err := msgpack.NewEncoder(w).Encode(entries); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	return nil
}

// Load replaces the cache contents with entries read from r. Entries beyond
// MaxEntries are dropped, oldest first.
func (c *LRU[V]) Load(r io.Reader) error {
	var entries []Entry[V]
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	for i := range entries {
		e := entries[i]
		if c.max > 0 && len(c.items) >= c.max {
			break
		}
		if _, dup := c.items[e.Key]; dup {
			continue
		}
		c.items[e.Key] = c.order.PushBack(&e)
	}

	return nil
}

// SaveFile writes the cache to path, creating parent directories.
func (c *LRU[V]) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	return c.Save(f)
}

// LoadFile loads the cache from path. A missing file leaves the cache empty
// and is not an error.
func (c *LRU[V]) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}
