// ABOUTME: Generic write-through collection shared by every entity store
// ABOUTME: Mutations persist the whole collection before the in-memory state changes
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// entity is satisfied by a pointer to any model embedding models.Record.
type entity[T any] interface {
	*T
	Key() string
	Stamp(id string, now time.Time)
	Touch(now time.Time)
}

// Deps are the collaborators injected into every store.
type Deps struct {
	Storage Storage
	IDs     IDGenerator
	Now     Clock
}

func (d Deps) withDefaults() Deps {
	if d.Storage == nil {
		d.Storage = NewMemoryStorage()
	}
	if d.IDs == nil {
		d.IDs = UUIDGenerator{}
	}
	if d.Now == nil {
		d.Now = SystemClock
	}
	return d
}

// Collection is an unordered set of records persisted under one key.
type Collection[T any, P entity[T]] struct {
	key   string
	deps  Deps
	mu    sync.RWMutex
	items []T
}

func loadCollection[T any, P entity[T]](key string, deps Deps) (*Collection[T, P], error) {
	c := &Collection[T, P]{key: key, deps: deps}

	data, ok, err := deps.Storage.Load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if ok {
		if err := decodeSnapshot(data, &c.items); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}
	log.Debug("loaded collection", "key", key, "count", len(c.items))
	return c, nil
}

// commit persists next and, only on success, makes it the in-memory state. Caller holds mu.
func (c *Collection[T, P]) commit(next []T) error {
	if next == nil {
		next = []T{}
	}
	data, err := encodeSnapshot(next)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	if err := c.deps.Storage.Save(c.key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.key, err)
	}
	c.items = next
	return nil
}

func (c *Collection[T, P]) copyItems() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T, P]) indexOf(id string) int {
	for i := range c.items {
		if P(&c.items[i]).Key() == id {
			return i
		}
	}
	return -1
}

// Add stamps item with a fresh id and timestamps, appends it and returns the stored copy.
func (c *Collection[T, P]) Add(item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	P(&item).Stamp(c.deps.IDs.NewID(), c.deps.Now())
	next := append(c.copyItems(), item)
	if err := c.commit(next); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Modify applies fn to the record and refreshes its update time.
// A missing id is a no-op reported with found=false.
func (c *Collection[T, P]) Modify(id string, fn func(*T)) (updated T, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return updated, false, nil
	}

	next := c.copyItems()
	fn(&next[idx])
	P(&next[idx]).Touch(c.deps.Now())
	if err := c.commit(next); err != nil {
		return updated, true, err
	}
	return next[idx], true, nil
}

// Delete removes a record. Dependent records elsewhere are left untouched.
func (c *Collection[T, P]) Delete(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:idx]...)
	next = append(next, c.items[idx+1:]...)
	if err := c.commit(next); err != nil {
		return true, err
	}
	return true, nil
}

func (c *Collection[T, P]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero T
	return zero, false
}

// All returns a copy of every record in insertion order.
func (c *Collection[T, P]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyItems()
}

// Filter returns the records matching keep, computed on every call.
func (c *Collection[T, P]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []T
	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func (c *Collection[T, P]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Replace swaps the whole collection, keeping ids and timestamps as given. Used by imports.
func (c *Collection[T, P]) Replace(items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(append([]T(nil), items...))
}

// Key returns the persisted key of the collection.
func (c *Collection[T, P]) Key() string {
	return c.key
}
