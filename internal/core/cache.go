package core

import (
	"slices"
	"sync"
	"time"
)

// Cache holds, per category, the most recently loaded records and the
// status of the latest load. It is the only place load state lives.
//
// Readers get copies. The mutators are unexported: only the Loader
// changes entries.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

// Snapshot returns a copy of the category's entry. Categories never loaded
// report StatusUnloaded.
func (c *Cache) Snapshot(id string) Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return Entry{Category: id, Status: StatusUnloaded}
	}
	return e.clone()
}

// Status returns the category's load status.
func (c *Cache) Status(id string) LoadStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.entries[id]; ok {
		return e.Status
	}
	return StatusUnloaded
}

// Len returns the number of categories with an entry.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (e *Entry) clone() Entry {
	out := *e
	out.Records = slices.Clone(e.Records)
	out.Warnings = slices.Clone(e.Warnings)
	return out
}

// entry returns the mutable entry for id, creating it. Caller holds mu.
func (c *Cache) entry(id string) *Entry {
	e, ok := c.entries[id]
	if !ok {
		e = &Entry{Category: id, Status: StatusUnloaded}
		c.entries[id] = e
	}
	return e
}

// markLoading flags a load in progress. Existing records are kept.
func (c *Cache) markLoading(id, loadID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(id)
	e.Status = StatusLoading
	e.LoadID = loadID
}

// storeLoaded replaces the category's records in one step.
func (c *Cache) storeLoaded(id, loadID string, records []Record, warnings []RowWarning, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(id)
	e.Records = records
	e.Warnings = warnings
	e.Status = StatusLoaded
	e.Err = nil
	e.LoadID = loadID
	e.LoadedAt = at
}

// markFailed records a failed load. Previously loaded records stay.
func (c *Cache) markFailed(id, loadID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(id)
	e.Status = StatusFailed
	e.Err = err
	e.LoadID = loadID
}

// invalidate moves a settled entry back to unloaded so the next load
// refetches. Loading entries are left alone.
func (c *Cache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[id]; ok && e.Status != StatusLoading {
		e.Status = StatusUnloaded
		e.Err = nil
	}
}
