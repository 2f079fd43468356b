package cache

import (
	"bytes"
	"container/list"
	"sync"
)

// MemoryConfig configures the in-process tier.
type MemoryConfig struct {
	// MaxEntries bounds the number of entries. When the bound is reached the
	// oldest written entry is removed. Zero means unbounded.
	MaxEntries int `mapstructure:"max_entries" validate:"gte=0"`
}

// Memory is the in-process cache tier. Entries live for the process
// lifetime unless MaxEntries is set.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]*list.Element
	order      *list.List // oldest at front
	maxEntries int
}

// NewMemory creates an empty memory tier.
func NewMemory(cfg MemoryConfig) *Memory {
	return &Memory{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: cfg.MaxEntries,
	}
}

// Get returns the entry stored under key. Staleness is decided by the caller.
func (m *Memory) Get(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	el, ok := m.entries[key]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(el.Value.(Entry)), true
}

// Set stores e, replacing any entry with the same key. A replaced entry
// counts as newly written for eviction order.
func (m *Memory) Set(e Entry) {
	e = cloneEntry(e)

	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[e.Key]; ok {
		el.Value = e
		m.order.MoveToBack(el)
		return
	}

	m.entries[e.Key] = m.order.PushBack(e)
	for m.maxEntries > 0 && m.order.Len() > m.maxEntries {
		oldest := m.order.Front()
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(Entry).Key)
	}
}

// Delete removes the entry stored under key. Idempotent.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		m.order.Remove(el)
		delete(m.entries, key)
	}
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cloneEntry(e Entry) Entry {
	e.Value = bytes.Clone(e.Value)
	return e
}
