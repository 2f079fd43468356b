package store

import (
	"bytes"
	"context"
	"sync"
)

// Memory is an in-process Store. Documents are copied on read and write.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]Document)}
}

func (m *Memory) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := validateAddress(collection, key); err != nil {
		return Document{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[collection][key]
	if !ok {
		return Document{}, false, nil
	}
	return copyDocument(doc), true, nil
}

func (m *Memory) Set(ctx context.Context, collection, key string, doc Document) error {
	if err := validateAddress(collection, key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.docs[collection]
	if !ok {
		c = make(map[string]Document)
		m.docs[collection] = c
	}
	c[key] = copyDocument(doc)
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of documents in collection.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}

func copyDocument(d Document) Document {
	d.Result = bytes.Clone(d.Result)
	return d
}

var (
	_ Store  = (*Memory)(nil)
	_ Pinger = (*Memory)(nil)
)
