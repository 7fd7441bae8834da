package docstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by tests and by local-only setups.
type Memory struct {
	mu       sync.Mutex
	docs     map[string]Document
	watchers map[string]map[int]func(Document)
	nextID   int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string]Document),
		watchers: make(map[string]map[int]func(Document)),
	}
}

func (m *Memory) Get(_ context.Context, path string) (Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, false, nil
	}
	out := make(Document, len(doc))
	copy(out, doc)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, path string, doc Document, merge bool) error {
	m.mu.Lock()
	if merge {
		merged, err := Merge(m.docs[path], doc)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		doc = merged
	}
	stored := make(Document, len(doc))
	copy(stored, doc)
	m.docs[path] = stored

	var callbacks []func(Document)
	for _, fn := range m.watchers[path] {
		callbacks = append(callbacks, fn)
	}
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(stored)
	}
	return nil
}

func (m *Memory) Watch(_ context.Context, path string, onChange func(Document)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watchers[path] == nil {
		m.watchers[path] = make(map[int]func(Document))
	}
	id := m.nextID
	m.nextID++
	m.watchers[path][id] = onChange
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers[path], id)
	}
}

// Disabled is a Store for setups without remote sync: every document is
// absent, writes vanish, and watches never fire.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (Document, bool, error) { return nil, false, nil }

func (Disabled) Set(context.Context, string, Document, bool) error { return nil }

func (Disabled) Watch(context.Context, string, func(Document)) func() { return func() {} }
