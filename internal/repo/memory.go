package repo

import (
	"context"
	"fmt"
	"sync"
)

type Memory[T Entity] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

func NewMemory[T Entity](seed ...T) *Memory[T] {
	m := &Memory[T]{items: make(map[string]T, len(seed))}
	for _, v := range seed {
		m.items[v.GetID()] = v
		m.order = append(m.order, v.GetID())
	}
	return m
}

func (m *Memory[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return v, nil
}

// List returns items in insertion order.
func (m *Memory[T]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out, nil
}

func (m *Memory[T]) Insert(_ context.Context, v T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := v.GetID()
	if id == "" {
		var zero T
		return zero, fmt.Errorf("insert: empty id")
	}
	if _, ok := m.items[id]; ok {
		var zero T
		return zero, fmt.Errorf("insert %q: %w", id, ErrConflict)
	}
	m.items[id] = v
	m.order = append(m.order, id)
	return v, nil
}

func (m *Memory[T]) Update(_ context.Context, id string, fn func(*T) error) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	cur, ok := m.items[id]
	if !ok {
		return zero, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	next := cur
	if err := fn(&next); err != nil {
		return zero, err
	}
	if next.GetID() != id {
		return zero, fmt.Errorf("update %q: id changed to %q", id, next.GetID())
	}
	m.items[id] = next
	return next, nil
}

func (m *Memory[T]) Delete(_ context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	delete(m.items, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return v, nil
}
