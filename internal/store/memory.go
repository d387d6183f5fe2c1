package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[Collection]map[string]Record
	order   map[Collection][]string
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[Collection]map[string]Record),
		order:   make(map[Collection][]string),
		now:     time.Now,
	}
}

func (m *MemoryStore) Add(_ context.Context, c Collection, id string, body json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[c] == nil {
		m.records[c] = make(map[string]Record)
	}
	if _, ok := m.records[c][id]; ok {
		return fmt.Errorf("%s/%s: %w", c, id, ErrDuplicate)
	}
	now := m.now().UTC()
	m.records[c][id] = Record{ID: id, Body: clone(body), CreatedAt: now, UpdatedAt: now}
	m.order[c] = append(m.order[c], id)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, c Collection, id string, body json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[c][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	rec.Body = clone(body)
	rec.UpdatedAt = m.now().UTC()
	m.records[c][id] = rec
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, c Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[c][id]; !ok {
		return fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	delete(m.records[c], id)
	ids := m.order[c]
	for i, v := range ids {
		if v == id {
			m.order[c] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, c Collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[c][id]
	if !ok {
		return Record{}, fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	rec.Body = clone(rec.Body)
	return rec, nil
}

func (m *MemoryStore) FindByField(_ context.Context, c Collection, field, value string) ([]Record, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, id := range m.order[c] {
		rec := m.records[c][id]
		var doc map[string]any
		if err := json.Unmarshal(rec.Body, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c, id, err)
		}
		if s, ok := doc[field].(string); ok && s == value {
			rec.Body = clone(rec.Body)
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetAll(_ context.Context, c Collection) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.order[c]))
	for _, id := range m.order[c] {
		rec := m.records[c][id]
		rec.Body = clone(rec.Body)
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

func clone(b json.RawMessage) json.RawMessage {
	if b == nil {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}
