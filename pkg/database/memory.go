package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps every record in process memory. One mutex guards all
// partitions so Transact is trivially atomic.
type MemoryStore struct {
	mu         sync.Mutex
	partitions map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partitions: make(map[string]map[string]map[string]any),
	}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	return &Item{PK: key.PK, SK: key.SK, Attrs: copyAttrs(attrs)}, nil
}

func (s *MemoryStore) Put(_ context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(item)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, pk string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	partition := s.partitions[pk]
	sks := make([]string, 0, len(partition))
	for sk := range partition {
		sks = append(sks, sk)
	}
	sort.Strings(sks)

	items := make([]Item, 0, len(sks))
	for _, sk := range sks {
		items = append(items, Item{PK: pk, SK: sk, Attrs: copyAttrs(partition[sk])})
	}
	return items, nil
}

func (s *MemoryStore) Increment(_ context.Context, key Key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs, ok := s.lookup(key)
	if !ok {
		return 0, fmt.Errorf("increment %s: %w", key, ErrNotFound)
	}

	next := AttrInt(attrs, field) + delta
	attrs[field] = next
	return next, nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if partition, ok := s.partitions[key.PK]; ok {
		delete(partition, key.SK)
	}
	return nil
}

func (s *MemoryStore) Transact(_ context.Context, ops []Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// check every condition before touching anything
	for i, op := range ops {
		attrs, exists := s.lookup(op.Key)
		if condErr := checkOp(i, op, attrs, exists); condErr != nil {
			return condErr
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case OpPut:
			s.put(op.Item)
		case OpDelete:
			delete(s.partitions[op.Key.PK], op.Key.SK)
		case OpIncrement:
			attrs, _ := s.lookup(op.Key)
			attrs[op.Field] = AttrInt(attrs, op.Field) + op.Delta
			if op.Bump != "" {
				attrs[op.Bump] = AttrInt(attrs, op.Bump) + 1
			}
		}
	}
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) lookup(key Key) (map[string]any, bool) {
	partition, ok := s.partitions[key.PK]
	if !ok {
		return nil, false
	}
	attrs, ok := partition[key.SK]
	return attrs, ok
}

func (s *MemoryStore) put(item Item) {
	partition, ok := s.partitions[item.PK]
	if !ok {
		partition = make(map[string]map[string]any)
		s.partitions[item.PK] = partition
	}
	partition[item.SK] = copyAttrs(item.Attrs)
}

func copyAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
