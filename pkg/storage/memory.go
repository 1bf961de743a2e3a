package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/livp123/netxconf/pkg/errors"
)

// MemoryStore is an in-process Store used by tests and the "memory" backend.
// MemoryStore 是进程内存储，用于测试和 "memory" 后端。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.data[clean]
	if !ok {
		return "", errors.NewNotFoundError(key)
	}
	return text, nil
}

func (s *MemoryStore) Put(_ context.Context, key, text string) error {
	clean, err := CleanKey(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[clean] = text
	return nil
}

// Keys lists stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
