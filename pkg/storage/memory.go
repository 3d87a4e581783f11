package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/absmach/cartridge/pkg/errors"
)

type inMemoryStorage[K cmp.Ordered, V any] struct {
	sync.Mutex

	data map[K]V
}

// NewInMemoryStorage returns a Storage kept in process memory. List
// returns values ordered by key.
func NewInMemoryStorage[K cmp.Ordered, V any]() Storage[K, V] {
	return &inMemoryStorage[K, V]{
		data: make(map[K]V),
	}
}

func (s *inMemoryStorage[K, V]) Get(_ context.Context, key K) (V, error) {
	s.Lock()
	defer s.Unlock()

	if val, ok := s.data[key]; ok {
		return val, nil
	}

	var zero V

	return zero, errors.ErrNotFound
}

func (s *inMemoryStorage[K, V]) Update(_ context.Context, key K, value V) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; !ok {
		return errors.ErrNotFound
	}

	s.data[key] = value

	return nil
}

func (s *inMemoryStorage[K, V]) Upsert(_ context.Context, key K, value V) error {
	s.Lock()
	defer s.Unlock()

	s.data[key] = value

	return nil
}

func (s *inMemoryStorage[K, V]) List(_ context.Context, offset, limit uint64) (result []V, total uint64, err error) {
	s.Lock()
	defer s.Unlock()

	keys := make([]K, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	total = uint64(len(keys))
	if offset >= total {
		return nil, total, nil
	}

	if limit > total-offset {
		limit = total - offset
	}
	end := offset + limit

	result = make([]V, end-offset)
	for i := offset; i < end; i++ {
		result[i-offset] = s.data[keys[i]]
	}

	return result, total, nil
}

func (s *inMemoryStorage[K, V]) Delete(_ context.Context, key K) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; !ok {
		return errors.ErrNotFound
	}

	delete(s.data, key)

	return nil
}
