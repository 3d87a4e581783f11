package storage

import "context"

type Storage[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, error)
	Update(ctx context.Context, key K, value V) error
	Upsert(ctx context.Context, key K, value V) error
	List(ctx context.Context, offset, limit uint64) ([]V, uint64, error)
	Delete(ctx context.Context, key K) error
}
