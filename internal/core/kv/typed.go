package kv

import "context"

// TypedKV reads and writes values of one type under a key namespace, so
// callers such as the UI preferences and recent-files list never collide
// with the recovery slot.
type TypedKV[T any] struct {
	store     KV
	namespace string
}

// Scoped returns a TypedKV whose keys are stored as "namespace:key".
func Scoped[T any](store KV, namespace string) *TypedKV[T] {
	return &TypedKV[T]{store: store, namespace: namespace}
}

// Key returns the full key stored in the underlying KV.
func (t *TypedKV[T]) Key(key string) string {
	return t.namespace + ":" + key
}

func (t *TypedKV[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	err := t.store.Get(ctx, t.Key(key), &v)
	return v, err
}

// GetOr is Get with a fallback for missing or expired keys. Other errors are
// returned alongside the fallback.
func (t *TypedKV[T]) GetOr(ctx context.Context, key string, fallback T) (T, error) {
	v, err := t.Get(ctx, key)
	switch {
	case err == nil:
		return v, nil
	case IsNotFound(err):
		return fallback, nil
	default:
		return fallback, err
	}
}

func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	return t.store.Set(ctx, t.Key(key), value)
}

func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.Key(key))
}
