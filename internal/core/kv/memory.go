package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/colonyops/quill/pkg/kv"
)

// Memory is a process-local KV. It is used when the database cannot be opened
// so the editor keeps working without durable recovery.
type Memory struct {
	data *kv.Store[string, Entry]
	now  func() time.Time
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: kv.New[string, Entry](), now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	e, err := m.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(ctx context.Context, key string, value any) error {
	return m.SetTTL(ctx, key, value, 0)
}

func (m *Memory) SetTTL(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	now := m.now()
	e := Entry{Key: key, Value: data, CreatedAt: now, UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}
	if prev, ok := m.data.Get(key); ok {
		e.CreatedAt = prev.CreatedAt
	}
	m.data.Set(key, e)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	_, err := m.GetRaw(ctx, key)
	return err == nil, nil
}

func (m *Memory) ListKeys(_ context.Context) ([]string, error) {
	now := m.now()
	var keys []string
	m.data.Range(func(k string, e Entry) bool {
		if !expired(e, now) {
			keys = append(keys, k)
		}
		return true
	})
	slices.Sort(keys)
	return keys, nil
}

func (m *Memory) GetRaw(_ context.Context, key string) (Entry, error) {
	e, ok := m.data.Get(key)
	if !ok {
		return Entry{}, fmt.Errorf("kv get %q: %w", key, sql.ErrNoRows)
	}
	if expired(e, m.now()) {
		m.data.Delete(key)
		return Entry{}, fmt.Errorf("kv get %q: %w", key, sql.ErrNoRows)
	}
	return e, nil
}

// SweepExpired drops entries whose TTL has passed.
func (m *Memory) SweepExpired(_ context.Context) error {
	now := m.now()
	m.data.DeleteFunc(func(_ string, e Entry) bool { return expired(e, now) })
	return nil
}

func expired(e Entry, now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}
