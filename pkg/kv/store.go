// Package kv provides a generic map guarded by a mutex.
package kv

import "sync"

// Store is a map safe for concurrent use.
type Store[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{data: make(map[K]V)}
}

func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
}

func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Swap stores value and returns what it replaced.
func (s *Store[K, V]) Swap(key K, value V) (prev V, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, replaced = s.data[key]
	s.data[key] = value
	return prev, replaced
}

// DeleteIf removes key only while match holds for its current value, so a
// caller can drop its own entry without clobbering a newer one.
func (s *Store[K, V]) DeleteIf(key K, match func(V) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if val, ok := s.data[key]; ok && match(val) {
		delete(s.data, key)
		return true
	}
	return false
}

// DeleteFunc removes every entry for which match holds and returns how many
// were removed.
func (s *Store[K, V]) DeleteFunc(match func(K, V) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, v := range s.data {
		if match(k, v) {
			delete(s.data, k)
			n++
		}
	}
	return n
}

// Range calls fn for each entry until it returns false. fn runs under the
// read lock and must not call back into the Store.
func (s *Store[K, V]) Range(fn func(K, V) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.data {
		if !fn(k, v) {
			return
		}
	}
}
