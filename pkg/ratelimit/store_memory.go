package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory Store.
//
// It bounds memory with a maximum key count and evicts the least recently
// used identifiers when the bound is reached. Expired entries are left in
// place until Cleanup runs or the identifier is seen again.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]Entry
	maxKeys   int
	lru       *lruList
	evictions int
}

// MemoryStoreConfig holds configuration for MemoryStore.
type MemoryStoreConfig struct {
	// MaxKeys is the maximum number of identifiers kept in memory.
	// Default: 10000
	MaxKeys int
}

// lruList maintains a doubly-linked list of keys ordered by last access.
// head is the most recently used key.
type lruList struct {
	head *lruNode
	tail *lruNode
	keys map[string]*lruNode
}

type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

// NewMemoryStore creates an in-memory store with the given configuration.
func NewMemoryStore(cfg MemoryStoreConfig) *MemoryStore {
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 10000
	}
	return &MemoryStore{
		entries: make(map[string]Entry),
		maxKeys: cfg.MaxKeys,
		lru:     &lruList{keys: make(map[string]*lruNode)},
	}
}

// Get returns the entry stored for key.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if ok {
		s.lru.touch(key)
	}
	return e, ok, nil
}

// Set stores entry under key, evicting the least recently used identifiers
// first when a new key would exceed MaxKeys.
func (s *MemoryStore) Set(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxKeys {
		s.evictLRU()
	}
	s.entries[key] = entry
	s.lru.touch(key)
	return nil
}

// Cleanup removes every entry whose window has ended at now and returns the
// number of removed keys.
func (s *MemoryStore) Cleanup(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, key)
			s.lru.remove(key)
			removed++
		}
	}
	return removed, nil
}

// KeyCount returns the number of identifiers currently tracked.
func (s *MemoryStore) KeyCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// Evictions returns how many keys have been dropped by the LRU bound.
func (s *MemoryStore) Evictions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictions
}

// evictLRU drops 10% of MaxKeys (at least one) from the cold end of the list.
// Must be called with s.mu held.
func (s *MemoryStore) evictLRU() {
	n := s.maxKeys / 10
	if n < 1 {
		n = 1
	}
	for i := 0; i < n && s.lru.tail != nil; i++ {
		key := s.lru.tail.key
		delete(s.entries, key)
		s.lru.remove(key)
		s.evictions++
	}
}

func (l *lruList) touch(key string) {
	if _, ok := l.keys[key]; ok {
		l.remove(key)
	}
	node := &lruNode{key: key, next: l.head}
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.keys[key] = node
}

func (l *lruList) remove(key string) {
	node, ok := l.keys[key]
	if !ok {
		return
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	delete(l.keys, key)
}
