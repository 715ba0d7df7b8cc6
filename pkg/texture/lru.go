package texture

import (
	"sync"
	"sync/atomic"
)

// shardCount must be a power of two so shard selection is a mask.
const (
	shardCount = 16
	shardMask  = shardCount - 1
)

// lruNode is a node of the intrusive recency list; head is most recent.
type lruNode[K comparable, V any] struct {
	key        K
	value      V
	prev, next *lruNode[K, V]
}

type lruShard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*lruNode[K, V]
	head    *lruNode[K, V]
	tail    *lruNode[K, V]
}

// shardedLRU is a fixed-capacity LRU map split into independently locked
// shards to keep contention low when many render workers fetch at once.
type shardedLRU[K comparable, V any] struct {
	shards   [shardCount]*lruShard[K, V]
	hash     func(K) uint64
	capacity int // per shard

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func newShardedLRU[K comparable, V any](capacity int, hash func(K) uint64) *shardedLRU[K, V] {
	c := &shardedLRU[K, V]{
		hash:     hash,
		capacity: max(1, capacity),
	}
	for i := range c.shards {
		c.shards[i] = &lruShard[K, V]{entries: make(map[K]*lruNode[K, V])}
	}
	return c
}

func (c *shardedLRU[K, V]) shard(key K) *lruShard[K, V] {
	return c.shards[c.hash(key)&shardMask]
}

// Get returns the value for key and marks it most recently used
func (c *shardedLRU[K, V]) Get(key K) (V, bool) {
	s := c.shard(key)
	s.mu.Lock()
	node, ok := s.entries[key]
	if ok {
		s.moveToFront(node)
	}
	s.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return node.value, true
}

// Peek returns the value for key without touching recency or statistics
func (c *shardedLRU[K, V]) Peek(key K) (V, bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if node, ok := s.entries[key]; ok {
		return node.value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key, evicting the least recently used entries of the shard if full
func (c *shardedLRU[K, V]) Set(key K, value V) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if node, ok := s.entries[key]; ok {
		node.value = value
		s.moveToFront(node)
		return
	}

	for len(s.entries) >= c.capacity && s.tail != nil {
		oldest := s.tail
		s.unlink(oldest)
		delete(s.entries, oldest.key)
		c.evictions.Add(1)
	}

	node := &lruNode[K, V]{key: key, value: value}
	s.pushFront(node)
	s.entries[key] = node
}

// Len returns the number of entries across all shards
func (c *shardedLRU[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Clear drops every entry; statistics are kept
func (c *shardedLRU[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*lruNode[K, V])
		s.head, s.tail = nil, nil
		s.mu.Unlock()
	}
}

func (s *lruShard[K, V]) pushFront(node *lruNode[K, V]) {
	node.prev = nil
	node.next = s.head
	if s.head != nil {
		s.head.prev = node
	}
	s.head = node
	if s.tail == nil {
		s.tail = node
	}
}

func (s *lruShard[K, V]) moveToFront(node *lruNode[K, V]) {
	if node == s.head {
		return
	}
	s.unlink(node)
	s.pushFront(node)
}

func (s *lruShard[K, V]) unlink(node *lruNode[K, V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		s.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		s.tail = node.prev
	}
	node.prev, node.next = nil, nil
}
