package history

import (
	"hash/fnv"
	"sync"

	"github.com/tutorbot/tutor/pkg/reply"
)

const shardCount = 64

// shard holds the entries whose keys hash to it.
type shard struct {
	mu      sync.RWMutex
	entries map[string][]reply.MessageRef
}

// InMemoryStore is a sharded, thread-safe, in-memory Store. Sharding by
// identity key keeps unrelated conversations off each other's locks.
type InMemoryStore struct {
	shards [shardCount]shard
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{}
	for i := range s.shards {
		s.shards[i].entries = make(map[string][]reply.MessageRef)
	}
	return s
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%shardCount]
}

// Append adds outbound refs to the inbound message's entry.
func (s *InMemoryStore) Append(inbound reply.MessageRef, outbound ...reply.MessageRef) {
	key := inbound.Key()
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.entries[key] = append(sh.entries[key], outbound...)
}

// Lookup returns a copy of the inbound message's outbound list.
func (s *InMemoryStore) Lookup(inbound reply.MessageRef) ([]reply.MessageRef, bool) {
	key := inbound.Key()
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	entry, ok := sh.entries[key]
	if !ok {
		return nil, false
	}
	out := make([]reply.MessageRef, len(entry))
	copy(out, entry)
	return out, true
}

// Replace overwrites the inbound message's outbound list.
func (s *InMemoryStore) Replace(inbound reply.MessageRef, outbound []reply.MessageRef) {
	key := inbound.Key()
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	cp := make([]reply.MessageRef, len(outbound))
	copy(cp, outbound)
	sh.entries[key] = cp
}

// Remove deletes the inbound message's entry.
func (s *InMemoryStore) Remove(inbound reply.MessageRef) {
	key := inbound.Key()
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.entries, key)
}

// Len returns the number of tracked inbound messages.
func (s *InMemoryStore) Len() int {
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		total += len(sh.entries)
		sh.mu.RUnlock()
	}
	return total
}
