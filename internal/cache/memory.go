package cache

import (
	"context"
	"sync"
)

// MemoryBuffer implements Buffer in process memory.
type MemoryBuffer struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

func NewMemoryBuffer(capacity int) *MemoryBuffer {
	return &MemoryBuffer{capacity: capacity, entries: make([]Entry, 0, capacity)}
}

func (b *MemoryBuffer) Capacity() int { return b.capacity }

func (b *MemoryBuffer) Ping(context.Context) error { return nil }

func (b *MemoryBuffer) Push(_ context.Context, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	if over := len(b.entries) - b.capacity; over > 0 {
		b.entries = append(b.entries[:0], b.entries[over:]...)
	}
	return nil
}

func (b *MemoryBuffer) Recent(_ context.Context, limit int) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if limit <= 0 {
		return []Entry{}, nil
	}
	start := len(b.entries) - limit
	if start < 0 {
		start = 0
	}
	return append([]Entry{}, b.entries[start:]...), nil
}

func (b *MemoryBuffer) Len(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries), nil
}

func (b *MemoryBuffer) Clear(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.entries)
	b.entries = b.entries[:0]
	return n, nil
}

var (
	_ Buffer = (*MemoryBuffer)(nil)
	_ Buffer = (*RedisBuffer)(nil)
)
