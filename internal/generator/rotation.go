package generator

import (
	"fmt"
	"sync"
)

// Rotation tracks which catalog entry is current. It is safe for concurrent
// use by the send loop and the status server.
type Rotation struct {
	mu    sync.Mutex
	index int
	size  int
}

func NewRotation(size int) *Rotation {
	return &Rotation{size: size}
}

func (r *Rotation) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Advance moves to the next entry, wrapping at the end, and returns it.
func (r *Rotation) Advance() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = (r.index + 1) % r.size
	return r.index
}

func (r *Rotation) Set(index int) error {
	if index < 0 || index >= r.size {
		return fmt.Errorf("index %d out of range [0, %d)", index, r.size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = index
	return nil
}
