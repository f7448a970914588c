package gesture

import "github.com/embackup/embackup/pkg/pointer"

// HistoryBuffer is a fixed-capacity FIFO of recent samples. It is owned by a
// single Machine and is not safe for concurrent use.
type HistoryBuffer struct {
	items []pointer.Position
	start int
	size  int
}

// NewHistoryBuffer creates a buffer holding at most capacity positions.
// capacity must be at least 1.
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity < 1 {
		panic("gesture: history capacity must be at least 1")
	}
	return &HistoryBuffer{items: make([]pointer.Position, capacity)}
}

// Push appends p, evicting the oldest position when the buffer is full
func (b *HistoryBuffer) Push(p pointer.Position) {
	if b.size < len(b.items) {
		b.items[(b.start+b.size)%len(b.items)] = p
		b.size++
		return
	}
	b.items[b.start] = p
	b.start = (b.start + 1) % len(b.items)
}

// Clear empties the buffer
func (b *HistoryBuffer) Clear() {
	b.start = 0
	b.size = 0
}

// Snapshot returns the positions oldest first
func (b *HistoryBuffer) Snapshot() []pointer.Position {
	out := make([]pointer.Position, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.items[(b.start+i)%len(b.items)]
	}
	return out
}

// Contains reports whether p is in the buffer
func (b *HistoryBuffer) Contains(p pointer.Position) bool {
	for i := 0; i < b.size; i++ {
		if b.items[(b.start+i)%len(b.items)] == p {
			return true
		}
	}
	return false
}

func (b *HistoryBuffer) Len() int {
	return b.size
}

func (b *HistoryBuffer) Cap() int {
	return len(b.items)
}
