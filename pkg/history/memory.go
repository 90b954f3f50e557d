package history

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity bounds a Memory store created with capacity zero.
const DefaultCapacity = 1000

// Memory keeps the most recent records in process memory.
type Memory struct {
	mu      sync.Mutex
	records []Record
	max     int
	closed  bool
	now     func() time.Time
}

// NewMemory returns a store that keeps at most capacity records, dropping
// the oldest first.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{max: capacity, now: time.Now}
}

func (m *Memory) Add(_ context.Context, r Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Record{}, ErrClosed
	}
	r = prepare(r, m.now())
	m.records = append(m.records, r)
	if over := len(m.records) - m.max; over > 0 {
		m.records = append(m.records[:0:0], m.records[over:]...)
	}
	return r, nil
}

func (m *Memory) List(_ context.Context, f Filter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]Record, 0, min(f.limit(), len(m.records)))
	for i := len(m.records) - 1; i >= 0 && len(out) < f.limit(); i-- {
		if f.DNI != "" && m.records[i].DNI != f.DNI {
			continue
		}
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *Memory) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}

var _ Store = (*Memory)(nil)
