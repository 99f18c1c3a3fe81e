package publisher

import (
	"sync"

	audit "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
)

// ringBuffer is a bounded FIFO. When full, the oldest event is dropped.
type ringBuffer struct {
	mu      sync.Mutex
	events  []audit.Event
	head    int // next write
	tail    int // next read
	count   int
	dropped int64
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &ringBuffer{events: make([]audit.Event, capacity)}
}

// enqueue adds e and reports whether an older event had to be dropped.
func (b *ringBuffer) enqueue(e audit.Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := false
	if b.count == len(b.events) {
		b.tail = (b.tail + 1) % len(b.events)
		b.count--
		b.dropped++
		dropped = true
	}
	b.events[b.head] = e
	b.head = (b.head + 1) % len(b.events)
	b.count++
	return dropped
}

func (b *ringBuffer) dequeueBatch(n int) []audit.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.count {
		n = b.count
	}
	if n == 0 {
		return nil
	}
	out := make([]audit.Event, n)
	for i := range n {
		out[i] = b.events[b.tail]
		b.events[b.tail] = audit.Event{}
		b.tail = (b.tail + 1) % len(b.events)
	}
	b.count -= n
	return out
}

func (b *ringBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
