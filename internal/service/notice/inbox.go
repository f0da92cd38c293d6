package notice

import (
	"sync"

	"restaurant-frontend/internal/domain"
)

const defaultCapacity = 20

// Inbox queues toasts for one profile until the page drains them. When full,
// the oldest notice is dropped. Consecutive duplicates collapse into one.
type Inbox struct {
	mu       sync.Mutex
	items    []domain.Notice
	capacity int
}

// NewInbox returns an Inbox holding at most capacity notices (default 20).
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Inbox{capacity: capacity}
}

func (i *Inbox) Push(n domain.Notice) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.items) > 0 && i.items[len(i.items)-1] == n {
		return
	}
	if len(i.items) == i.capacity {
		i.items = i.items[1:]
	}
	i.items = append(i.items, n)
}

// Drain returns the pending notices oldest first and empties the inbox.
func (i *Inbox) Drain() []domain.Notice {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.items
	i.items = nil
	if out == nil {
		out = []domain.Notice{}
	}
	return out
}
