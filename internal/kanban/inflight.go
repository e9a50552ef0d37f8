package kanban

import "sync"

// InFlight tracks candidates that have a stage transition waiting on the
// store. Different candidates never block each other.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[string]struct{})}
}

// Acquire claims the slot for id and reports false if it is already taken.
func (f *InFlight) Acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

func (f *InFlight) Release(id string) {
	f.mu.Lock()
	delete(f.ids, id)
	f.mu.Unlock()
}

func (f *InFlight) Busy(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, busy := f.ids[id]
	return busy
}
