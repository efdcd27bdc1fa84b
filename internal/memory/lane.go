package memory

import "sync"

// laneLock serializes operations per conversation while letting different
// conversations proceed in parallel. The global mutex is held only long
// enough to look up or create the per-conversation lane.
type laneLock struct {
	mu    sync.Mutex
	lanes map[string]*lane
}

// lane counts goroutines holding or waiting on it; it is removed from the
// map when the count drops to zero.
type lane struct {
	mu   sync.Mutex
	refs int
}

func newLaneLock() *laneLock {
	return &laneLock{lanes: make(map[string]*lane)}
}

// acquire locks the lane for key. The caller must call release with the
// same key when done.
func (l *laneLock) acquire(key string) {
	l.mu.Lock()
	ln, ok := l.lanes[key]
	if !ok {
		ln = &lane{}
		l.lanes[key] = ln
	}
	ln.refs++
	l.mu.Unlock()

	// Lock outside the global mutex so other conversations are not blocked.
	ln.mu.Lock()
}

// release unlocks the lane for key.
func (l *laneLock) release(key string) {
	l.mu.Lock()
	ln, ok := l.lanes[key]
	if !ok {
		l.mu.Unlock()
		return
	}
	ln.refs--
	if ln.refs == 0 {
		delete(l.lanes, key)
	}
	l.mu.Unlock()

	ln.mu.Unlock()
}

// size returns the number of live lanes.
func (l *laneLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lanes)
}
