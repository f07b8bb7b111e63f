package engine

import "sync"

// groupLocks serializes writers per group ID. Entries are dropped once no
// goroutine holds or waits on them.
type groupLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newGroupLocks() *groupLocks {
	return &groupLocks{entries: make(map[string]*lockEntry)}
}

// lock blocks until the caller is the only writer for groupID and returns
// the matching unlock.
func (l *groupLocks) lock(groupID string) func() {
	l.mu.Lock()
	e, ok := l.entries[groupID]
	if !ok {
		e = &lockEntry{}
		l.entries[groupID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, groupID)
		}
		l.mu.Unlock()
	}
}

func (l *groupLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
