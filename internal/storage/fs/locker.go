package fs

import "sync"

// Locker hands out one mutex per note id. Entries are dropped once nobody
// holds or waits for them.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*noteLock
}

type noteLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*noteLock)}
}

func (l *Locker) Lock(id string) func() {
	l.mu.Lock()
	nl, ok := l.locks[id]
	if !ok {
		nl = &noteLock{}
		l.locks[id] = nl
	}
	nl.refs++
	l.mu.Unlock()

	nl.mu.Lock()
	return func() {
		nl.mu.Unlock()
		l.mu.Lock()
		nl.refs--
		if nl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// LockPair locks two ids in a fixed order so concurrent renames cannot
// deadlock.
func (l *Locker) LockPair(a, b string) func() {
	if a == b {
		return l.Lock(a)
	}
	if b < a {
		a, b = b, a
	}
	ua := l.Lock(a)
	ub := l.Lock(b)
	return func() {
		ub()
		ua()
	}
}

func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
