package service

import "sync"

// sessionLocks hands out one mutex per session. An entry lives only while someone holds or waits for it.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	if l.entries == nil {
		l.entries = make(map[string]*sessionLock)
	}
	entry, ok := l.entries[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.entries[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, sessionID)
		}
		l.mu.Unlock()
	}
}

// lockPair locks two sessions in a fixed order so that concurrent merges cannot deadlock.
func (l *sessionLocks) lockPair(a, b string) func() {
	if a == b {
		return l.lock(a)
	}
	if b < a {
		a, b = b, a
	}
	unlockA := l.lock(a)
	unlockB := l.lock(b)
	return func() {
		unlockB()
		unlockA()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
