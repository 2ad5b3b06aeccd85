package dataroom

import "sync"

// mutationLocks serializes mutations that read-then-write the children of a
// parent folder.
//
// Creations and renames under the same parent exclude each other through a
// per-parent mutex. A folder cascade walks an entire subtree, so it takes the
// tree lock exclusively and waits for every in-flight mutation. Parent
// entries are reference counted and dropped when the last holder releases.
//
// A disabled mutationLocks hands out no-op unlock functions.
type mutationLocks struct {
	enabled bool

	tree sync.RWMutex

	mu      sync.Mutex
	parents map[string]*parentLock
}

type parentLock struct {
	sync.Mutex
	refs int
}

func newMutationLocks(enabled bool) *mutationLocks {
	return &mutationLocks{
		enabled: enabled,
		parents: make(map[string]*parentLock),
	}
}

func noop() {}

// lockParent locks the children of parentID and returns the unlock function.
func (l *mutationLocks) lockParent(parentID string) func() {
	if !l.enabled {
		return noop
	}

	l.tree.RLock()

	l.mu.Lock()
	entry, ok := l.parents[parentID]
	if !ok {
		entry = &parentLock{}
		l.parents[parentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.parents, parentID)
		}
		l.mu.Unlock()

		l.tree.RUnlock()
	}
}

// lockTree excludes every other mutation and returns the unlock function.
func (l *mutationLocks) lockTree() func() {
	if !l.enabled {
		return noop
	}

	l.tree.Lock()
	return l.tree.Unlock
}

// held returns the number of parents with an active holder or waiter.
func (l *mutationLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.parents)
}
