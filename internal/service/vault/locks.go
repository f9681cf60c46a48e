package vault

import "sync"

// LockTable serializes mutating operations per folder id, making the
// check-then-act sequences (duplicate-name check before save, destination
// check before rename, grant count before the is_shared flip) effectively
// atomic for in-process callers. Entries are never evicted; the table grows
// with the number of distinct folders touched, which stays small.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockTable creates an empty lock table. Folder and file services must
// share one instance so they contend on the same folder locks.
func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the folder id and returns the unlock function.
func (t *LockTable) Lock(folderID string) func() {
	t.mu.Lock()
	l, ok := t.locks[folderID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[folderID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
