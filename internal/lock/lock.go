// Package lock provides per-user locking so that all economy mutations
// for a single user serialize within the process.
package lock

import "sync"

// UserLock hands out one mutex per user id.
type UserLock struct {
	locks sync.Map // map[int64]*sync.Mutex
}

// New creates a UserLock.
func New() *UserLock {
	return &UserLock{}
}

func (ul *UserLock) get(userID int64) *sync.Mutex {
	if v, ok := ul.locks.Load(userID); ok {
		return v.(*sync.Mutex)
	}
	v, _ := ul.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Lock acquires the lock for a user.
func (ul *UserLock) Lock(userID int64) {
	ul.get(userID).Lock()
}

// Unlock releases the lock for a user.
func (ul *UserLock) Unlock(userID int64) {
	if v, ok := ul.locks.Load(userID); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// WithLock runs fn while holding the user's lock.
func (ul *UserLock) WithLock(userID int64, fn func() error) error {
	ul.Lock(userID)
	defer ul.Unlock(userID)
	return fn()
}

// LockPair acquires two user locks in id order, avoiding the transfer
// deadlock where two goroutines lock the same pair in opposite order.
func (ul *UserLock) LockPair(a, b int64) {
	if a == b {
		ul.Lock(a)
		return
	}
	if a > b {
		a, b = b, a
	}
	ul.Lock(a)
	ul.Lock(b)
}

// UnlockPair releases two user locks.
func (ul *UserLock) UnlockPair(a, b int64) {
	if a == b {
		ul.Unlock(a)
		return
	}
	ul.Unlock(a)
	ul.Unlock(b)
}
