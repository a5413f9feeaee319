package token

import (
	"sync"
	"time"
)

// RevocationList records refresh-token jtis that must no longer verify.
// Entries only need to survive until the token's own expiry; after that the
// signature check rejects it anyway.
type RevocationList interface {
	Revoke(jti string, expiresAt time.Time)
	IsRevoked(jti string) bool
}

// MemoryRevocationList is a process-local revocation list. Sufficient for a
// single-instance deployment; a multi-instance deployment would back this
// interface with a shared store instead.
type MemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// SetClock replaces the list's time source for expiry tests.
func (l *MemoryRevocationList) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Revoke blacklists a jti until expiresAt. Expired entries are swept
// opportunistically on each write.
func (l *MemoryRevocationList) Revoke(jti string, expiresAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, exp := range l.entries {
		if now.After(exp) {
			delete(l.entries, id)
		}
	}
	l.entries[jti] = expiresAt
}

// IsRevoked reports whether the jti is currently blacklisted.
func (l *MemoryRevocationList) IsRevoked(jti string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.entries[jti]
	if !ok {
		return false
	}
	if l.now().After(exp) {
		delete(l.entries, jti)
		return false
	}
	return true
}
