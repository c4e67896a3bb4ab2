package services

import (
	"sync"
	"time"

	"frameit/internal/domain"
)

// GrantCache holds access grants issued after successful code verification.
// It is a non-authoritative capability cache: entries expire after
// domain.GrantTTL, evaluated lazily on Check, and losing one only forces the
// visitor back through verification. Grants are keyed by event and subject
// (the visitor's identifier, or "" for an anonymous single-client cache).
type GrantCache struct {
	mu     sync.Mutex
	grants map[grantKey]domain.AccessGrant
	now    func() time.Time
}

type grantKey struct {
	eventID string
	subject string
}

// NewGrantCache returns an empty grant cache using the real clock.
func NewGrantCache() *GrantCache {
	return &GrantCache{
		grants: make(map[grantKey]domain.AccessGrant),
		now:    time.Now,
	}
}

// Record stores a grant for the event and subject, stamped with the current time.
func (c *GrantCache) Record(eventID, subject string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grants[grantKey{eventID, subject}] = domain.AccessGrant{
		EventID:    eventID,
		VerifiedAt: c.now(),
	}
}

// Check reports whether an unexpired grant exists for the event and subject.
// Expired entries are dropped on the way out.
func (c *GrantCache) Check(eventID, subject string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := grantKey{eventID, subject}
	grant, ok := c.grants[key]
	if !ok {
		return false
	}
	if c.now().Sub(grant.VerifiedAt) >= domain.GrantTTL {
		delete(c.grants, key)
		return false
	}
	return true
}
