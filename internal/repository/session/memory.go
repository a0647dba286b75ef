package session

import (
	"context"
	"sync"
	"time"

	"duka-pos/internal/domain"
)

type entry struct {
	session   Session
	expiresAt time.Time
}

type memoryRepo struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]entry
	nextSweep time.Time
}

// NewMemory keeps sessions in process. It is used when no Redis is configured.
func NewMemory(ttl time.Duration) Repository {
	return &memoryRepo{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (r *memoryRepo) Get(_ context.Context, storeID, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(storeID, id)
	e, ok := r.entries[k]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.ttl > 0 && r.now().After(e.expiresAt) {
		delete(r.entries, k)
		return nil, domain.ErrNotFound
	}
	s := e.session.Clone()
	return &s, nil
}

func (r *memoryRepo) Save(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	r.entries[key(s.StoreID, s.ID)] = entry{session: s.Clone(), expiresAt: now.Add(r.ttl)}
	return nil
}

// sweep drops expired entries, at most once per ttl. Callers hold r.mu.
func (r *memoryRepo) sweep(now time.Time) {
	if r.ttl <= 0 || now.Before(r.nextSweep) {
		return
	}
	for k, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, k)
		}
	}
	r.nextSweep = now.Add(r.ttl)
}

func (r *memoryRepo) Delete(_ context.Context, storeID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(storeID, id)
	if _, ok := r.entries[k]; !ok {
		return domain.ErrNotFound
	}
	delete(r.entries, k)
	return nil
}
