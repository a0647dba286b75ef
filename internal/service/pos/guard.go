package pos

import (
	"sync"

	"golang.org/x/sync/semaphore"

	"duka-pos/internal/domain"
)

// guards hands out one single-slot semaphore per session. A second caller
// is turned away with ErrBusy rather than queued behind the first.
//
// An entry lives only while some caller holds or is contending for it, so
// unknown or expired session ids leave nothing behind.
type guards struct {
	mu   sync.Mutex
	sems map[string]*guard
}

type guard struct {
	sem  *semaphore.Weighted
	refs int
}

func newGuards() *guards {
	return &guards{sems: make(map[string]*guard)}
}

func (g *guards) acquire(key string) (func(), error) {
	g.mu.Lock()
	gd, ok := g.sems[key]
	if !ok {
		gd = &guard{sem: semaphore.NewWeighted(1)}
		g.sems[key] = gd
	}
	gd.refs++
	g.mu.Unlock()

	if !gd.sem.TryAcquire(1) {
		g.unref(key, gd)
		return nil, domain.ErrBusy
	}
	return func() {
		gd.sem.Release(1)
		g.unref(key, gd)
	}, nil
}

func (g *guards) unref(key string, gd *guard) {
	g.mu.Lock()
	defer g.mu.Unlock()
	gd.refs--
	if gd.refs == 0 {
		delete(g.sems, key)
	}
}
