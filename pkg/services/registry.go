package services

import (
	"sync"

	"tunebook/pkg/seed"
	"tunebook/pkg/store"
)

// Registry wires every entity service onto one store and one lock. The
// shared RWMutex restores the exclusive-access guarantee the original
// single-threaded host provided: a mutation that touches two records (e.g.
// accepting a friend request) is all-or-nothing with respect to other
// calls.
type Registry struct {
	mu sync.RWMutex
	st *store.Store

	Profiles    *ProfileService
	Tunes       *TuneService
	Sessions    *SessionService
	Instruments *InstrumentService
	Forums      *ForumService
}

// New builds the service registry over an opened store.
func New(st *store.Store) *Registry {
	r := &Registry{st: st}
	r.Profiles = &ProfileService{st: st, mu: &r.mu}
	r.Tunes = &TuneService{st: st, mu: &r.mu}
	r.Sessions = &SessionService{st: st, mu: &r.mu}
	r.Instruments = &InstrumentService{st: st, mu: &r.mu}
	r.Forums = &ForumService{st: st, mu: &r.mu}
	return r
}

// Reseed runs the seed loader under the registry's write lock, so a
// scheduled load is mutually exclusive with every service call: its
// emptiness check and record writes can never interleave with a concurrent
// tune mutation.
func (r *Registry) Reseed(seedPath string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return seed.Load(r.st, seedPath)
}
