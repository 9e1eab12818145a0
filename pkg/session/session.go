// Package session keeps one event per chat: the roster, the current draw and
// the three conferences derived from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"cockfight/pkg/conference"
	"cockfight/pkg/fighter"
	"cockfight/pkg/pairing"
)

var (
	ErrPairingNotDrawn = errors.New("pairing not drawn")
	ErrUnknownPair     = errors.New("unknown pair")
	// ErrAllComplete is returned by NextPair once every conference is done.
	ErrAllComplete = errors.New("all conferences complete")
)

// Rand is the randomness a session needs: a shuffle for the draw and a pick
// for conference winners. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Shuffle(n int, swap func(i, j int))
	IntN(n int) int
}

// lockedRand makes a Rand safe to share between concurrent advances.
type lockedRand struct {
	mu  sync.Mutex
	rng Rand
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// Session lock order: mu, then a conference's own locks. Draw and Reset take
// mu for writing, so they wait for in-flight advances and block new ones.
type Session struct {
	id       string
	fighters []*fighter.Fighter
	gen      conference.Generator
	rng      *lockedRand

	mu          sync.RWMutex
	pairing     *pairing.Pairing
	conferences [pairing.PairCount]*conference.State
}

func New(id string, fighters []*fighter.Fighter, gen conference.Generator, rng Rand) *Session {
	return &Session{
		id:       id,
		fighters: fighters,
		gen:      gen,
		rng:      &lockedRand{rng: rng},
	}
}

func (s *Session) ID() string {
	return s.id
}

// Fighters is the registry snapshot, shared read-only.
func (s *Session) Fighters() []*fighter.Fighter {
	return append([]*fighter.Fighter(nil), s.fighters...)
}

// Pairing returns the current draw or nil.
func (s *Session) Pairing() *pairing.Pairing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairing
}

// Draw replaces any previous draw and discards every conference derived from it.
func (s *Session) Draw() (*pairing.Pairing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := pairing.Draw(s.fighters, s.rng)
	if err != nil {
		return nil, err
	}
	s.pairing = p
	for i, pair := range p.Pairs() {
		s.conferences[i] = conference.NewState(pairing.PairID(i), pair, s.rng.IntN)
	}
	log.Printf("[Session] %s drew %s", s.id, p)
	return p, nil
}

// Reset drops the draw and all conference state. The roster is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pairing = nil
	s.conferences = [pairing.PairCount]*conference.State{}
	log.Printf("[Session] %s reset", s.id)
}

func (s *Session) conferenceLocked(id pairing.PairID) (*conference.State, error) {
	if s.pairing == nil {
		return nil, ErrPairingNotDrawn
	}
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPair, int(id))
	}
	return s.conferences[id], nil
}

// Conference is the read-only view of one pair's conference.
func (s *Session) Conference(id pairing.PairID) (conference.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.conferenceLocked(id)
	if err != nil {
		return conference.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Conferences returns snapshots of all three conferences in fight order.
func (s *Session) Conferences() ([]conference.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pairing == nil {
		return nil, ErrPairingNotDrawn
	}
	out := make([]conference.Snapshot, 0, pairing.PairCount)
	for _, c := range s.conferences {
		out = append(out, c.Snapshot())
	}
	return out, nil
}

// Advance resolves the next slot of one pair. The session read lock is held
// for the whole call so a draw cannot replace the conference underneath it.
func (s *Session) Advance(ctx context.Context, id pairing.PairID) (conference.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.conferenceLocked(id)
	if err != nil {
		return conference.Slot{}, err
	}
	return c.Advance(ctx, s.gen)
}

// NextPair is the first fight whose conference is not complete.
func (s *Session) NextPair() (pairing.PairID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pairing == nil {
		return 0, ErrPairingNotDrawn
	}
	for i, c := range s.conferences {
		if c.Phase() != conference.Complete {
			return pairing.PairID(i), nil
		}
	}
	return 0, ErrAllComplete
}
