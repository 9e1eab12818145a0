package session

import (
	"log"
	"math/rand/v2"
	"sync"

	"cockfight/pkg/conference"
	"cockfight/pkg/fighter"
)

// RandFactory seeds the randomness of a new session.
type RandFactory func(sessionID string) Rand

// Store owns every session of the process. Sessions share only the read-only
// roster and the generator.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	fighters []*fighter.Fighter
	gen      conference.Generator
	newRand  RandFactory
}

// NewStore with a nil factory seeds each session from the runtime source.
func NewStore(fighters []*fighter.Fighter, gen conference.Generator, newRand RandFactory) *Store {
	if newRand == nil {
		newRand = func(string) Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return &Store{
		sessions: make(map[string]*Session),
		fighters: fighters,
		gen:      gen,
		newRand:  newRand,
	}
}

func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := New(id, st.fighters, st.gen, st.newRand(id))
	st.sessions[id] = s
	log.Printf("[Session] created %s", id)
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Reset clears a session's draw and conferences. It reports whether the
// session existed.
func (st *Store) Reset(id string) bool {
	s, ok := st.Get(id)
	if !ok {
		return false
	}
	s.Reset()
	return true
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
