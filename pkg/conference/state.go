// Package conference runs one fight's press conference: six ordered slots,
// speakers alternating A,B,A,B,A,B across three rounds.
package conference

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"cockfight/pkg/fighter"
	"cockfight/pkg/generation"
	"cockfight/pkg/pairing"
	"cockfight/pkg/prompts"
)

const (
	SlotCount = 6
	Rounds    = SlotCount / 2
)

var ErrConferenceComplete = errors.New("conference already complete")

type SlotStatus int

const (
	Pending SlotStatus = iota
	Generated
	// Failed text is retried by the next Advance; it is not terminal.
	Failed
)

func (s SlotStatus) String() string {
	switch s {
	case Generated:
		return "generated"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Complete
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in progress"
	case Complete:
		return "complete"
	default:
		return "not started"
	}
}

// Artifact is what the audience sees for a resolved slot. Image is nil when
// UsedFallback is set.
type Artifact struct {
	Text         string
	Image        []byte
	UsedFallback bool
}

type Slot struct {
	Index     int
	Round     int
	Speaker   *fighter.Fighter
	Opponent  *fighter.Fighter
	Status    SlotStatus
	Artifact  *Artifact
	Attempts  int
	LastError error
}

// Generator is the subset of generation.Gateway a conference needs.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string, refs []fighter.Asset) ([]byte, error)
}

var _ Generator = (*generation.Gateway)(nil)

// SlotError reports a slot whose text could not be generated. The slot stays
// in place and the next Advance retries it.
type SlotError struct {
	Index int
	Round int
	Err   error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("slot %d (round %d): %v", e.Index+1, e.Round+1, e.Err)
}

func (e *SlotError) Unwrap() error {
	return e.Err
}

// State is one pair's conference. advancing is held for the whole of an
// Advance, so at most one advance per pair is in flight; mu only guards the
// slots and is never held across a generation call.
type State struct {
	advancing sync.Mutex
	mu        sync.RWMutex
	id        pairing.PairID
	pair      pairing.Pair
	slots     [SlotCount]Slot
	winner    *fighter.Fighter
	pick      func(n int) int
}

// NewState lays out the six slots. pick chooses the winner on completion and
// must be safe for concurrent use; nil leaves the winner undecided.
func NewState(id pairing.PairID, pair pairing.Pair, pick func(n int) int) *State {
	s := &State{id: id, pair: pair, pick: pick}
	for i := range s.slots {
		speaker, opponent := pair.A, pair.B
		if i%2 == 1 {
			speaker, opponent = pair.B, pair.A
		}
		s.slots[i] = Slot{Index: i, Round: i / 2, Speaker: speaker, Opponent: opponent}
	}
	return s
}

func (s *State) ID() pairing.PairID {
	return s.id
}

func (s *State) Pair() pairing.Pair {
	return s.pair
}

// Advance resolves the first slot that is not Generated. On text failure the
// slot is marked Failed and a *SlotError is returned together with the slot.
// An image failure degrades the slot to text only.
func (s *State) Advance(ctx context.Context, gen Generator) (Slot, error) {
	s.advancing.Lock()
	defer s.advancing.Unlock()

	s.mu.Lock()
	idx := s.nextLocked()
	if idx < 0 {
		s.mu.Unlock()
		return Slot{}, ErrConferenceComplete
	}
	s.slots[idx].Attempts++
	slot := s.slots[idx]
	s.mu.Unlock()

	text, err := gen.GenerateText(ctx, prompts.TrashTalk(slot.Speaker, slot.Opponent, slot.Round))
	if err != nil {
		log.Printf("[Conference] %s slot %d text failed (%s): %v", s.id, idx+1, generation.KindOf(err), err)
		slot.Status = Failed
		slot.LastError = err
		s.store(slot)
		return slot, &SlotError{Index: idx, Round: slot.Round, Err: err}
	}

	artifact := &Artifact{Text: text}
	refs := append(slot.Speaker.References(), slot.Opponent.References()...)
	image, err := gen.GenerateImage(ctx, prompts.Scene(slot.Speaker, slot.Opponent, text, slot.Round), refs)
	if err != nil {
		log.Printf("[Conference] %s slot %d image failed, text only (%s): %v", s.id, idx+1, generation.KindOf(err), err)
		artifact.UsedFallback = true
	} else {
		artifact.Image = image
	}

	slot.Status = Generated
	slot.Artifact = artifact
	slot.LastError = nil

	var winner *fighter.Fighter
	if idx == SlotCount-1 && s.pick != nil {
		winner = s.pair.A
		if s.pick(2) == 1 {
			winner = s.pair.B
		}
		log.Printf("[Conference] %s complete, winner pick: %s", s.id, winner.Code)
	}

	s.mu.Lock()
	s.slots[idx] = slot
	if winner != nil {
		s.winner = winner
	}
	s.mu.Unlock()
	return slot, nil
}

func (s *State) store(slot Slot) {
	s.mu.Lock()
	s.slots[slot.Index] = slot
	s.mu.Unlock()
}

func (s *State) nextLocked() int {
	for i := range s.slots {
		if s.slots[i].Status != Generated {
			return i
		}
	}
	return -1
}

// Snapshot is a read-only copy of a conference.
type Snapshot struct {
	ID     pairing.PairID
	Pair   pairing.Pair
	Phase  Phase
	Slots  []Slot
	Winner *fighter.Fighter
}

// Next is the index of the slot the next Advance resolves, or -1.
func (s Snapshot) Next() int {
	for _, slot := range s.Slots {
		if slot.Status != Generated {
			return slot.Index
		}
	}
	return -1
}

// Snapshot does not wait for an in-flight Advance; the slot being generated
// shows as it was before the call.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{ID: s.id, Pair: s.pair, Winner: s.winner}
	snap.Slots = append([]Slot(nil), s.slots[:]...)
	snap.Phase = phaseOf(snap.Slots)
	return snap
}

func (s *State) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return phaseOf(s.slots[:])
}

func phaseOf(slots []Slot) Phase {
	generated, touched := 0, false
	for _, slot := range slots {
		if slot.Status == Generated {
			generated++
		}
		if slot.Status != Pending || slot.Attempts > 0 {
			touched = true
		}
	}
	switch {
	case generated == len(slots):
		return Complete
	case touched:
		return InProgress
	default:
		return NotStarted
	}
}
