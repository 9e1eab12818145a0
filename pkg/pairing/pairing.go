// Package pairing draws the three fights of the event: a uniformly random
// perfect matching over the six fighters.
package pairing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cockfight/pkg/fighter"
)

// PairCount is the number of fights in a full draw.
const PairCount = fighter.RosterSize / 2

var ErrInsufficientFighters = errors.New("pairing needs exactly 6 fighters")

// Shuffler is satisfied by *math/rand/v2.Rand and *math/rand.Rand.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// PairID identifies a fight within a Pairing, 0 through PairCount-1.
type PairID int

func (id PairID) Valid() bool {
	return id >= 0 && int(id) < PairCount
}

// Number is the 1-based fight number shown to the audience.
func (id PairID) Number() int {
	return int(id) + 1
}

func (id PairID) String() string {
	return fmt.Sprintf("fight %d", id.Number())
}

// Pair is one fight. A speaks first in every round.
type Pair struct {
	A *fighter.Fighter
	B *fighter.Fighter
}

// Key is the order-independent identity of the pair, e.g. "bohdan+petro".
func (p Pair) Key() string {
	a, b := p.A.Code, p.B.Code
	if b < a {
		a, b = b, a
	}
	return a + "+" + b
}

func (p Pair) String() string {
	return p.A.Code + " vs " + p.B.Code
}

// Pairing is immutable once drawn.
type Pairing struct {
	pairs [PairCount]Pair
}

func (p *Pairing) Pairs() [PairCount]Pair {
	return p.pairs
}

func (p *Pairing) Pair(id PairID) (Pair, bool) {
	if !id.Valid() {
		return Pair{}, false
	}
	return p.pairs[id], true
}

// Key is the order-independent identity of the whole matching; two draws
// with equal keys produced the same three fights.
func (p *Pairing) Key() string {
	keys := make([]string, 0, PairCount)
	for _, pair := range p.pairs {
		keys = append(keys, pair.Key())
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (p *Pairing) String() string {
	parts := make([]string, 0, PairCount)
	for _, pair := range p.pairs {
		parts = append(parts, "("+pair.A.Code+","+pair.B.Code+")")
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Draw shuffles a copy of fighters with rng and partitions the result into
// consecutive pairs (0-1, 2-3, 4-5). With a uniform shuffle every one of the
// 15 matchings is equally likely. The input slice is left untouched.
func Draw(fighters []*fighter.Fighter, rng Shuffler) (*Pairing, error) {
	if len(fighters) != fighter.RosterSize {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientFighters, len(fighters))
	}

	order := make([]*fighter.Fighter, len(fighters))
	copy(order, fighters)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	p := &Pairing{}
	for i := range p.pairs {
		p.pairs[i] = Pair{A: order[2*i], B: order[2*i+1]}
	}
	return p, nil
}
