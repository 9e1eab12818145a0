package pairing_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"cockfight/pkg/fighter"
	"cockfight/pkg/pairing"
	"cockfight/pkg/pairing/pairingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraw_CoversRosterExactlyOnce(t *testing.T) {
	roster := pairingtest.Roster()
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 500; i++ {
		p, err := pairing.Draw(roster, rng)
		require.NoError(t, err)

		seen := map[string]int{}
		for _, pair := range p.Pairs() {
			require.NotSame(t, pair.A, pair.B)
			seen[pair.A.Code]++
			seen[pair.B.Code]++
		}
		require.Len(t, seen, fighter.RosterSize)
		for code, n := range seen {
			require.Equal(t, 1, n, "fighter %s appears %d times", code, n)
		}
	}
}

func TestDraw_UniformOverFifteenMatchings(t *testing.T) {
	const draws = 15000
	roster := pairingtest.Roster()
	rng := rand.New(rand.NewPCG(42, 1337))

	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		p, err := pairing.Draw(roster, rng)
		require.NoError(t, err)
		counts[p.Key()]++
	}
	require.Len(t, counts, 15)

	expected := float64(draws) / 15
	var chi2 float64
	for _, observed := range counts {
		d := float64(observed) - expected
		chi2 += d * d / expected
	}
	// 14 degrees of freedom, p = 0.001
	assert.Less(t, chi2, 36.12, "chi-squared %.2f suggests a biased draw", chi2)
}

func TestDraw_ExampleRun(t *testing.T) {
	p, err := pairing.Draw(pairingtest.Roster(), pairingtest.ExampleOrder)
	require.NoError(t, err)
	assert.Equal(t, "[(petro,bohdan),(oleg,roma),(vadym,andrew_3)]", p.String())

	first, ok := p.Pair(0)
	require.True(t, ok)
	assert.Equal(t, "petro", first.A.Code)
	assert.Equal(t, "bohdan", first.B.Code)
	assert.Equal(t, "bohdan+petro", first.Key())
}

func TestDraw_LeavesInputUntouched(t *testing.T) {
	roster := pairingtest.Roster()
	before := append([]*fighter.Fighter(nil), roster...)

	_, err := pairing.Draw(roster, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, before, roster)
}

func TestDraw_InsufficientFighters(t *testing.T) {
	roster := pairingtest.Roster()
	rng := rand.New(rand.NewPCG(1, 2))

	for _, n := range []int{0, 5, 7} {
		input := roster
		if n < len(roster) {
			input = roster[:n]
		} else {
			input = append(append([]*fighter.Fighter(nil), roster...), roster[0])
		}
		_, err := pairing.Draw(input, rng)
		assert.True(t, errors.Is(err, pairing.ErrInsufficientFighters), "n=%d", n)
	}
}

func TestPairID(t *testing.T) {
	assert.True(t, pairing.PairID(0).Valid())
	assert.True(t, pairing.PairID(2).Valid())
	assert.False(t, pairing.PairID(3).Valid())
	assert.False(t, pairing.PairID(-1).Valid())
	assert.Equal(t, 3, pairing.PairID(2).Number())

	p, err := pairing.Draw(pairingtest.Roster(), pairingtest.ExampleOrder)
	require.NoError(t, err)
	_, ok := p.Pair(5)
	assert.False(t, ok)
}
