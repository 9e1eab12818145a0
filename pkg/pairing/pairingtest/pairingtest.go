// Package pairingtest provides a deterministic roster and shuffler for tests
// that need a known draw.
package pairingtest

import (
	"sort"

	"cockfight/pkg/fighter"
)

// Codes is the event roster in load order.
var Codes = []string{"andrew_3", "bohdan", "oleg", "petro", "roma", "vadym"}

// Roster returns six fighters sorted by code with placeholder photos.
func Roster() []*fighter.Fighter {
	codes := append([]string(nil), Codes...)
	sort.Strings(codes)
	fighters := make([]*fighter.Fighter, 0, len(codes))
	for _, code := range codes {
		fighters = append(fighters, &fighter.Fighter{
			Code:         code,
			DisplayName:  fighter.DefaultDisplayName(code),
			Description:  code + " is ready",
			OwnerImage:   fighter.Asset{Name: code + "-owner.png", MIMEType: "image/png", Data: []byte("owner:" + code)},
			RoosterImage: fighter.Asset{Name: code + "-rooster.png", MIMEType: "image/png", Data: []byte("rooster:" + code)},
		})
	}
	return fighters
}

// FixedShuffler rearranges its input so that position k ends up holding the
// element originally at Order[k]. It only uses the swap callback, like a
// real Fisher-Yates shuffle.
type FixedShuffler struct {
	Order []int
}

func (s FixedShuffler) Shuffle(n int, swap func(i, j int)) {
	pos := make([]int, n)
	at := make([]int, n)
	for i := 0; i < n; i++ {
		pos[i] = i
		at[i] = i
	}
	for k := 0; k < n && k < len(s.Order); k++ {
		want := s.Order[k]
		j := pos[want]
		if j == k {
			continue
		}
		swap(k, j)
		other := at[k]
		at[k], at[j] = want, other
		pos[want], pos[other] = k, j
	}
}

// ExampleOrder turns the sorted roster into
// [(petro,bohdan),(oleg,roma),(vadym,andrew_3)].
var ExampleOrder = FixedShuffler{Order: []int{3, 1, 2, 4, 5, 0}}
