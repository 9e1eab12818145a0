package prompts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"cockfight/pkg/pairing"
	"cockfight/pkg/pairing/pairingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "привіт", 10, "привіт"},
		{"exact", "привіт", 6, "привіт"},
		{"cut", "привіт світ", 8, "приві..."},
		{"no limit", "abc", 0, "abc"},
		{"tiny", "abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			if tt.limit > 0 {
				assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.limit)
			}
		})
	}
}

func TestDrawAnnouncement(t *testing.T) {
	p, err := pairing.Draw(pairingtest.Roster(), pairingtest.ExampleOrder)
	require.NoError(t, err)

	msg := DrawAnnouncement(p)
	assert.Contains(t, msg, "БІЙ 1:\nПітух Petro vs Пітух Bohdan")
	assert.Contains(t, msg, "БІЙ 3:\nПітух Vadym vs Пітух Andrew_3")
	assert.Less(t, strings.Index(msg, "БІЙ 1"), strings.Index(msg, "БІЙ 2"))
}

func TestTrashTalk_RoundMood(t *testing.T) {
	roster := pairingtest.Roster()
	a, b := roster[0], roster[1]

	first := TrashTalk(a, b, 0)
	assert.Contains(t, first, "Це раунд 1 з 3")
	assert.Contains(t, first, "перший вихід")
	assert.Contains(t, first, a.Description)
	assert.Contains(t, first, b.DisplayName)

	last := TrashTalk(b, a, 2)
	assert.Contains(t, last, "Це раунд 3 з 3")
	assert.Contains(t, last, "фінальний раунд")
}

func TestScene(t *testing.T) {
	roster := pairingtest.Roster()
	s := Scene(roster[0], roster[1], "Кукуріку!", 1)
	assert.Contains(t, s, `"Кукуріку!"`)
	assert.Contains(t, s, "round 2")
	assert.Contains(t, s, roster[1].DisplayName+"'s rooster is shown reacting")
}

func TestConferenceEnd(t *testing.T) {
	roster := pairingtest.Roster()
	pair := pairing.Pair{A: roster[0], B: roster[1]}
	assert.Contains(t, ConferenceEnd(pair, roster[1]), "ставить на... "+roster[1].DisplayName)
	assert.Contains(t, ConferenceEnd(pair, nil), "Дізнаємось незабаром")
}
