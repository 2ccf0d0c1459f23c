package session

import (
	"sort"

	"github.com/lowlatency/arena/internal/player"
)

// ScoreboardEntry is one ranked row of a scoreboard snapshot.
type ScoreboardEntry struct {
	Player *player.Player
	Rank   int
}

// Scoreboard returns the roster ranked kills descending, deaths
// ascending as a tiebreak, and join slot ascending as a final tiebreak
// so two players tied on both still sort the same way every time.
func (s *Session) Scoreboard() []ScoreboardEntry {
	ranked := make([]*player.Player, len(s.rosterOrder))
	copy(ranked, s.rosterOrder)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		if a.Deaths != b.Deaths {
			return a.Deaths < b.Deaths
		}
		return a.Identity.Slot < b.Identity.Slot
	})

	out := make([]ScoreboardEntry, len(ranked))
	for i, p := range ranked {
		out[i] = ScoreboardEntry{Player: p, Rank: i + 1}
	}
	return out
}
