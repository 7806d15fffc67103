package parser

import (
	"sort"

	"github.com/kettari/games-bot/internal/entity"
)

// DedupSort drops sessions whose ID was already seen (first one wins) and sorts the
// rest by date. Equal dates keep their input order, so the function is idempotent.
func DedupSort(sessions []entity.Session) []entity.Session {
	seen := make(map[string]bool, len(sessions))
	out := make([]entity.Session, 0, len(sessions))
	for _, s := range sessions {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
