package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/kettari/games-bot/internal/entity"
)

const chunkSize = 4000

// Source tells where a Schedule came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceAssist   Source = "assist"
	SourceCache    Source = "cache"
	SourceSnapshot Source = "snapshot"
)

// Schedule is one extracted result set.
type Schedule struct {
	Sessions  []entity.Session `json:"sessions"`
	FetchedAt time.Time        `json:"fetched_at"`
	Source    Source           `json:"source"`
	Degraded  bool             `json:"degraded"` // page failed, stored results served
}

// Format renders the selected sessions as Telegram HTML messages, grouped by day
// and split into chunks that fit one message.
func (s *Schedule) Format(sel Selection, now time.Time) []string {
	sessions := Filter(s.Sessions, sel, now)
	if len(sessions) == 0 {
		return []string{fmt.Sprintf("Открытых игр нет (%s).", strings.ToLower(sel.Preset.Label()))}
	}

	var result []string
	chunk := fmt.Sprintf("Игры, на которые можно записаться (%s):", strings.ToLower(sel.Preset.Label()))
	if s.Degraded {
		chunk += fmt.Sprintf("\n<i>Сайт недоступен, показаны данные от %s.</i>",
			s.FetchedAt.In(entity.Moscow).Format("02.01 15:04"))
	}

	currentDay := ""
	for _, session := range sessions {
		var block string
		if day := session.DayHeader(); day != currentDay {
			currentDay = day
			block = "\n\n" + day
		}
		block += "\n🔸 " + session.Format()

		if len(chunk)+len(block) > chunkSize {
			result = append(result, chunk)
			chunk = strings.TrimLeft(block, "\n")
			continue
		}
		chunk += block
	}
	if len(strings.TrimSpace(chunk)) > 0 {
		result = append(result, chunk)
	}

	return result
}
