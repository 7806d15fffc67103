package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kettari/games-bot/internal/entity"
)

// Preset is a named date range relative to now.
type Preset string

const (
	PresetAll     Preset = "all"
	PresetToday   Preset = "today"
	PresetWeek    Preset = "week"
	PresetWeekend Preset = "weekend"
)

var ErrUnknownPreset = errors.New("unknown date preset")

var presetAliases = map[string]Preset{
	"":         PresetAll,
	"all":      PresetAll,
	"все":      PresetAll,
	"today":    PresetToday,
	"сегодня":  PresetToday,
	"week":     PresetWeek,
	"неделя":   PresetWeek,
	"weekend":  PresetWeekend,
	"выходные": PresetWeekend,
}

var presetLabels = map[Preset]string{
	PresetAll:     "Все",
	PresetToday:   "Сегодня",
	PresetWeek:    "Эта неделя",
	PresetWeekend: "Ближайшие выходные",
}

// ParsePreset accepts the English preset names and their Russian aliases.
func ParsePreset(s string) (Preset, error) {
	p, ok := presetAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
	}
	return p, nil
}

// Label is the human readable preset name.
func (p Preset) Label() string {
	if l, ok := presetLabels[p]; ok {
		return l
	}
	return string(p)
}

// Selection is what the user asked to see.
type Selection struct {
	Preset   Preset
	HideFull bool
}

// Range returns the inclusive bounds of preset in club time. Both are nil for PresetAll.
//
// The week starts on Monday, so on Sunday it is the Monday before. The weekend is the
// first Saturday strictly after today, so on Saturday it is next week's.
func Range(preset Preset, now time.Time) (from, to *time.Time) {
	local := now.In(entity.Moscow)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, entity.Moscow)

	var start time.Time
	var days int
	switch preset {
	case PresetToday:
		start, days = day, 1
	case PresetWeek:
		sinceMonday := (int(local.Weekday()) + 6) % 7
		start, days = day.AddDate(0, 0, -sinceMonday), 7
	case PresetWeekend:
		toSaturday := (int(time.Saturday) - int(local.Weekday()) + 7) % 7
		if toSaturday == 0 {
			toSaturday = 7
		}
		start, days = day.AddDate(0, 0, toSaturday), 2
	default:
		return nil, nil
	}
	end := start.AddDate(0, 0, days).Add(-time.Nanosecond)
	return &start, &end
}

// Filter returns the sessions inside the preset range, without known-full ones when
// HideFull is set, sorted by date. Sessions with an unknown free count are kept.
func Filter(sessions []entity.Session, sel Selection, now time.Time) []entity.Session {
	from, to := Range(sel.Preset, now)
	out := make([]entity.Session, 0, len(sessions))
	for _, s := range sessions {
		if from != nil && s.Date.Before(*from) {
			continue
		}
		if to != nil && s.Date.After(*to) {
			continue
		}
		if sel.HideFull && s.Full() {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
