package schedule

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/kettari/games-bot/internal/entity"
)

func init() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}

func msk(year int, month time.Month, day, hour, minute, sec, nsec int) time.Time {
	return time.Date(year, month, day, hour, minute, sec, nsec, entity.Moscow)
}

func at(t time.Time, free *int) entity.Session {
	return entity.Session{ID: t.String(), Title: "Игра", Date: t.UTC(), SpotsFree: free}
}

func TestRange(t *testing.T) {
	// 2025-10-08 is a Wednesday
	wednesday := msk(2025, 10, 8, 15, 0, 0, 0)
	tests := []struct {
		name     string
		preset   Preset
		now      time.Time
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "today",
			preset:   PresetToday,
			now:      wednesday,
			wantFrom: msk(2025, 10, 8, 0, 0, 0, 0),
			wantTo:   msk(2025, 10, 8, 23, 59, 59, 999999999),
		},
		{
			name:     "today uses club day not UTC day",
			preset:   PresetToday,
			now:      time.Date(2025, 10, 7, 22, 30, 0, 0, time.UTC),
			wantFrom: msk(2025, 10, 8, 0, 0, 0, 0),
			wantTo:   msk(2025, 10, 8, 23, 59, 59, 999999999),
		},
		{
			name:     "week from wednesday",
			preset:   PresetWeek,
			now:      wednesday,
			wantFrom: msk(2025, 10, 6, 0, 0, 0, 0),
			wantTo:   msk(2025, 10, 12, 23, 59, 59, 999999999),
		},
		{
			name:     "week on sunday starts the monday before",
			preset:   PresetWeek,
			now:      msk(2025, 10, 12, 20, 0, 0, 0),
			wantFrom: msk(2025, 10, 6, 0, 0, 0, 0),
			wantTo:   msk(2025, 10, 12, 23, 59, 59, 999999999),
		},
		{
			name:     "week on monday",
			preset:   PresetWeek,
			now:      msk(2025, 10, 6, 0, 0, 0, 0),
			wantFrom: msk(2025, 10, 6, 0, 0, 0, 0),
			wantTo:   msk(2025, 10, 12, 23, 59, 59, 999999999),
		},
		{
			name:     "weekend from wednesday",
			preset:   PresetWeekend,
			now:      wednesday,
			wantFrom: msk(2025, 10, 11, 0, 0, 0, 0),
			wantTo:   msk(2025, 10, 12, 23, 59, 59, 999999999),
		},
		{
			name:     "weekend on saturday is next week",
			preset:   PresetWeekend,
			now:      msk(2025, 10, 11, 10, 0, 0, 0),
			wantFrom: msk(2025, 10, 18, 0, 0, 0, 0),
			wantTo:   msk(2025, 10, 19, 23, 59, 59, 999999999),
		},
		{
			name:     "weekend on sunday is the coming saturday",
			preset:   PresetWeekend,
			now:      msk(2025, 10, 12, 10, 0, 0, 0),
			wantFrom: msk(2025, 10, 18, 0, 0, 0, 0),
			wantTo:   msk(2025, 10, 19, 23, 59, 59, 999999999),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := Range(tt.preset, tt.now)
			if from == nil || to == nil {
				t.Fatalf("Range() = nil bounds")
			}
			if !from.Equal(tt.wantFrom) {
				t.Errorf("Range() from = %v, want %v", from, tt.wantFrom)
			}
			if !to.Equal(tt.wantTo) {
				t.Errorf("Range() to = %v, want %v", to, tt.wantTo)
			}
		})
	}
}

func TestRange_All(t *testing.T) {
	if from, to := Range(PresetAll, time.Now()); from != nil || to != nil {
		t.Errorf("Range(all) = %v, %v, want nil bounds", from, to)
	}
}

func TestFilter_TodayBoundaries(t *testing.T) {
	now := msk(2025, 10, 8, 12, 0, 0, 0)
	start := at(msk(2025, 10, 8, 0, 0, 0, 0), nil)
	end := at(msk(2025, 10, 8, 23, 59, 59, 999000000), nil)
	next := at(msk(2025, 10, 9, 0, 0, 0, 0), nil)
	before := at(msk(2025, 10, 7, 23, 59, 59, 0), nil)

	got := Filter([]entity.Session{next, end, before, start}, Selection{Preset: PresetToday}, now)
	if len(got) != 2 {
		t.Fatalf("Filter() = %d sessions, want 2", len(got))
	}
	if got[0].ID != start.ID || got[1].ID != end.ID {
		t.Errorf("Filter() = %v, %v, want start and end of day in order", got[0].Date, got[1].Date)
	}
}

func TestFilter_HideFull(t *testing.T) {
	now := msk(2025, 10, 8, 12, 0, 0, 0)
	full := at(msk(2025, 10, 9, 19, 0, 0, 0), entity.IntPtr(0))
	unknown := at(msk(2025, 10, 10, 19, 0, 0, 0), nil)
	open := at(msk(2025, 10, 11, 19, 0, 0, 0), entity.IntPtr(2))
	sessions := []entity.Session{full, unknown, open}

	tests := []struct {
		name     string
		hideFull bool
		want     int
	}{
		{name: "hide full", hideFull: true, want: 2},
		{name: "show all", hideFull: false, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sessions, Selection{Preset: PresetAll, HideFull: tt.hideFull}, now)
			if len(got) != tt.want {
				t.Fatalf("Filter() = %d sessions, want %d", len(got), tt.want)
			}
			for _, s := range got {
				if tt.hideFull && s.SpotsFree != nil && *s.SpotsFree == 0 {
					t.Errorf("Filter() kept a full session")
				}
			}
		})
	}
}

func TestFilter_SortsAndKeepsInput(t *testing.T) {
	now := msk(2025, 10, 8, 12, 0, 0, 0)
	late := at(msk(2025, 10, 20, 19, 0, 0, 0), nil)
	early := at(msk(2025, 10, 9, 19, 0, 0, 0), nil)
	in := []entity.Session{late, early}

	got := Filter(in, Selection{Preset: PresetAll}, now)
	if !got[0].Date.Before(got[1].Date) {
		t.Errorf("Filter() not sorted by date")
	}
	if in[0].ID != late.ID {
		t.Errorf("Filter() reordered its input")
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in      string
		want    Preset
		wantErr bool
	}{
		{in: "", want: PresetAll},
		{in: "today", want: PresetToday},
		{in: " Week ", want: PresetWeek},
		{in: "выходные", want: PresetWeekend},
		{in: "Сегодня", want: PresetToday},
		{in: "month", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePreset(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPreset) {
					t.Errorf("ParsePreset(%q) error = %v, want %v", tt.in, err, ErrUnknownPreset)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParsePreset(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestPreset_Label(t *testing.T) {
	if got := PresetWeekend.Label(); got != "Ближайшие выходные" {
		t.Errorf("Label() = %q", got)
	}
}
