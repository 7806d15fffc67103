package schedule

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kettari/games-bot/internal/entity"
)

type fakeSender struct {
	sent [][]string
	err  error
}

func (f *fakeSender) Send(messages []string) error {
	f.sent = append(f.sent, messages)
	return f.err
}

func TestSchedule_Format(t *testing.T) {
	now := msk(2025, 10, 6, 12, 0, 0, 0)
	vampires := at(msk(2025, 10, 7, 19, 0, 0, 0), entity.IntPtr(2))
	vampires.Title = "Вампиры"
	vampires.System = "V5"
	vampires.SpotsTotal = entity.IntPtr(5)
	vampires.SignupURL = "https://t.me/club"
	cthulhu := at(msk(2025, 10, 9, 18, 0, 0, 0), entity.IntPtr(0))
	cthulhu.Title = "Ктулху"

	s := &Schedule{Sessions: []entity.Session{cthulhu, vampires}, Source: SourceLive}
	got := s.Format(Selection{Preset: PresetWeek, HideFull: true}, now)
	if len(got) != 1 {
		t.Fatalf("Format() = %d messages, want 1", len(got))
	}
	msg := got[0]
	for _, want := range []string{
		"Игры, на которые можно записаться (эта неделя):",
		"<b>ВТОРНИК</b> (07.10)",
		`🔸 19:00 <a href="https://t.me/club">Вампиры</a> [V5] 2/5`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Format() = %q, missing %q", msg, want)
		}
	}
	if strings.Contains(msg, "Ктулху") {
		t.Errorf("Format() = %q, full session not hidden", msg)
	}
	if strings.Contains(msg, "Сайт недоступен") {
		t.Errorf("Format() marks a live schedule as degraded")
	}
}

func TestSchedule_FormatEmpty(t *testing.T) {
	s := &Schedule{}
	got := s.Format(Selection{Preset: PresetToday}, msk(2025, 10, 6, 12, 0, 0, 0))
	if len(got) != 1 || got[0] != "Открытых игр нет (сегодня)." {
		t.Errorf("Format() = %q", got)
	}
}

func TestSchedule_FormatDegraded(t *testing.T) {
	fetched := msk(2025, 10, 6, 9, 30, 0, 0)
	s := &Schedule{
		Sessions:  []entity.Session{at(msk(2025, 10, 7, 19, 0, 0, 0), nil)},
		FetchedAt: fetched.UTC(),
		Source:    SourceSnapshot,
		Degraded:  true,
	}
	got := s.Format(Selection{Preset: PresetAll}, msk(2025, 10, 6, 12, 0, 0, 0))
	if !strings.Contains(got[0], "показаны данные от 06.10 09:30") {
		t.Errorf("Format() = %q, want stored data notice", got[0])
	}
}

func TestSchedule_FormatChunks(t *testing.T) {
	now := msk(2025, 10, 1, 12, 0, 0, 0)
	var sessions []entity.Session
	for i := 0; i < 120; i++ {
		s := at(msk(2025, 10, 2+i%20, 10+i%10, 0, 0, 0), nil)
		s.ID = fmt.Sprint(i)
		s.Title = strings.Repeat("Длинное название ", 4)
		sessions = append(sessions, s)
	}
	got := (&Schedule{Sessions: sessions}).Format(Selection{Preset: PresetAll}, now)
	if len(got) < 2 {
		t.Fatalf("Format() = %d messages, want several chunks", len(got))
	}
	total := 0
	for i, msg := range got {
		if len(msg) > chunkSize {
			t.Errorf("chunk %d is %d bytes, want at most %d", i, len(msg), chunkSize)
		}
		total += strings.Count(msg, "🔸")
	}
	if total != len(sessions) {
		t.Errorf("Format() rendered %d sessions, want %d", total, len(sessions))
	}
}

func TestSchedule_Report(t *testing.T) {
	s := &Schedule{Sessions: []entity.Session{at(msk(2025, 10, 7, 19, 0, 0, 0), nil)}}
	sender := &fakeSender{}
	if err := s.Report(sender, Selection{Preset: PresetAll}, msk(2025, 10, 6, 12, 0, 0, 0)); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(sender.sent) != 1 || len(sender.sent[0]) != 1 {
		t.Errorf("Report() sent %v", sender.sent)
	}

	failing := &fakeSender{err: errors.New("telegram down")}
	if err := s.Report(failing, Selection{Preset: PresetAll}, msk(2025, 10, 6, 12, 0, 0, 0)); err == nil {
		t.Error("Report() swallowed the sender error")
	}
}
