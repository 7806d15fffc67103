package assist

import (
	"errors"
	"testing"
	"time"

	"github.com/kettari/games-bot/internal/entity"
)

func testAssistant() *Assistant {
	a := NewAssistant("key", "gpt-4o-mini", nil)
	a.now = func() time.Time { return time.Date(2025, 9, 20, 12, 0, 0, 0, entity.Moscow) }
	return a
}

func TestAssistant_parseAnswer(t *testing.T) {
	content := "```json\n" + `{
		"data": [
			{"title": "Вампиры", "date": "2025-10-07T19:00:00+03:00", "system": "V5", "free": 0, "total": 5, "url": "https://t.me/club"},
			{"title": "Ктулху", "date": "2025-10-09", "system": "", "free": null, "total": null, "url": ""},
			{"title": "", "date": "2025-10-10T19:00:00+03:00"},
			{"title": "Без даты", "date": "скоро"},
			{"title": "Плохая ссылка", "date": "2025-10-11T19:00:00+03:00", "url": "not a url"}
		]
	}` + "\n```"

	got, err := testAssistant().parseAnswer(content)
	if err != nil {
		t.Fatalf("parseAnswer() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("parseAnswer() = %d sessions, want 2", len(got))
	}

	vampires := got[0]
	if want := time.Date(2025, 10, 7, 16, 0, 0, 0, time.UTC); !vampires.Date.Equal(want) {
		t.Errorf("date = %v, want %v", vampires.Date, want)
	}
	if !vampires.Full() || vampires.SpotsTotal == nil || *vampires.SpotsTotal != 5 {
		t.Errorf("seats = %v/%v, want full of 5", vampires.SpotsFree, vampires.SpotsTotal)
	}
	if vampires.ID != entity.NewID(vampires.Date, "Вампиры", "https://t.me/club") {
		t.Errorf("ID = %q, not derived from date, title and link", vampires.ID)
	}

	cthulhu := got[1]
	if want := time.Date(2025, 10, 9, 15, 0, 0, 0, time.UTC); !cthulhu.Date.Equal(want) {
		t.Errorf("date without time = %v, want 18:00 MSK", cthulhu.Date)
	}
	if cthulhu.SpotsFree == nil || *cthulhu.SpotsFree != 1 {
		t.Errorf("unknown seats = %v, want optimistic 1", cthulhu.SpotsFree)
	}
	if cthulhu.System == "" {
		t.Error("system not defaulted")
	}
}

func TestAssistant_parseAnswerErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		empty   bool
	}{
		{name: "not json", content: "Извините, не могу помочь"},
		{name: "no data", content: `{"data": []}`, empty: true},
		{name: "only invalid items", content: `{"data": [{"title": "", "date": ""}]}`, empty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testAssistant().parseAnswer(tt.content)
			if err == nil {
				t.Fatal("parseAnswer() error = nil")
			}
			if errors.Is(err, ErrEmptyAnswer) != tt.empty {
				t.Errorf("parseAnswer() error = %v, empty answer %v", err, tt.empty)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"data":[]}`, want: `{"data":[]}`},
		{in: "```json\n{\"data\":[]}\n```", want: `{"data":[]}`},
		{in: "```\n{}\n```\n", want: `{}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	s := "абв"
	if got := truncate(s, 3); got != "а" {
		t.Errorf("truncate() = %q, want %q", got, "а")
	}
	if got := truncate(s, 100); got != s {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
}
