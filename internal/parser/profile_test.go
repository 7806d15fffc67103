package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	if p.Version != 4 {
		t.Errorf("Version = %d, want 4", p.Version)
	}
	if len(p.Strict.Selectors) == 0 {
		t.Error("no strict selectors")
	}
	if p.Fallback.Limit != 2000 {
		t.Errorf("Fallback.Limit = %d, want 2000", p.Fallback.Limit)
	}
	if got := p.compiled.months["октября"]; got != 10 {
		t.Errorf("months[октября] = %d, want 10", got)
	}
	if p.compiled.defaultHour != 18 || p.compiled.defaultMin != 0 {
		t.Errorf("default time = %02d:%02d, want 18:00", p.compiled.defaultHour, p.compiled.defaultMin)
	}
}

func TestProfile_PrefilterCoversRecognizers(t *testing.T) {
	p := DefaultProfile()
	for _, text := range []string{
		"available: 3",
		"Свободно мест: 2",
		"Table full",
		"Нет свободных мест",
		"за столом 4 места",
		"D&D по пятницам",
		"Call of Cthulhu",
		"Pathfinder",
	} {
		if !p.compiled.fallbackKeywords.MatchString(text) {
			t.Errorf("fallback prefilter rejects %q", text)
		}
	}
	if p.compiled.fallbackKeywords.MatchString("Клубный вечер 12.11") {
		t.Error("fallback prefilter accepts text without game or seat words")
	}
}

func TestParseProfile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "strict: [unclosed"},
		{name: "no selectors", yaml: "version: 1"},
		{name: "bad selector", yaml: "strict:\n  selectors: ['[']\n"},
		{name: "bad regex", yaml: "strict:\n  selectors: ['.card']\nfallback:\n  keywords: '(unclosed'\n"},
		{name: "no months", yaml: "strict:\n  selectors: ['.card']\n"},
		{
			name: "month out of range",
			yaml: "strict:\n  selectors: ['.card']\ndates:\n  weekdays: [monday]\n  months: {smarch: 13}\n",
		},
		{
			name: "bad default time",
			yaml: "strict:\n  selectors: ['.card']\ndates:\n  default_time: '25:00'\n  weekdays: [monday]\n  months: {may: 5}\n",
		},
		{
			name: "no weekdays",
			yaml: "strict:\n  selectors: ['.card']\ndates:\n  months: {may: 5}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProfile([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("ParseProfile() error = %v, want %v", err, ErrInvalidProfile)
			}
		})
	}
}

func TestParseProfile_Defaults(t *testing.T) {
	p, err := ParseProfile([]byte("strict:\n  selectors: ['.card']\ndates:\n  weekdays: [monday]\n  months: {may: 5}\n"))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}
	if p.Fallback.Scope != "body *" {
		t.Errorf("Fallback.Scope = %q, want %q", p.Fallback.Scope, "body *")
	}
	if p.DefaultTitle == "" || p.DefaultSystem == "" {
		t.Errorf("defaults not applied: title %q, system %q", p.DefaultTitle, p.DefaultSystem)
	}
	// empty vocabularies never match
	if got := p.RecognizeSeats("стол набран"); got.Signal != SeatsUnknown {
		t.Errorf("RecognizeSeats() signal = %v, want %v", got.Signal, SeatsUnknown)
	}
}

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile("")
	if err != nil || p.Version != 4 {
		t.Fatalf("LoadProfile(\"\") = %v, %v", p, err)
	}

	path := filepath.Join(t.TempDir(), "profile.yaml")
	data := bytes.Replace(defaultProfileYAML, []byte("version: 4"), []byte("version: 5"), 1)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	p, err = LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p.Version != 5 {
		t.Errorf("Version = %d, want 5", p.Version)
	}

	if _, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadProfile() of a missing file succeeded")
	}
}

func TestAlternation_LongestFirst(t *testing.T) {
	got := alternation([]string{"сен", "сентября", " ", "a.b"})
	want := `сентября|сен|a\.b`
	if got != want {
		t.Errorf("alternation() = %q, want %q", got, want)
	}
}

func TestGuessSystem(t *testing.T) {
	p := DefaultProfile()
	tests := []struct {
		text string
		want string
	}{
		{"DnD 5e, 12.11", "DnD 5e"},
		{"Подземелья и драконы", "DnD 5e"},
		{"Зов Ктулху", "CoC"},
		{"Call of Cthulhu one-shot", "CoC"},
		{"Pathfinder 2e", "PF2e"},
		{"Вампиры: Маскарад", "Настольная RPG"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := p.GuessSystem(tt.text); got != tt.want {
				t.Errorf("GuessSystem(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
