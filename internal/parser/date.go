package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kettari/games-bot/internal/entity"
)

// DateSource tells which recognizer produced a date.
type DateSource string

const (
	DateFromTitle     DateSource = "title"
	DateFromAttribute DateSource = "attribute"
	DateFromLocalized DateSource = "localized"
	DateFromNumeric   DateSource = "numeric"
)

// Wall is a club-local wall clock reading.
type Wall struct {
	Year, Month, Day, Hour, Minute int
}

// ToInstant interprets the wall clock as UTC+3 and returns the UTC instant.
func ToInstant(w Wall) time.Time {
	return time.Date(w.Year, time.Month(w.Month), w.Day, w.Hour, w.Minute, 0, 0, entity.Moscow).UTC()
}

func (w Wall) valid() bool {
	if w.Month < 1 || w.Month > 12 || w.Day < 1 || w.Day > 31 {
		return false
	}
	if w.Hour < 0 || w.Hour > 23 || w.Minute < 0 || w.Minute > 59 {
		return false
	}
	// reject 31.02 and friends instead of letting time.Date roll them over
	t := time.Date(w.Year, time.Month(w.Month), w.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == w.Day
}

// DateMatch is a recognized session start.
type DateMatch struct {
	Wall    Wall
	Instant time.Time
	Source  DateSource
	HasTime bool
}

func newDateMatch(w Wall, src DateSource, hasTime bool) DateMatch {
	return DateMatch{Wall: w, Instant: ToInstant(w), Source: src, HasTime: hasTime}
}

// DateInput carries the texts of a candidate the recognizers look at, narrowest first.
type DateInput struct {
	Title     string // dedicated title element text
	Attribute string // machine readable datetime attribute
	Labeled   string // text of a date-labeled element
	Text      string // whole candidate text
}

var (
	numericDateRE = regexp.MustCompile(`(?:^|[^\d.])(\d{1,2})[./](\d{1,2})(?:[./](\d{4}|\d{2}))?(?:[^\d]|$)`)
	localizedRE   = regexp.MustCompile(`(?:^|[^\d])(\d{1,2})\s+(\p{L}+)\.?`)
	yearTailRE    = regexp.MustCompile(`^,?\s*(\d{4})(?:\s*г(?:ода|\.)?)?`)
	timeTailRE    = regexp.MustCompile(`^[^\d]{0,8}?(\d{1,2}):(\d{2})`)

	isoLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
)

// RecognizeDate runs the recognizers in priority order and returns the first match.
func (p *Profile) RecognizeDate(in DateInput, now time.Time) (DateMatch, bool) {
	for _, text := range []string{in.Title, in.Text} {
		if m, ok := p.RecognizeTitleDate(text, now); ok {
			return m, true
		}
	}
	if m, ok := p.RecognizeAttributeDate(in.Attribute, now); ok {
		return m, true
	}
	if m, ok := p.recognizeFreeText(in.Labeled, now); ok {
		m.Source = DateFromAttribute
		return m, true
	}
	return p.recognizeFreeText(in.Text, now)
}

func (p *Profile) recognizeFreeText(text string, now time.Time) (DateMatch, bool) {
	if m, ok := p.RecognizeLocalizedDate(text, now); ok {
		return m, true
	}
	return p.RecognizeNumericDate(text, now)
}

// RecognizeTitleDate matches "Вторник 7 октября 19:00": weekday, day, month name and time.
// The year is the current club-local year.
func (p *Profile) RecognizeTitleDate(text string, now time.Time) (DateMatch, bool) {
	if text == "" {
		return DateMatch{}, false
	}
	c := p.compiled
	for _, m := range c.titleDate.FindAllStringSubmatch(text, -1) {
		month, ok := c.months[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		w := Wall{
			Year:   now.In(entity.Moscow).Year(),
			Month:  month,
			Day:    atoi(m[1]),
			Hour:   atoi(m[3]),
			Minute: atoi(m[4]),
		}
		if w.valid() {
			return newDateMatch(w, DateFromTitle, true), true
		}
	}
	return DateMatch{}, false
}

// RecognizeAttributeDate parses a datetime attribute value. Values with an explicit offset
// keep it; bare values are club-local. Anything else goes through the free-text recognizers.
func (p *Profile) RecognizeAttributeDate(value string, now time.Time) (DateMatch, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DateMatch{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		local := t.In(entity.Moscow)
		w := Wall{local.Year(), int(local.Month()), local.Day(), local.Hour(), local.Minute()}
		return DateMatch{Wall: w, Instant: t.UTC(), Source: DateFromAttribute, HasTime: true}, true
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, value, entity.Moscow); err == nil {
			w := Wall{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute()}
			return newDateMatch(w, DateFromAttribute, true), true
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", value, entity.Moscow); err == nil {
		w := Wall{t.Year(), int(t.Month()), t.Day(), p.compiled.defaultHour, p.compiled.defaultMin}
		return newDateMatch(w, DateFromAttribute, false), true
	}
	if m, ok := p.recognizeFreeText(value, now); ok {
		m.Source = DateFromAttribute
		return m, true
	}
	return DateMatch{}, false
}

// RecognizeLocalizedDate matches "<day> <month-name>[, <year>] [HH:MM]".
// Missing time defaults to the profile default, missing year to the current one.
func (p *Profile) RecognizeLocalizedDate(text string, now time.Time) (DateMatch, bool) {
	if text == "" {
		return DateMatch{}, false
	}
	c := p.compiled
	for _, idx := range localizedRE.FindAllStringSubmatchIndex(text, -1) {
		month, ok := c.months[strings.ToLower(text[idx[4]:idx[5]])]
		if !ok {
			continue
		}
		w := Wall{
			Year:   now.In(entity.Moscow).Year(),
			Month:  month,
			Day:    atoi(text[idx[2]:idx[3]]),
			Hour:   c.defaultHour,
			Minute: c.defaultMin,
		}
		tail := text[idx[1]:]
		if y := yearTailRE.FindStringSubmatchIndex(tail); y != nil {
			w.Year = atoi(tail[y[2]:y[3]])
			tail = tail[y[1]:]
		}
		hasTime := false
		if t := timeTailRE.FindStringSubmatch(tail); t != nil {
			w.Hour, w.Minute = atoi(t[1]), atoi(t[2])
			hasTime = true
		}
		if !w.valid() {
			continue
		}
		return newDateMatch(w, DateFromLocalized, hasTime), true
	}
	return DateMatch{}, false
}

// RecognizeNumericDate matches "DD.MM[.YYYY] HH:MM" (dots or slashes). A bare date
// gets the default time. Two digit years are 20xx.
func (p *Profile) RecognizeNumericDate(text string, now time.Time) (DateMatch, bool) {
	if text == "" {
		return DateMatch{}, false
	}
	c := p.compiled
	for _, idx := range numericDateRE.FindAllStringSubmatchIndex(text, -1) {
		w := Wall{
			Year:   now.In(entity.Moscow).Year(),
			Month:  atoi(text[idx[4]:idx[5]]),
			Day:    atoi(text[idx[2]:idx[3]]),
			Hour:   c.defaultHour,
			Minute: c.defaultMin,
		}
		end := idx[5]
		if idx[6] >= 0 {
			w.Year = atoi(text[idx[6]:idx[7]])
			if w.Year < 100 {
				w.Year += 2000
			}
			end = idx[7]
		}
		hasTime := false
		if t := timeTailRE.FindStringSubmatch(text[end:]); t != nil {
			w.Hour, w.Minute = atoi(t[1]), atoi(t[2])
			hasTime = true
		}
		if !w.valid() {
			continue
		}
		return newDateMatch(w, DateFromNumeric, hasTime), true
	}
	return DateMatch{}, false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
