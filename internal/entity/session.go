package entity

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Moscow is the fixed UTC+3 zone the club schedules are written in. No DST.
var Moscow = time.FixedZone("MSK", 3*60*60)

// Session is one scheduled game extracted from the listing page.
type Session struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Title      string    `json:"title"`
	System     string    `json:"system"`
	Short      string    `json:"short"`
	SpotsTotal *int      `json:"spots_total"`
	SpotsFree  *int      `json:"spots_free"`
	SignupURL  string    `json:"signup_url,omitempty"`
	HTML       string    `json:"html,omitempty"`
}

// NewID derives a deterministic identity from the fields that survive re-extraction
// of an unchanged page.
func NewID(date time.Time, title, signupURL string) string {
	h := sha1.New()
	h.Write([]byte(date.UTC().Format(time.RFC3339) + "|" + title + "|" + signupURL))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Full reports whether the session is known to have no free seats.
func (s *Session) Full() bool {
	return s.SpotsFree != nil && *s.SpotsFree <= 0
}

// Local returns the session start in club time.
func (s *Session) Local() time.Time {
	return s.Date.In(Moscow)
}

var weekdays = map[time.Weekday]string{
	time.Monday:    "ПОНЕДЕЛЬНИК",
	time.Tuesday:   "ВТОРНИК",
	time.Wednesday: "СРЕДА",
	time.Thursday:  "ЧЕТВЕРГ",
	time.Friday:    "ПЯТНИЦА",
	time.Saturday:  "СУББОТА",
	time.Sunday:    "ВОСКРЕСЕНЬЕ",
}

// DayHeader renders the bold day line used to group sessions in reports.
func (s *Session) DayHeader() string {
	local := s.Local()
	return fmt.Sprintf("<b>%s</b> (%s)", weekdays[local.Weekday()], local.Format("02.01"))
}

// Format renders a single HTML line for Telegram.
func (s *Session) Format() string {
	seats := "?"
	switch {
	case s.SpotsFree != nil && s.SpotsTotal != nil:
		seats = fmt.Sprintf("%d/%d", *s.SpotsFree, *s.SpotsTotal)
	case s.SpotsFree != nil && *s.SpotsFree == 0:
		seats = "мест нет"
	case s.SpotsFree != nil:
		seats = fmt.Sprintf("%d+", *s.SpotsFree)
	}

	title := escapeHTML(s.Title)
	if s.SignupURL != "" {
		title = fmt.Sprintf("<a href=\"%s\">%s</a>", escapeHTML(s.SignupURL), title)
	}

	return fmt.Sprintf("%s %s [%s] %s", s.Local().Format("15:04"), title, escapeHTML(s.System), seats)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// IntPtr is a helper for the optional seat counters.
func IntPtr(v int) *int {
	return &v
}
