package parser

import (
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kettari/games-bot/internal/entity"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ErrNoSessions is returned when neither pass recovered a single session.
var ErrNoSessions = errors.New("no sessions found")

const (
	titleMaxRunes = 120
	shortMaxRunes = 220
	shortCutRunes = 200
	labelMaxRunes = 60
)

var (
	leadingSeparatorRE  = regexp.MustCompile(`^[\s,.:;|/•·\-–—]+`)
	trailingSeparatorRE = regexp.MustCompile(`[\s,.:;|/•·\-–—]+$`)
	leadingNumericRE    = regexp.MustCompile(`^\d{1,2}[./]\d{1,2}(?:[./](?:\d{4}|\d{2}))?`)
	leadingLocalizedRE  = regexp.MustCompile(`^\d{1,2}\s+(\p{L}+)\.?(?:,?\s*\d{4}(?:\s*г(?:ода|\.)?)?)?`)
	leadingTimeRE       = regexp.MustCompile(`(?i)^(?:в\s+|at\s+)?\d{1,2}:\d{2}(?:\s*[-–—]\s*\d{1,2}:\d{2})?`)
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock injects the clock used to complete dates without a year.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithBaseURL resolves relative signup links against base.
func WithBaseURL(base *url.URL) Option {
	return func(e *Extractor) {
		e.base = base
	}
}

// WithPolicy replaces the sanitizer used for the HTML passthrough fragment.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(e *Extractor) {
		e.policy = policy
	}
}

// Extractor runs the two-pass extraction over a parsed document. It holds no
// per-call state and may be shared.
type Extractor struct {
	profile *Profile
	now     func() time.Time
	base    *url.URL
	policy  *bluemonday.Policy
}

func NewExtractor(p *Profile, opts ...Option) *Extractor {
	if p == nil {
		p = DefaultProfile()
	}
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()

	e := &Extractor{
		profile: p,
		now:     time.Now,
		policy:  policy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the deduplicated sessions of doc sorted by date. The fallback scan
// runs only when the strict pass produced nothing. ErrNoSessions is returned, together
// with the diagnostics, when both passes come back empty.
func (e *Extractor) Extract(doc *goquery.Document) ([]entity.Session, Diagnostics, error) {
	var diag Diagnostics
	if doc == nil {
		return nil, diag, ErrNoSessions
	}
	now := e.now()

	sessions := e.strictPass(doc.Selection, now, &diag)
	diag.Strict = len(sessions)
	diag.Pass = PassStrict
	if len(sessions) == 0 {
		sessions = e.fallbackPass(doc.Selection, now, &diag)
		diag.Fallback = len(sessions)
		diag.Pass = PassFallback
	}

	sessions = DedupSort(sessions)
	diag.Kept = len(sessions)
	slog.Debug("extraction finished", diag.LogArgs()...)

	if len(sessions) == 0 {
		return nil, diag, ErrNoSessions
	}
	return sessions, diag, nil
}

func (e *Extractor) strictPass(root *goquery.Selection, now time.Time, diag *Diagnostics) []entity.Session {
	var cards *goquery.Selection
	for _, group := range e.profile.Strict.Selectors {
		if sel := root.Find(group); sel.Length() > 0 {
			slog.Debug("strict selector matched", "selector", group, "candidates", sel.Length())
			cards = sel
			break
		}
	}
	if cards == nil {
		return nil
	}

	return e.scan(cards, cards.Length(), func(card *goquery.Selection, text string) (entity.Session, bool) {
		diag.Total++
		if v := Classify(card, text, e.profile); v != Accept {
			diag.reject(v)
			return entity.Session{}, false
		}
		s, ok := e.extract(card, text, now, false)
		if !ok {
			diag.NoDate++
		}
		return s, ok
	})
}

func (e *Extractor) fallbackPass(root *goquery.Selection, now time.Time, diag *Diagnostics) []entity.Session {
	fb := e.profile.Fallback
	nodes := root.Find(fb.Scope)
	limit := min(nodes.Length(), fb.Limit)
	slog.Debug("fallback scan", "scope", fb.Scope, "elements", nodes.Length(), "limit", limit)

	return e.scan(nodes, limit, func(el *goquery.Selection, text string) (entity.Session, bool) {
		if !e.profile.compiled.fallbackKeywords.MatchString(text) {
			return entity.Session{}, false
		}
		// A fragment without a link is inline markup inside a card; let the card match.
		if el.Find("a[href]").Length() == 0 {
			return entity.Session{}, false
		}
		diag.Total++
		if v := e.profile.exclude(text); v != Accept {
			diag.reject(v)
			return entity.Session{}, false
		}
		s, ok := e.extract(el, text, now, true)
		if !ok {
			diag.NoDate++
		}
		return s, ok
	})
}

// scan visits the first limit elements of sel innermost first. Once an element yields a
// session its ancestors are no longer candidates, so a wrapper never swallows the cards
// it contains. The result is in document order.
func (e *Extractor) scan(sel *goquery.Selection, limit int, visit func(*goquery.Selection, string) (entity.Session, bool)) []entity.Session {
	covered := make(map[*html.Node]bool)
	var out []entity.Session
	for i := limit - 1; i >= 0; i-- {
		node := sel.Get(i)
		if covered[node] {
			continue
		}
		el := sel.Eq(i)
		s, ok := visit(el, NormalizeVisible(node))
		if !ok {
			continue
		}
		for n := node.Parent; n != nil; n = n.Parent {
			covered[n] = true
		}
		out = append(out, s)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// extract builds a session from one accepted candidate. Only a missing date rejects it.
func (e *Extractor) extract(card *goquery.Selection, text string, now time.Time, fallback bool) (entity.Session, bool) {
	p := e.profile
	f := p.Fields

	titleText := selectionText(first(card, f.Title))
	in := DateInput{Title: titleText, Text: text}
	if dateEl := first(card, f.Date); dateEl.Length() > 0 {
		in.Attribute, _ = dateEl.Attr("datetime")
		in.Labeled = selectionText(dateEl)
	}
	date, ok := p.RecognizeDate(in, now)
	if !ok {
		return entity.Session{}, false
	}

	title := p.cleanTitle(titleText)
	if title == "" {
		title = p.cleanTitle(text)
	}
	if title == "" {
		title = p.DefaultTitle
	}

	system := selectionText(first(card, f.System))
	if system == "" {
		system = p.GuessSystem(text)
	}

	short := selectionText(first(card, f.Short))
	if short == "" {
		short = p.describe(text)
	}
	if short == "" {
		short = text
	}

	seats := p.recognizeSeatsScoped(selectionText(first(card, f.Seats)), text)
	signup := e.pickSignup(card, fallback)

	return entity.Session{
		ID:         entity.NewID(date.Instant, title, signup),
		Date:       date.Instant,
		Title:      title,
		System:     system,
		Short:      truncateRunes(short, shortMaxRunes, shortCutRunes),
		SpotsTotal: seats.Total,
		SpotsFree:  seats.Free,
		SignupURL:  signup,
		HTML:       e.sanitize(card),
	}, true
}

// GuessSystem maps the text to one of the known game system families.
func (p *Profile) GuessSystem(text string) string {
	for _, rule := range p.compiled.systems {
		if rule.re.MatchString(text) {
			return rule.label
		}
	}
	return p.DefaultSystem
}

// cleanTitle strips a leading date/time prefix, cuts at the first metadata label or
// sentence end and caps the length.
func (p *Profile) cleanTitle(s string) string {
	c := p.compiled
	for i := 0; i < 8; i++ {
		before := s
		s = leadingSeparatorRE.ReplaceAllString(s, "")
		s = c.weekdayLead.ReplaceAllString(s, "")
		s = leadingNumericRE.ReplaceAllString(s, "")
		s = leadingTimeRE.ReplaceAllString(s, "")
		if m := leadingLocalizedRE.FindStringSubmatchIndex(s); m != nil {
			if _, ok := c.months[strings.ToLower(s[m[2]:m[3]])]; ok {
				s = s[m[1]:]
			}
		}
		if s == before {
			break
		}
	}
	if c.stopMarkers != nil {
		if loc := c.stopMarkers.FindStringIndex(s); loc != nil {
			s = s[:loc[0]]
		}
	}
	if i := strings.Index(s, ". "); i >= 0 {
		s = s[:i]
	}
	s = trailingSeparatorRE.ReplaceAllString(s, "")
	return truncateRunes(strings.TrimSpace(s), titleMaxRunes, titleMaxRunes)
}

// describe synthesizes a short description from labeled fragments such as
// "Система: CoC" and "Мастер: Анна".
func (p *Profile) describe(text string) string {
	c := p.compiled
	if c.stopMarkers == nil || len(c.describedSet) == 0 {
		return ""
	}
	marks := c.stopMarkers.FindAllStringIndex(text, -1)
	var parts []string
	for i, m := range marks {
		label := text[m[0]:m[1]]
		if !c.describedSet[strings.ToLower(label)] {
			continue
		}
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		value := trailingSeparatorRE.ReplaceAllString(strings.TrimSpace(text[m[1]:end]), "")
		if value == "" {
			continue
		}
		parts = append(parts, label+" "+truncateRunes(value, labelMaxRunes, labelMaxRunes))
	}
	return strings.Join(parts, " · ")
}

// pickSignup prefers the dedicated signup selector, then any link that reads like a
// signup action. The fallback scan also accepts the first absolute http(s) link.
func (e *Extractor) pickSignup(card *goquery.Selection, fallback bool) string {
	c := e.profile.compiled
	if a := first(card, e.profile.Fields.Signup); a.Length() > 0 {
		if href := strings.TrimSpace(a.AttrOr("href", "")); href != "" {
			return e.resolve(href)
		}
	}

	var href string
	links := card.Find("a[href]")
	links.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h := strings.TrimSpace(a.AttrOr("href", ""))
		if h != "" && (c.ctaText.MatchString(selectionText(a)) || c.ctaText.MatchString(h)) {
			href = h
			return false
		}
		return true
	})
	if href != "" {
		return e.resolve(href)
	}
	if !fallback {
		return ""
	}
	links.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if resolved := e.resolve(strings.TrimSpace(a.AttrOr("href", ""))); strings.HasPrefix(resolved, "http") {
			href = resolved
			return false
		}
		return true
	})
	return href
}

func (e *Extractor) resolve(href string) string {
	if e.base == nil || href == "" {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return e.base.ResolveReference(u).String()
}

func (e *Extractor) sanitize(card *goquery.Selection) string {
	raw, err := goquery.OuterHtml(card)
	if err != nil {
		slog.Debug("outer html rendering failed", "err", err)
		return ""
	}
	return strings.TrimSpace(e.policy.Sanitize(raw))
}

// first returns the first descendant matching selector, or an empty selection.
func first(sel *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return sel.Slice(0, 0)
	}
	return sel.Find(selector).First()
}
