package parser

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfileYAML []byte

// ErrInvalidProfile is returned when a profile cannot be compiled.
var ErrInvalidProfile = errors.New("invalid extraction profile")

// Profile is the versioned, data-only description of the markup conventions the
// extractor targets: selector priority lists and keyword vocabularies.
type Profile struct {
	Version int `yaml:"version"`

	Strict struct {
		Selectors []string `yaml:"selectors"`
	} `yaml:"strict"`

	Fallback struct {
		Scope    string `yaml:"scope"`
		Limit    int    `yaml:"limit"`
		Keywords string `yaml:"keywords"`
	} `yaml:"fallback"`

	Fields struct {
		Title  string `yaml:"title"`
		Date   string `yaml:"date"`
		System string `yaml:"system"`
		Short  string `yaml:"short"`
		Seats  string `yaml:"seats"`
		Signup string `yaml:"signup"`
	} `yaml:"fields"`

	Classifier struct {
		Headers     []string `yaml:"headers"`
		Banners     []string `yaml:"banners"`
		SeatSignals string   `yaml:"seat_signals"`
		CtaText     string   `yaml:"cta_text"`
		CtaHref     string   `yaml:"cta_href"`
	} `yaml:"classifier"`

	Seats struct {
		Full       string `yaml:"full"`
		Recruiting string `yaml:"recruiting"`
		None       string `yaml:"none"`
		Remaining  string `yaml:"remaining"`
		Ratio      string `yaml:"ratio"`
	} `yaml:"seats"`

	Dates struct {
		DefaultTime string         `yaml:"default_time"`
		Weekdays    []string       `yaml:"weekdays"`
		Months      map[string]int `yaml:"months"`
	} `yaml:"dates"`

	Systems []struct {
		Label   string `yaml:"label"`
		Pattern string `yaml:"pattern"`
	} `yaml:"systems"`
	DefaultSystem string `yaml:"default_system"`
	DefaultTitle  string `yaml:"default_title"`

	Labels struct {
		Stop      []string `yaml:"stop"`
		Described []string `yaml:"described"`
	} `yaml:"labels"`

	compiled *compiledProfile
}

type systemRule struct {
	label string
	re    *regexp.Regexp
}

type compiledProfile struct {
	fallbackKeywords *regexp.Regexp

	headers     []*regexp.Regexp
	banners     []*regexp.Regexp
	seatSignals *regexp.Regexp
	ctaText     *regexp.Regexp
	ctaHref     *regexp.Regexp

	seatsFull       *regexp.Regexp
	seatsRecruiting *regexp.Regexp
	seatsNone       *regexp.Regexp
	seatsRemaining  *regexp.Regexp
	seatsRatio      *regexp.Regexp

	titleDate    *regexp.Regexp
	weekdayLead  *regexp.Regexp
	months       map[string]int
	defaultHour  int
	defaultMin   int
	systems      []systemRule
	stopMarkers  *regexp.Regexp
	describedSet map[string]bool
}

// DefaultProfile returns the embedded profile. It panics if the embedded file is broken,
// which is a build defect rather than a runtime condition.
func DefaultProfile() *Profile {
	p, err := ParseProfile(defaultProfileYAML)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadProfile reads a YAML profile from disk. An empty path yields the default profile.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and compiles a YAML profile.
func ParseProfile(data []byte) (*Profile, error) {
	p := &Profile{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := p.compile(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) compile() error {
	if len(p.Strict.Selectors) == 0 {
		return fmt.Errorf("%w: no strict selectors", ErrInvalidProfile)
	}
	selectors := append([]string{}, p.Strict.Selectors...)
	selectors = append(selectors, p.Fallback.Scope, p.Fields.Title, p.Fields.Date, p.Fields.System,
		p.Fields.Short, p.Fields.Seats, p.Fields.Signup)
	for _, s := range selectors {
		if s == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(s); err != nil {
			return fmt.Errorf("%w: selector %q: %v", ErrInvalidProfile, s, err)
		}
	}
	if p.Fallback.Scope == "" {
		p.Fallback.Scope = "body *"
	}
	if p.Fallback.Limit <= 0 {
		p.Fallback.Limit = 2000
	}
	if p.DefaultSystem == "" {
		p.DefaultSystem = "Настольная RPG"
	}
	if p.DefaultTitle == "" {
		p.DefaultTitle = "Игра"
	}

	c := &compiledProfile{}
	var err error
	must := func(name, expr string) *regexp.Regexp {
		if err != nil {
			return nil
		}
		if expr == "" {
			// never matches
			expr = `[^\s\S]`
		}
		re, e := regexp.Compile(expr)
		if e != nil {
			err = fmt.Errorf("%w: %s: %v", ErrInvalidProfile, name, e)
		}
		return re
	}

	c.fallbackKeywords = must("fallback.keywords", p.prefilter())
	for _, h := range p.Classifier.Headers {
		c.headers = append(c.headers, must("classifier.headers", h))
	}
	for _, b := range p.Classifier.Banners {
		c.banners = append(c.banners, must("classifier.banners", b))
	}
	c.seatSignals = must("classifier.seat_signals", p.Classifier.SeatSignals)
	c.ctaText = must("classifier.cta_text", p.Classifier.CtaText)
	c.ctaHref = must("classifier.cta_href", p.Classifier.CtaHref)

	c.seatsFull = must("seats.full", p.Seats.Full)
	c.seatsRecruiting = must("seats.recruiting", p.Seats.Recruiting)
	c.seatsNone = must("seats.none", p.Seats.None)
	c.seatsRemaining = must("seats.remaining", p.Seats.Remaining)
	c.seatsRatio = must("seats.ratio", p.Seats.Ratio)

	for _, s := range p.Systems {
		c.systems = append(c.systems, systemRule{label: s.Label, re: must("systems."+s.Label, s.Pattern)})
	}
	if err != nil {
		return err
	}

	if len(p.Dates.Months) == 0 {
		return fmt.Errorf("%w: empty month vocabulary", ErrInvalidProfile)
	}
	c.months = make(map[string]int, len(p.Dates.Months))
	for name, m := range p.Dates.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("%w: month %q out of range", ErrInvalidProfile, name)
		}
		c.months[strings.ToLower(name)] = m
	}

	c.defaultHour, c.defaultMin = 18, 0
	if p.Dates.DefaultTime != "" {
		h, m, ok := splitClock(p.Dates.DefaultTime)
		if !ok {
			return fmt.Errorf("%w: default_time %q", ErrInvalidProfile, p.Dates.DefaultTime)
		}
		c.defaultHour, c.defaultMin = h, m
	}

	weekdays := alternation(p.Dates.Weekdays)
	if weekdays == "" {
		return fmt.Errorf("%w: empty weekday vocabulary", ErrInvalidProfile)
	}
	c.titleDate = regexp.MustCompile(`(?i)(?:` + weekdays + `)[,\s]+(\d{1,2})\s+(\p{L}+)\.?,?\s+(\d{1,2}):(\d{2})`)
	c.weekdayLead = regexp.MustCompile(`(?i)^(?:` + weekdays + `)[,\s]*`)

	if stop := alternation(p.Labels.Stop); stop != "" {
		c.stopMarkers = regexp.MustCompile(`(?i)` + stop)
	}
	c.describedSet = make(map[string]bool)
	for _, l := range p.Labels.Described {
		c.describedSet[strings.ToLower(l)] = true
	}

	p.compiled = c
	return nil
}

// prefilter joins the fallback keywords with the seat and system patterns, so every
// phrase the recognizers understand also admits a fallback candidate.
func (p *Profile) prefilter() string {
	parts := []string{p.Fallback.Keywords, p.Seats.Full, p.Seats.Recruiting, p.Seats.None, p.Seats.Remaining}
	for _, s := range p.Systems {
		parts = append(parts, s.Pattern)
	}
	var groups []string
	for _, expr := range parts {
		if expr != "" {
			groups = append(groups, "(?:"+expr+")")
		}
	}
	return strings.Join(groups, "|")
}

// alternation quotes words and joins them longest first so that longer forms win.
func alternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return strings.Join(quoted, "|")
}

func splitClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
