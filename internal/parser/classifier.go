package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// Verdict is the Card Classifier decision for a candidate subtree.
type Verdict int

const (
	Accept Verdict = iota
	RejectHeader
	RejectBanner
	RejectNoSignals
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case RejectHeader:
		return "header"
	case RejectBanner:
		return "banner"
	case RejectNoSignals:
		return "no_signals"
	}
	return "unknown"
}

// Classify decides whether sel is a session card. Headings and banners are rejected
// first; a card is accepted when its text carries an availability phrase or it holds a
// link or button that looks like a signup action.
func Classify(sel *goquery.Selection, text string, p *Profile) Verdict {
	if v := p.exclude(text); v != Accept {
		return v
	}
	if p.compiled.seatSignals.MatchString(text) {
		return Accept
	}
	if hasSignupAction(sel, p) {
		return Accept
	}
	return RejectNoSignals
}

// exclude rejects page headings and banners.
func (p *Profile) exclude(text string) Verdict {
	for _, re := range p.compiled.headers {
		if re.MatchString(text) {
			return RejectHeader
		}
	}
	for _, re := range p.compiled.banners {
		if re.MatchString(text) {
			return RejectBanner
		}
	}
	return Accept
}

func hasSignupAction(sel *goquery.Selection, p *Profile) bool {
	if sel == nil {
		return false
	}
	c := p.compiled
	found := false
	sel.Find("a, button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if c.ctaText.MatchString(selectionText(s)) {
			found = true
			return false
		}
		if href, ok := s.Attr("href"); ok && c.ctaHref.MatchString(href) {
			found = true
			return false
		}
		return true
	})
	return found
}
