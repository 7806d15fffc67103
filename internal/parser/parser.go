package parser

import (
	"fmt"

	"github.com/kettari/games-bot/internal/entity"
	"github.com/kettari/games-bot/internal/scraper"
)

// Parser extracts sessions from fetched pages with one profile.
type Parser struct {
	profile *Profile
	opts    []Option
}

func NewParser(profile *Profile, opts ...Option) *Parser {
	return &Parser{
		profile: profile,
		opts:    opts,
	}
}

// Parse runs the extractor over page. Relative links are resolved against the page URL.
func (p *Parser) Parse(page *scraper.Page) ([]entity.Session, Diagnostics, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("failed to parse page: %w", err)
	}
	opts := append([]Option{}, p.opts...)
	if base := page.BaseURL(); base != nil {
		opts = append(opts, WithBaseURL(base))
	}
	return NewExtractor(p.profile, opts...).Extract(doc)
}
