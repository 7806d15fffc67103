package scraper

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is one fetched listing document.
type Page struct {
	URL     string
	Html    string
	Cookies []*http.Cookie
}

func NewPage(url string) *Page {
	return &Page{URL: url}
}

// Document parses the page into a goquery document. The page URL becomes the
// document URL so relative links can be resolved by the caller.
func (p *Page) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML of %s: %w", p.URL, err)
	}
	if u, err := url.Parse(p.URL); err == nil {
		doc.Url = u
	}
	return doc, nil
}

// BaseURL returns the parsed page URL, or nil when it is not absolute.
func (p *Page) BaseURL() *url.URL {
	u, err := url.Parse(p.URL)
	if err != nil || !u.IsAbs() {
		return nil
	}
	return u
}
