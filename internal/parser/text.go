package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	// .t778__title{font-size:20px} and @media (max-width:980px){...} leaking from inline styles
	styleRuleRE  = regexp.MustCompile(`(?:@media[^{}]{0,160}|[.#][A-Za-z_][\w\-]*(?:[\s,>:+~.#\w\-()\[\]="']{0,120})?)\{[^{}]*\}`)
	// closing braces left behind by nested @media blocks
	strayBraceRE = regexp.MustCompile(`[{}]`)
)

var hiddenElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true, atom.Hr: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Section: true, atom.Table: true, atom.Td: true, atom.Th: true, atom.Tr: true,
	atom.Ul: true,
}

// NormalizeText returns the rendered text of the subtree: script, style and noscript
// content is skipped, block boundaries become spaces and whitespace runs collapse.
func NormalizeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	writeVisibleText(n, &sb)
	return collapse(sb.String())
}

// NormalizeVisible is NormalizeText with stylesheet fragments removed.
func NormalizeVisible(n *html.Node) string {
	return StripStyleNoise(NormalizeText(n))
}

// StripStyleNoise removes CSS rule fragments that leaked into text nodes.
func StripStyleNoise(s string) string {
	for i := 0; i < 4; i++ {
		cleaned := styleRuleRE.ReplaceAllString(s, " ")
		if cleaned == s {
			break
		}
		s = cleaned
	}
	return collapse(strayBraceRE.ReplaceAllString(s, " "))
}

func writeVisibleText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if hiddenElements[n.DataAtom] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisibleText(c, sb)
	}
	if block {
		sb.WriteByte(' ')
	}
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// selectionText is the visible text of the first node of sel.
func selectionText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return NormalizeVisible(sel.Get(0))
}

// truncateRunes cuts s to limit runes and appends an ellipsis when it was longer than max.
func truncateRunes(s string, max, limit int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:limit])) + "…"
}
