// Package render holds the presentation helpers shared by the TUI and the
// CLI: content flattening, excerpts and the card image fallback chain.
package render

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "br, p, div, li, tr, h1, h2, h3, h4, h5, h6, blockquote"

// PlainText flattens HTML content to a single line of text. Block elements
// become word breaks; scripts and styles are dropped. Input that is not HTML
// comes back with its whitespace collapsed.
func PlainText(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return collapse(content)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return collapse(content)
	}
	doc.Find("script, style").Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})
	return collapse(doc.Text())
}

// Excerpt shortens s to at most limit runes, cutting at the last word
// boundary when there is one and marking the cut with an ellipsis.
func Excerpt(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}

	runes := []rune(s)
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
