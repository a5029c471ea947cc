package collect

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var cdataRe = regexp.MustCompile(`<!\[CDATA\[([\s\S]*?)\]\]>`)

// cleanText unwraps CDATA sections, decodes HTML entities, drops markup and
// normalizes whitespace.
func cleanText(s string) string {
	s = cdataRe.ReplaceAllString(s, "$1")
	s = html.UnescapeString(s)
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func orUnknown(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return "unknown"
	}
	return author
}
