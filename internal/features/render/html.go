package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockSelectors = "br, p, div, li, tr, td, th, h1, h2, h3, h4, h5, h6, section, article, header, footer, table"

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
func StripHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, head").Remove()
	// Keep adjacent blocks from gluing their words together
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
