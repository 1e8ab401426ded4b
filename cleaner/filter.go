package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExcludeElements removes every element matching the given CSS selectors
// from the HTML. Typical use: dropping navigation, footers and cookie
// banners before the markdown conversion.
//
// Returns the input unchanged when the selector list is empty or the HTML
// cannot be parsed.
func ExcludeElements(rawHTML string, selectors []string) string {
	if len(selectors) == 0 {
		return rawHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, selector := range selectors {
		doc.Find(selector).Remove()
	}

	result, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return result
}
