package cleaner

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ApplyCSSSelector narrows rawHTML to the elements matching the selector,
// returning their outer HTML concatenated in document order. No matches
// returns the input unchanged, so the markdown pipeline always has a
// document to work on.
func ApplyCSSSelector(rawHTML string, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	matched := false
	for _, node := range cascadia.QueryAll(doc, sel) {
		if err := html.Render(&sb, node); err != nil {
			return "", err
		}
		matched = true
	}

	if !matched {
		return rawHTML, nil
	}
	return sb.String(), nil
}
