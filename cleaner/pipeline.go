// Package cleaner turns rendered page HTML into a compact Markdown
// rendition: optional CSS narrowing, readability main-content extraction,
// then HTML→Markdown conversion.
package cleaner

import (
	"log/slog"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// Cleaner runs the markdown pipeline. The converter is created once and
// reused across all calls (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: newMarkdownConverter(),
	}
}

// Options carries optional content-narrowing parameters for the pipeline.
type Options struct {
	// Selector keeps only the outer HTML of matching elements.
	Selector string

	// Exclude removes elements matching these selectors before extraction.
	Exclude []string
}

// Markdown converts rendered page HTML to Markdown.
//
// Flow:
//  1. Narrow to Options.Selector matches (no matches → full document).
//  2. Drop Options.Exclude matches.
//  3. Readability extracts the main content; when it fails or finds too
//     little text the full HTML goes through unchanged.
//  4. html-to-markdown renders the result, resolving relative URLs
//     against sourceURL.
func (c *Cleaner) Markdown(rawHTML string, sourceURL string, opts Options) (string, error) {
	html := rawHTML

	if opts.Selector != "" {
		narrowed, err := ApplyCSSSelector(html, opts.Selector)
		if err != nil {
			slog.Warn("markdown selector is invalid, using full document",
				"selector", opts.Selector, "error", err,
			)
		} else {
			html = narrowed
		}
	}

	if len(opts.Exclude) > 0 {
		html = ExcludeElements(html, opts.Exclude)
	}

	article, _ := ExtractContent(html, sourceURL)

	return ToMarkdown(c.mdConverter, article.Content, sourceURL)
}
