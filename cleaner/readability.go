package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content and fall back to the
// full document.
const minContentLength = 50

// ExtractContent runs the Mozilla Readability algorithm on rawHTML.
//
// The markdown field is supplemental, so extraction must never fail the
// fetch: if the URL does not parse, readability errors, or the extracted
// text is shorter than minContentLength, the full HTML is passed through
// unchanged and the second return value is false.
func ExtractContent(rawHTML string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, using full document",
			"url", sourceURL, "error", err,
		)
		return passthroughArticle(rawHTML), false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, using full document",
			"url", sourceURL, "error", err,
		)
		return passthroughArticle(rawHTML), false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Warn("readability: extracted content too short, using full document",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return passthroughArticle(rawHTML), false
	}

	return article, true
}

// passthroughArticle wraps the full HTML into an Article so the pipeline
// can proceed uniformly regardless of whether readability succeeded.
func passthroughArticle(rawHTML string) readability.Article {
	return readability.Article{
		Content:     rawHTML,
		TextContent: rawHTML,
	}
}
