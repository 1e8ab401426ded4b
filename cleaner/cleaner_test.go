package cleaner

import (
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Test Article</title></head>
<body>
<nav id="menu"><a href="/home">Home</a></nav>
<article>
<h1>Понимание наблюдаемости</h1>
<p>Observability is the ability to understand the internal state of a system
from its external outputs. This paragraph exists to give the readability
algorithm enough substance to identify the main content of the page, which
requires a reasonable amount of visible text in a single container.</p>
<p>A second paragraph keeps the content block clearly dominant over the
navigation and footer noise that surrounds it in this fixture.</p>
</article>
<footer class="site-footer">© Example</footer>
</body></html>`

func TestApplyCSSSelector(t *testing.T) {
	got, err := ApplyCSSSelector(articleHTML, "article")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Понимание наблюдаемости") {
		t.Error("selected fragment lost the article heading")
	}
	if strings.Contains(got, "site-footer") {
		t.Error("selected fragment should not contain the footer")
	}
}

func TestApplyCSSSelector_NoMatchFallsBack(t *testing.T) {
	got, err := ApplyCSSSelector(articleHTML, "#does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	if got != articleHTML {
		t.Error("no-match case must return the input unchanged")
	}
}

func TestApplyCSSSelector_InvalidSelector(t *testing.T) {
	if _, err := ApplyCSSSelector(articleHTML, "p["); err == nil {
		t.Error("invalid selector must surface an error")
	}
}

func TestExcludeElements(t *testing.T) {
	got := ExcludeElements(articleHTML, []string{"nav", ".site-footer"})
	if strings.Contains(got, "Home") {
		t.Error("nav should be removed")
	}
	if strings.Contains(got, "© Example") {
		t.Error("footer should be removed")
	}
	if !strings.Contains(got, "Observability") {
		t.Error("main content must survive exclusion")
	}
}

func TestExcludeElements_EmptySelectors(t *testing.T) {
	if got := ExcludeElements(articleHTML, nil); got != articleHTML {
		t.Error("empty selector list must return the input unchanged")
	}
}

func TestExtractContent(t *testing.T) {
	article, ok := ExtractContent(articleHTML, "https://example.com/post")
	if !ok {
		t.Fatal("readability should succeed on the article fixture")
	}
	if !strings.Contains(article.TextContent, "Observability") {
		t.Error("main text missing from extracted content")
	}
}

func TestExtractContent_TooShortFallsBack(t *testing.T) {
	short := `<html><body><p>hi</p></body></html>`
	article, ok := ExtractContent(short, "https://example.com")
	if ok {
		t.Error("short content should not count as a successful extraction")
	}
	if article.Content != short {
		t.Error("fallback must pass the full document through")
	}
}

func TestMarkdownPipeline(t *testing.T) {
	c := NewCleaner()

	md, err := c.Markdown(articleHTML, "https://example.com/post", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "Понимание наблюдаемости") {
		t.Errorf("markdown lost the heading:\n%s", md)
	}
	if !strings.Contains(md, "Observability") {
		t.Errorf("markdown lost the body text:\n%s", md)
	}
}

func TestMarkdownPipeline_WithNarrowing(t *testing.T) {
	c := NewCleaner()

	md, err := c.Markdown(articleHTML, "https://example.com/post", Options{
		Selector: "article",
		Exclude:  []string{"nav"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(md, "Home") {
		t.Errorf("markdown should not contain nav links:\n%s", md)
	}
}

func TestMarkdownPipeline_InvalidSelectorUsesFullDocument(t *testing.T) {
	c := NewCleaner()

	md, err := c.Markdown(articleHTML, "https://example.com/post", Options{Selector: "p["})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "Observability") {
		t.Error("invalid selector must degrade to the full document, not fail")
	}
}
