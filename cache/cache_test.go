package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/use-agent/pagegrab/models"
)

func TestKeyVariesByRequest(t *testing.T) {
	base := &models.FetchRequest{URL: "https://example.com"}
	withSelector := &models.FetchRequest{URL: "https://example.com", WaitSelector: "#main"}
	withMarkdown := &models.FetchRequest{URL: "https://example.com", Markdown: true}
	withExclude := &models.FetchRequest{URL: "https://example.com", Markdown: true, MarkdownExclude: []string{"nav"}}

	keys := map[string]string{
		"base":     Key(base),
		"selector": Key(withSelector),
		"markdown": Key(withMarkdown),
		"exclude":  Key(withExclude),
	}

	seen := make(map[string]string)
	for name, k := range keys {
		if prev, ok := seen[k]; ok {
			t.Errorf("requests %q and %q produced the same key", prev, name)
		}
		seen[k] = name
	}

	if Key(base) != Key(&models.FetchRequest{URL: "https://example.com"}) {
		t.Error("identical requests must produce identical keys")
	}
}

func TestGetSet(t *testing.T) {
	c := New(10)
	result := models.NewPageResult()
	result.URL = "https://example.com"

	key := Key(&models.FetchRequest{URL: "https://example.com"})
	c.Set(key, result)

	got, hit := c.Get(key, 60000)
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.URL != "https://example.com" {
		t.Errorf("got URL %q", got.URL)
	}
}

func TestGetDisabledWhenMaxAgeZero(t *testing.T) {
	c := New(10)
	c.Set("k", models.NewPageResult())

	if _, hit := c.Get("k", 0); hit {
		t.Error("maxAge <= 0 must bypass the cache")
	}
}

func TestGetExpired(t *testing.T) {
	c := New(10)
	c.Set("k", models.NewPageResult())

	// Backdate the entry past any reasonable maxAge.
	c.mu.Lock()
	c.store["k"].createdAt = time.Now().Add(-time.Minute)
	c.mu.Unlock()

	if _, hit := c.Get("k", 1000); hit {
		t.Error("entry older than maxAge must miss")
	}
}

func TestSetEvictsAtCapacity(t *testing.T) {
	c := New(3)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), models.NewPageResult())
	}

	c.mu.RLock()
	n := len(c.store)
	c.mu.RUnlock()

	if n > 3 {
		t.Errorf("cache holds %d entries, capacity is 3", n)
	}
}
