package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/cache"
	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/models"
)

// fakeFetcher returns a canned result or error and counts calls.
type fakeFetcher struct {
	result *models.PageResult
	err    error
	calls  int
}

func (f *fakeFetcher) Fetch(_ context.Context, req *models.FetchRequest) (*models.PageResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.URL = req.URL
	return &r, nil
}

func newTestRouter(f Fetcher, cl *cleaner.Cleaner, cc *cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/fetch", Fetch(f, cl, cc))
	return r
}

func doFetch(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/fetch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFetchSuccess(t *testing.T) {
	result := models.NewPageResult()
	result.Title = "Example"
	result.HTML = "<html><body>hello</body></html>"
	f := &fakeFetcher{result: result}

	w := doFetch(t, newTestRouter(f, nil, nil), `{"url":"https://example.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got models.PageResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.URL != "https://example.com" || got.Title != "Example" {
		t.Errorf("unexpected result: %+v", got)
	}
	if got.Links == nil || got.Forms == nil || got.Images == nil {
		t.Error("collection fields must decode as empty slices, not nil")
	}
}

func TestFetchInvalidBody(t *testing.T) {
	f := &fakeFetcher{result: models.NewPageResult()}

	w := doFetch(t, newTestRouter(f, nil, nil), `{"url":"not a url"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if f.calls != 0 {
		t.Error("fetcher must not run for invalid input")
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("unexpected error payload: %+v", resp)
	}
}

func TestFetchErrorMapping(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{models.ErrCodeTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeSelector, http.StatusGatewayTimeout},
		{models.ErrCodeCanceled, 499},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			f := &fakeFetcher{err: models.NewFetchError(tc.code, "boom", nil)}
			w := doFetch(t, newTestRouter(f, nil, nil), `{"url":"https://example.com"}`)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestFetchPlainErrorBecomesInternal(t *testing.T) {
	f := &fakeFetcher{err: errors.New("plain failure")}

	w := doFetch(t, newTestRouter(f, nil, nil), `{"url":"https://example.com"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFetchCache(t *testing.T) {
	result := models.NewPageResult()
	result.Title = "Cached"
	f := &fakeFetcher{result: result}
	cc := cache.New(10)
	r := newTestRouter(f, nil, cc)

	body := `{"url":"https://example.com","max_age":60000}`

	if w := doFetch(t, r, body); w.Code != http.StatusOK {
		t.Fatalf("first fetch: status = %d", w.Code)
	}
	if w := doFetch(t, r, body); w.Code != http.StatusOK {
		t.Fatalf("second fetch: status = %d", w.Code)
	}
	if f.calls != 1 {
		t.Errorf("fetcher ran %d times, cache should have served the repeat", f.calls)
	}
}

func TestFetchMarkdownRendition(t *testing.T) {
	result := models.NewPageResult()
	result.HTML = `<html><body><article><h1>Title</h1>
<p>This paragraph carries enough visible text for the main-content
extraction step to accept it as the dominant block of the page
without falling back to the raw document.</p></article></body></html>`
	f := &fakeFetcher{result: result}

	w := doFetch(t, newTestRouter(f, cleaner.NewCleaner(), nil),
		`{"url":"https://example.com","markdown":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got models.PageResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got.Markdown, "Title") {
		t.Errorf("markdown missing heading: %q", got.Markdown)
	}
}
