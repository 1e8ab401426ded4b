package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestPageResult_AlwaysHasCollectionKeys(t *testing.T) {
	raw, err := json.Marshal(NewPageResult())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"url", "title", "status_code", "html", "text", "metadata", "links", "forms", "images"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("key %q missing from serialized result", key)
		}
	}

	for _, key := range []string{"links", "forms", "images"} {
		if string(decoded[key]) != "[]" {
			t.Errorf("%s = %s, want [] (never null)", key, decoded[key])
		}
	}

	if string(decoded["status_code"]) != "null" {
		t.Errorf("status_code = %s, want null when no response was captured", decoded["status_code"])
	}
}

func TestPageResult_MarkdownOmittedWhenEmpty(t *testing.T) {
	raw, err := json.Marshal(NewPageResult())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "markdown") {
		t.Error("empty markdown field must be omitted")
	}
}

func TestPageResult_RoundTrip(t *testing.T) {
	status := 200
	original := NewPageResult()
	original.URL = "https://пример.рф/страница"
	original.Title = "Пример — тест"
	original.StatusCode = &status
	original.Text = "日本語テキスト"
	original.Links = append(original.Links, Link{Href: "https://iana.org/domains", Text: "More"})
	original.Metadata.Viewport = &Viewport{Width: 1920, Height: 1080}
	original.Metadata.Cookies = append(original.Metadata.Cookies, Cookie{
		Name: "sid", Value: "абв", Domain: "пример.рф", Path: "/", Expires: 1e9, Secure: true,
	})

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	var decoded PageResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Title != original.Title {
		t.Errorf("title = %q, want %q", decoded.Title, original.Title)
	}
	if decoded.URL != original.URL {
		t.Errorf("url = %q, want %q", decoded.URL, original.URL)
	}
	if decoded.StatusCode == nil || *decoded.StatusCode != 200 {
		t.Errorf("status_code = %v, want 200", decoded.StatusCode)
	}
	if len(decoded.Metadata.Cookies) != 1 || decoded.Metadata.Cookies[0].Value != "абв" {
		t.Errorf("cookies did not round-trip: %+v", decoded.Metadata.Cookies)
	}
}

func TestFetchError(t *testing.T) {
	inner := errors.New("net::ERR_CONNECTION_REFUSED")
	err := NewFetchError(ErrCodeNavigation, "navigation to target URL failed", inner)

	if !strings.Contains(err.Error(), ErrCodeNavigation) {
		t.Errorf("error string should carry the code: %s", err.Error())
	}
	if !strings.Contains(err.Error(), inner.Error()) {
		t.Errorf("error string should carry the cause: %s", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("wrapped error must be reachable via errors.Is")
	}

	detail := err.ToDetail()
	if detail.Code != ErrCodeNavigation || detail.Message != "navigation to target URL failed" {
		t.Errorf("unexpected detail: %+v", detail)
	}
}

func TestFetchError_NoCause(t *testing.T) {
	err := NewFetchError(ErrCodeNotInitialized, "session has no active page", nil)
	if err.Unwrap() != nil {
		t.Error("Unwrap on cause-less error should be nil")
	}
	want := "NOT_INITIALIZED: session has no active page"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFetchRequest_UnsetFieldsStayUnset(t *testing.T) {
	// Zero timeout and nil wait_time mean "use the session defaults";
	// decoding must not invent values for them.
	var req FetchRequest
	if err := json.Unmarshal([]byte(`{"url":"https://example.com"}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Timeout != 0 {
		t.Errorf("timeout = %d, want 0 (unset)", req.Timeout)
	}
	if req.WaitTime != nil {
		t.Errorf("wait_time = %v, want nil (unset)", req.WaitTime)
	}
}
