package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/models"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		name string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"CRITICAL", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range cases {
		if got := parseLogLevel(tc.name); got != tc.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWriteResultToFile(t *testing.T) {
	result := models.NewPageResult()
	result.URL = "https://example.com"
	result.Title = "пример & <demo>"

	// Parent directories are created on demand.
	path := filepath.Join(t.TempDir(), "out", "nested", "result.json")
	if err := writeResult(result, path); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Non-ASCII and HTML characters must survive verbatim.
	if !strings.Contains(string(raw), "пример & <demo>") {
		t.Errorf("title was escaped:\n%s", raw)
	}

	var got models.PageResult
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.URL != "https://example.com" {
		t.Errorf("URL = %q", got.URL)
	}
}

func TestWriteResultIndented(t *testing.T) {
	result := models.NewPageResult()
	path := filepath.Join(t.TempDir(), "result.json")
	if err := writeResult(result, path); err != nil {
		t.Fatal(err)
	}

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "\n  \"") {
		t.Errorf("output is not indented:\n%s", raw)
	}
	if !strings.Contains(string(raw), `"status_code": null`) {
		t.Errorf("unknown status must encode as null:\n%s", raw)
	}
}

func TestRootCmdRequiresURL(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{})
	if err := root.Execute(); err == nil {
		t.Error("missing URL argument must fail")
	}
}

func TestRootCmdFlagDefaults(t *testing.T) {
	root := newRootCmd()

	if got := root.Flags().Lookup("timeout").DefValue; got != "60" {
		t.Errorf("timeout default = %s", got)
	}
	if got := root.Flags().Lookup("wait-time").DefValue; got != "2" {
		t.Errorf("wait-time default = %s", got)
	}
	if got := root.Flags().Lookup("log-level").DefValue; got != "INFO" {
		t.Errorf("log-level default = %s", got)
	}
}

func TestApplyBrowserFlags(t *testing.T) {
	cfg := &config.Config{}
	cfg.Browser.Headless = true

	applyBrowserFlags(cfg, &fetchFlags{
		visible:    true,
		noSandbox:  true,
		browserBin: "/usr/bin/chromium",
		proxy:      "http://127.0.0.1:8888",
	})

	if cfg.Browser.Headless {
		t.Error("--visible must disable headless")
	}
	if !cfg.Browser.NoSandbox {
		t.Error("--no-sandbox not applied")
	}
	if cfg.Browser.BrowserBin != "/usr/bin/chromium" {
		t.Errorf("BrowserBin = %q", cfg.Browser.BrowserBin)
	}
	if cfg.Browser.Proxy != "http://127.0.0.1:8888" {
		t.Errorf("Proxy = %q", cfg.Browser.Proxy)
	}

	// Unset flags leave the config alone.
	cfg2 := &config.Config{}
	cfg2.Browser.Headless = true
	cfg2.Browser.BrowserBin = "/opt/chrome"
	applyBrowserFlags(cfg2, &fetchFlags{})
	if !cfg2.Browser.Headless || cfg2.Browser.BrowserBin != "/opt/chrome" {
		t.Error("empty flags must not override config values")
	}
}
