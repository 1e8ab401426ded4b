// Package fetcher owns the browser session lifecycle and the page
// load/extract operation built on top of it.
package fetcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/pagegrab/certstore"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/dialog"
	"github.com/use-agent/pagegrab/models"
)

// Session binds a running browser, one isolated profile and one page.
// Create with NewSession, release with Close. A Session produces one
// PageResult per Fetch call; it is not safe for concurrent Fetch calls.
type Session struct {
	browser    *rod.Browser
	launcher   *launcher.Launcher
	page       *rod.Page
	profileDir string
	watcher    *dialog.Watcher
	timeout    time.Duration
	graceWait  time.Duration
	joinWait   time.Duration
	viewport   *models.Viewport
}

// NewSession looks up a client certificate, prepares a fresh profile with
// the auto-select policy, launches the browser and opens one page.
//
// Lifecycle:
//
//  1. Certificate lookup        – best-effort, never fails the session
//  2. Profile directory         – fresh temp dir, removed on Close
//  3. Auto-select policy        – written into the profile, best-effort
//  4. Launch                    – noise-suppression flags + caller policy
//  5. Connect + page            – one page, fixed UA and viewport
//  6. Dialog watcher            – best-effort, absent on unsupported hosts
//
// Steps 4 and 5 are the only fatal ones: everything certificate- or
// watcher-related degrades gracefully per the error taxonomy.
func NewSession(ctx context.Context, cfg *config.Config) (*Session, error) {
	s := &Session{
		timeout:   cfg.Fetch.DefaultTimeout,
		graceWait: cfg.Fetch.GraceWait,
		joinWait:  cfg.Watcher.JoinTimeout,
		viewport:  &models.Viewport{

			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		},
	}

	// ── 1. Certificate lookup ───────────────────────────────────────
	var cert *certstore.CertificateRef
	if !cfg.Cert.Disabled {
		cert = certstore.NewFinder(cfg.Cert.LookupTimeout).Find(ctx)
	}

	// ── 2. Fresh isolated profile ───────────────────────────────────
	profileDir, err := os.MkdirTemp("", "pagegrab-profile-")
	if err != nil {
		return nil, models.NewFetchError(
			models.ErrCodeBrowserCrash,
			"failed to create profile directory",
			err,
		)
	}
	s.profileDir = profileDir

	// ── 3. Certificate auto-select policy ───────────────────────────
	if !cfg.Cert.Disabled {
		if err := writeAutoSelectPolicy(profileDir, cert); err != nil {
			slog.Warn("failed to write certificate auto-select policy",
				"dir", profileDir, "error", err,
			)
		}
	}

	// ── 4. Launch browser ───────────────────────────────────────────
	l := launcher.New().
		Headless(cfg.Browser.Headless).
		NoSandbox(cfg.Browser.NoSandbox).
		UserDataDir(profileDir)

	if cfg.Browser.BrowserBin != "" {
		l = l.Bin(cfg.Browser.BrowserBin)
	}
	if cfg.Browser.Proxy != "" {
		l = l.Proxy(cfg.Browser.Proxy)
	}

	// Noise suppression: no first-run prompts, no default apps, no
	// extensions, no popup-blocking interference.
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Delete(flags.Flag("enable-automation"))

	// Mixed-content tolerance and automatic client-certificate selection.
	l.Set(flags.Flag("allow-running-insecure-content"))
	l.Set(flags.Flag("auto-select-client-certificate"))

	if cfg.Browser.IgnoreHTTPSErrors {
		l.Set(flags.Flag("ignore-certificate-errors"))
	}

	controlURL, err := l.Launch()
	if err != nil {
		s.Close()
		return nil, models.NewFetchError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	s.launcher = l
	slog.Info("browser launched",
		"headless", cfg.Browser.Headless,
		"profile", profileDir,
	)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		s.Close()
		return nil, models.NewFetchError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}
	s.browser = browser

	// ── 5. Single page with fixed identity ──────────────────────────
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, models.NewFetchError(
			models.ErrCodeBrowserCrash,
			"failed to create page",
			err,
		)
	}
	s.page = page

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: cfg.Browser.UserAgent,
	}); err != nil {
		s.Close()
		return nil, models.NewFetchError(
			models.ErrCodeBrowserCrash,
			"failed to set user agent",
			err,
		)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.Browser.ViewportWidth,
		Height:            cfg.Browser.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.Close()
		return nil, models.NewFetchError(
			models.ErrCodeBrowserCrash,
			"failed to set viewport",
			err,
		)
	}

	// ── 6. Dialog watcher (best-effort) ─────────────────────────────
	if !cfg.Watcher.Disabled {
		w, err := dialog.NewWatcher(cfg.Watcher.PollInterval)
		if err != nil {
			slog.Info("certificate dialog watcher unavailable", "reason", err)
		} else {
			w.Start()
			s.watcher = w
		}
	}

	return s, nil
}

// Timeout returns the session's uniform wait-step timeout.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// Close releases every session resource. Each step is independently
// guarded: a failure is logged and the remaining steps still run. Safe to
// call on a partially-constructed session and safe to call more than once.
func (s *Session) Close() {
	if s.watcher != nil {
		s.watcher.Stop(s.joinWait)
		s.watcher = nil
	}

	if s.page != nil {
		if err := s.page.Close(); err != nil {
			slog.Warn("failed to close page", "error", err)
		}
		s.page = nil
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			slog.Warn("failed to close browser", "error", err)
		}
		s.browser = nil
	}

	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}

	if s.profileDir != "" {
		if err := os.RemoveAll(s.profileDir); err != nil {
			slog.Warn("failed to remove profile directory",
				"dir", s.profileDir, "error", err,
			)
		}
		s.profileDir = ""
	}

	slog.Debug("session closed")
}
