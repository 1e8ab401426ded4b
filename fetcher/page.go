package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/use-agent/pagegrab/models"
)

// Fetch navigates the session page to the requested URL, waits through the
// readiness sequence and extracts the page facts.
//
// Readiness sequence (each wait bounded by the session default timeout):
//
//  1. Navigate           – returns at navigation commit; the explicit
//     waits below are the single source of truth for "loaded"
//  2. DOMContentLoaded   – document parsed
//  3. load               – all resources loaded
//  4. networkIdle        – no network activity; a timeout here is fatal
//  5. Grace sleep        – fixed extra wait for deferred DOM mutation
//  6. Wait selector      – optional; a timeout here is fatal
//
// The lifecycle waiters are registered before Navigate: registering after
// would miss events that fire during navigation and stall every wait.
func (s *Session) Fetch(ctx context.Context, req *models.FetchRequest) (*models.PageResult, error) {
	if s == nil || s.page == nil {
		return nil, models.NewFetchError(
			models.ErrCodeNotInitialized,
			"session has no active page",
			nil,
		)
	}
	timeout := s.effectiveTimeout(req)
	page := s.page

	// ── Pre-navigation setup ────────────────────────────────────────
	if req.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", err,
			)
		}
	}

	router := setupHijack(page, req.BlockAds)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	// Lifecycle waiters, registered before Navigate. Each carries its own
	// deadline so a stalled step surfaces as a timeout, not a silent return.
	domCtx, domCancel := context.WithTimeout(ctx, timeout)
	defer domCancel()
	waitDOM := page.Context(domCtx).WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	loadCtx, loadCancel := context.WithTimeout(ctx, timeout)
	defer loadCancel()
	waitLoad := page.Context(loadCtx).WaitNavigation(proto.PageLifecycleEventNameLoad)

	idleCtx, idleCancel := context.WithTimeout(ctx, timeout)
	defer idleCancel()
	waitIdle := page.Context(idleCtx).WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)

	// ── 1. Navigate (commit) ────────────────────────────────────────
	slog.Info("loading page", "url", req.URL)
	navStart := time.Now()
	if err := page.Context(ctx).Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}
	slog.Debug("navigation committed", "elapsed", time.Since(navStart))

	// ── 2–4. Load-state chain ───────────────────────────────────────
	waitDOM()
	if err := stepErr(ctx, domCtx); err != nil {
		return nil, categorizeError(err, "timed out waiting for DOM content")
	}
	slog.Debug("DOM parsed")

	waitLoad()
	if err := stepErr(ctx, loadCtx); err != nil {
		return nil, categorizeError(err, "timed out waiting for load event")
	}
	slog.Debug("resources loaded")

	waitIdle()
	if err := stepErr(ctx, idleCtx); err != nil {
		return nil, categorizeError(err, "timed out waiting for network idle")
	}
	slog.Debug("network idle")

	// ── 5. Grace period for deferred script-driven DOM mutation ─────
	if grace := s.effectiveGrace(req); grace > 0 {
		slog.Debug("grace wait", "duration", grace)
		select {
		case <-time.After(grace):
		case <-ctx.Done():
			return nil, categorizeError(ctx.Err(), "canceled during grace wait")
		}
	}

	// ── 6. Optional wait selector ───────────────────────────────────
	if req.WaitSelector != "" {
		slog.Info("waiting for selector", "selector", req.WaitSelector)
		selCtx, selCancel := context.WithTimeout(ctx, timeout)
		if err := page.Context(selCtx).WaitElementsMoreThan(req.WaitSelector, 0); err != nil {
			selCancel()
			return nil, &models.FetchError{
				Code:    models.ErrCodeSelector,
				Message: "element never appeared: " + req.WaitSelector,
				Err:     err,
			}
		}
		selCancel()
	}

	slog.Info("page fully loaded", "url", req.URL)

	// ── Extraction ──────────────────────────────────────────────────
	extractCtx, extractCancel := context.WithTimeout(ctx, timeout)
	defer extractCancel()
	return s.extract(page.Context(extractCtx), req.URL)
}

// effectiveTimeout resolves the per-call wait-step timeout: the request
// value when set, otherwise the session default (from configuration).
func (s *Session) effectiveTimeout(req *models.FetchRequest) time.Duration {
	if req.Timeout > 0 {
		return time.Duration(req.Timeout) * time.Second
	}
	return s.timeout
}

// effectiveGrace resolves the post-idle grace period: the request value
// when set (negative means none), otherwise the session default.
func (s *Session) effectiveGrace(req *models.FetchRequest) time.Duration {
	if req.WaitTime == nil {
		return s.graceWait
	}
	if *req.WaitTime < 0 {
		return 0
	}
	return time.Duration(*req.WaitTime) * time.Second
}

// stepErr reports how a wait step ended: nil on success, the caller error
// when the whole operation was canceled, the step error on a step timeout.
func stepErr(parent, step context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if err := step.Err(); err != nil && errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// categorizeError wraps raw errors into typed FetchErrors so callers can
// map them to exit codes and HTTP statuses.
func categorizeError(err error, msg string) *models.FetchError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewFetchError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewFetchError(models.ErrCodeCanceled, "operation canceled", err)
	default:
		return models.NewFetchError(models.ErrCodeNavigation, msg, err)
	}
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
