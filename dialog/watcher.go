// Package dialog watches for the native certificate-selection dialog and
// dismisses it, so headful runs against mutual-TLS hosts do not hang on a
// prompt the user cannot see.
//
// The watcher is a capability: hosts without a window-automation facility
// get ErrUnavailable from NewWatcher and the feature is simply absent.
package dialog

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrUnavailable reports that the host has no window-automation facility.
var ErrUnavailable = errors.New("dialog watcher unavailable on this platform")

// prober performs one scan cycle: enumerate top-level windows, try to
// dismiss any certificate dialog found. Returns how many dialogs were
// dismissed. Per-window failures are the prober's to swallow; a returned
// error is logged and the loop keeps running.
type prober interface {
	dismiss() (int, error)
}

// Watcher polls for certificate dialogs in the background until stopped.
type Watcher struct {
	p        prober
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewWatcher builds a watcher for the host platform. interval is the poll
// period; values <= 0 fall back to 500ms.
func NewWatcher(interval time.Duration) (*Watcher, error) {
	p, err := newPlatformProber()
	if err != nil {
		return nil, err
	}
	return newWatcher(p, interval), nil
}

func newWatcher(p prober, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Watcher{
		p:        p,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. It returns immediately.
func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.done)

	slog.Debug("dialog watcher started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			slog.Debug("dialog watcher stopped")
			return
		case <-ticker.C:
			n, err := w.p.dismiss()
			if err != nil {
				slog.Warn("dialog scan cycle failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("certificate dialog dismissed", "count", n)
			}
		}
	}
}

// Stop signals the loop to exit and waits for it, bounded by joinTimeout.
// Returns false when the loop did not confirm exit in time.
func (w *Watcher) Stop(joinTimeout time.Duration) bool {
	select {
	case <-w.stop:
		// already stopped
	default:
		close(w.stop)
	}

	select {
	case <-w.done:
		return true
	case <-time.After(joinTimeout):
		slog.Warn("dialog watcher did not stop in time", "timeout", joinTimeout)
		return false
	}
}

// certDialogTitles are substrings (lower-case) that identify a
// certificate-selection dialog across Chromium localizations.
var certDialogTitles = []string{
	"select a certificate",
	"select certificate",
	"certificate selection",
	"выбор сертификата",
	"выберите сертификат",
	"zertifikat auswählen",
	"sélectionner un certificat",
}

// isCertDialogTitle reports whether a window title identifies a
// certificate-selection dialog. Matching is case-insensitive.
func isCertDialogTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range certDialogTitles {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
