// Package certstore locates client certificates in the host certificate
// store so the browser can auto-answer TLS client-certificate challenges.
//
// Lookup is strictly best-effort: every failure path (missing shell
// facility, timeout, empty store, unparsable issuer) degrades to "no
// certificate found" and is logged, never returned as an error.
package certstore

import (
	"context"
	"runtime"
	"strings"
	"time"
)

// CertificateRef identifies one client certificate for auto-selection.
// It has no lifecycle of its own: recomputed at session start, never
// persisted.
type CertificateRef struct {
	// Thumbprint is the certificate's SHA-1 thumbprint as stored by the OS.
	Thumbprint string

	// IssuerCN is the issuer common name, empty when it could not be
	// derived. Auto-selection falls back to a wildcard filter then.
	IssuerCN string
}

// Finder enumerates the host certificate store.
type Finder interface {
	// Find returns the first client certificate that has a private key,
	// or nil when none exists or the lookup fails.
	Find(ctx context.Context) *CertificateRef
}

// NewFinder returns the platform finder: a PowerShell-backed one on
// Windows, a no-op everywhere else. lookupTimeout bounds each store query;
// nonpositive values fall back to the 10s default.
func NewFinder(lookupTimeout time.Duration) Finder {
	if runtime.GOOS == "windows" {
		return newPowershellFinder(lookupTimeout)
	}
	return noopFinder{}
}

// noopFinder reports "no certificate" unconditionally. It keeps the core
// session logic independent of host-specific automation being present.
type noopFinder struct{}

func (noopFinder) Find(context.Context) *CertificateRef { return nil }

// parseIssuerCN extracts the first CN= segment from an X.500 issuer string
// like "CN=Corp Issuing CA, DC=corp, DC=example". Returns "" when no CN
// segment is present.
func parseIssuerCN(issuer string) string {
	idx := strings.Index(issuer, "CN=")
	if idx < 0 {
		return ""
	}
	cn := issuer[idx+len("CN="):]
	if comma := strings.IndexByte(cn, ','); comma >= 0 {
		cn = cn[:comma]
	}
	return strings.TrimSpace(cn)
}
