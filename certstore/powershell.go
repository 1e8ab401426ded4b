package certstore

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// defaultLookupTimeout bounds each PowerShell invocation when the caller
// gives no bound. The store query is normally instant; a hung PowerShell
// must not stall session startup.
const defaultLookupTimeout = 10 * time.Second

// thumbprintQuery selects the first personal-store certificate that has an
// associated private key.
const thumbprintQuery = `Get-ChildItem -Path Cert:\CurrentUser\My |
Where-Object { $_.HasPrivateKey -eq $true } |
Select-Object -First 1 -ExpandProperty Thumbprint`

// powershellFinder queries the Windows personal certificate store.
type powershellFinder struct {
	lookupTimeout time.Duration
}

func newPowershellFinder(lookupTimeout time.Duration) *powershellFinder {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &powershellFinder{lookupTimeout: lookupTimeout}
}

func (f *powershellFinder) Find(ctx context.Context) *CertificateRef {
	slog.Info("looking up client certificates in the Windows store")

	out, err := f.runPowerShell(ctx, thumbprintQuery)
	if err != nil {
		slog.Warn("certificate lookup failed", "error", err)
		return nil
	}

	thumbprint := strings.TrimSpace(out)
	if thumbprint == "" {
		slog.Warn("no certificates with a private key found")
		return nil
	}

	ref := &CertificateRef{Thumbprint: thumbprint}
	ref.IssuerCN = f.lookupIssuerCN(ctx, thumbprint)

	slog.Info("client certificate found",
		"thumbprint", thumbprint,
		"issuerCN", ref.IssuerCN,
	)
	return ref
}

// lookupIssuerCN resolves the issuer common name for a thumbprint.
// Any failure returns "" and auto-selection falls back to a wildcard filter.
func (f *powershellFinder) lookupIssuerCN(ctx context.Context, thumbprint string) string {
	query := `Get-ChildItem -Path Cert:\CurrentUser\My |
Where-Object { $_.Thumbprint -eq '` + thumbprint + `' } |
Select-Object -First 1 -ExpandProperty Issuer`

	out, err := f.runPowerShell(ctx, query)
	if err != nil {
		slog.Warn("certificate issuer lookup failed", "error", err)
		return ""
	}

	cn := parseIssuerCN(strings.TrimSpace(out))
	if cn == "" {
		slog.Warn("could not parse issuer CN, using wildcard filter",
			"issuer", strings.TrimSpace(out),
		)
	}
	return cn
}

// runPowerShell executes one command with the lookup deadline applied.
func (f *powershellFinder) runPowerShell(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.lookupTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", command)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
