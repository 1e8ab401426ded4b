package fetcher

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/use-agent/pagegrab/certstore"
)

// autoSelectPolicy mirrors Chromium's AutoSelectCertificateForUrls managed
// policy: a list of JSON-encoded {pattern, filter} rules.
type autoSelectPolicy struct {
	AutoSelectCertificateForUrls []string `json:"AutoSelectCertificateForUrls"`
}

// certFilter is the rule payload. An empty filter matches any certificate.
type certFilter struct {
	Pattern string     `json:"pattern"`
	Filter  filterBody `json:"filter"`
}

type filterBody struct {
	Issuer *issuerFilter `json:"ISSUER,omitempty"`
}

type issuerFilter struct {
	CN string `json:"CN"`
}

// writeAutoSelectPolicy writes the managed-policy file into the profile so
// the browser answers certificate-selection prompts without UI. With a
// known issuer the rule filters on its CN; otherwise a wildcard rule
// accepts whichever certificate the browser prefers.
func writeAutoSelectPolicy(profileDir string, cert *certstore.CertificateRef) error {
	rule := certFilter{Pattern: "*"}
	if cert != nil && cert.IssuerCN != "" {
		rule.Filter.Issuer = &issuerFilter{CN: cert.IssuerCN}
	}

	ruleJSON, err := json.Marshal(rule)
	if err != nil {
		return err
	}

	policy := autoSelectPolicy{
		AutoSelectCertificateForUrls: []string{string(ruleJSON)},
	}
	policyJSON, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Join(profileDir, "policies", "managed")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "auto_select_certificate.json"), policyJSON, 0o644)
}
