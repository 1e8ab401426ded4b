package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/use-agent/pagegrab/models"
)

// writeResult renders the result as indented JSON and writes it to path,
// or to stdout when path is empty. Non-ASCII text is emitted verbatim and
// HTML characters are not escaped, so page content survives byte-for-byte.
//
// The document is fully encoded before anything is written: a failure never
// leaves partial JSON behind.
func writeResult(result *models.PageResult, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if path == "" {
		// Blank line separates the document from any preceding log lines.
		fmt.Println()
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
