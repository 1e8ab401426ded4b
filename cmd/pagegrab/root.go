package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/fetcher"
	"github.com/use-agent/pagegrab/models"
)

const version = "0.1.0"

// fetchFlags collects every flag of the root command. A fresh instance per
// command keeps tests independent.
type fetchFlags struct {
	output            string
	waitSelector      string
	timeout           int
	visible           bool
	ignoreHTTPSErrors bool
	waitTime          int
	logLevel          string
	logFile           string
	stealth           bool
	blockAds          bool
	markdown          bool
	markdownSelector  string
	markdownExclude   []string
	noSandbox         bool
	browserBin        string
	proxy             string
}

func newRootCmd() *cobra.Command {
	flags := &fetchFlags{}

	root := &cobra.Command{
		Use:     "pagegrab <url>",
		Short:   "Fetch a rendered web page and print its contents as JSON",
		Args:    cobra.ExactArgs(1),
		Version: version,
		// Errors are logged where they occur with full context.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], flags)
		},
	}

	f := root.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "write the JSON result to a file instead of stdout")
	f.StringVar(&flags.waitSelector, "wait-selector", "", "CSS selector to wait for after the page settles")
	f.IntVar(&flags.timeout, "timeout", 60, "per-step timeout in seconds")
	f.BoolVar(&flags.visible, "visible", false, "run the browser with a visible window")
	f.BoolVar(&flags.ignoreHTTPSErrors, "ignore-https-errors", false, "tolerate invalid TLS certificates")
	f.IntVar(&flags.waitTime, "wait-time", 2, "grace period in seconds after network idle")
	f.StringVar(&flags.logLevel, "log-level", "INFO", "log level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	f.StringVar(&flags.logFile, "log-file", "", "also write logs to this rotating file")
	f.BoolVar(&flags.stealth, "stealth", false, "enable anti-bot-detection evasions")
	f.BoolVar(&flags.blockAds, "block-ads", false, "block requests to known ad and tracking domains")
	f.BoolVar(&flags.markdown, "markdown", false, "add a cleaned markdown rendition to the result")
	f.StringVar(&flags.markdownSelector, "markdown-selector", "", "CSS selector narrowing the markdown input")
	f.StringSliceVar(&flags.markdownExclude, "markdown-exclude", nil, "CSS selectors removed before markdown conversion")
	f.BoolVar(&flags.noSandbox, "no-sandbox", false, "disable the Chromium sandbox (containers)")
	f.StringVar(&flags.browserBin, "browser-bin", "", "path to the Chromium binary")
	f.StringVar(&flags.proxy, "proxy", "", "proxy URL for all browser traffic")

	root.AddCommand(newServeCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the pagegrab version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pagegrab "+version)
		},
	})

	return root
}

func runFetch(cmd *cobra.Command, url string, flags *fetchFlags) error {
	initLogger(flags.logLevel, flags.logFile)

	cfg := config.Load()
	applyBrowserFlags(cfg, flags)

	ctx := cmd.Context()

	// ── 1. Launch the browser session ───────────────────────────────
	session, err := fetcher.NewSession(ctx, cfg)
	if err != nil {
		slog.Error("browser session failed to start", "error", err)
		return err
	}
	defer session.Close()

	// ── 2. Fetch the page ───────────────────────────────────────────
	req := &models.FetchRequest{
		URL:              url,
		WaitSelector:     flags.waitSelector,
		Stealth:          flags.stealth,
		BlockAds:         flags.blockAds,
		Markdown:         flags.markdown,
		MarkdownSelector: flags.markdownSelector,
		MarkdownExclude:  flags.markdownExclude,
	}
	// Flags the user left untouched stay unset so the env-derived session
	// defaults (PAGEGRAB_TIMEOUT, PAGEGRAB_WAIT_TIME) apply.
	if cmd.Flags().Changed("timeout") {
		req.Timeout = flags.timeout
	}
	if cmd.Flags().Changed("wait-time") {
		req.WaitTime = &flags.waitTime
	}

	result, err := session.Fetch(ctx, req)
	if err != nil {
		slog.Error("fetch failed", "url", url, "error", err)
		return err
	}

	// ── 3. Optional markdown rendition ──────────────────────────────
	if flags.markdown {
		md, mdErr := cleaner.NewCleaner().Markdown(result.HTML, result.URL, cleaner.Options{
			Selector: flags.markdownSelector,
			Exclude:  flags.markdownExclude,
		})
		if mdErr != nil {
			slog.Warn("markdown rendition failed", "error", mdErr)
		} else {
			result.Markdown = md
		}
	}

	// ── 4. Emit the result ──────────────────────────────────────────
	if err := writeResult(result, flags.output); err != nil {
		slog.Error("writing result failed", "error", err)
		return err
	}
	if flags.output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Result written to %s\n", flags.output)
	}

	return nil
}

// applyBrowserFlags overlays CLI flags onto the env-derived config.
func applyBrowserFlags(cfg *config.Config, flags *fetchFlags) {
	if flags.visible {
		cfg.Browser.Headless = false
	}
	if flags.ignoreHTTPSErrors {
		cfg.Browser.IgnoreHTTPSErrors = true
	}
	if flags.noSandbox {
		cfg.Browser.NoSandbox = true
	}
	if flags.browserBin != "" {
		cfg.Browser.BrowserBin = flags.browserBin
	}
	if flags.proxy != "" {
		cfg.Browser.Proxy = flags.proxy
	}
}
