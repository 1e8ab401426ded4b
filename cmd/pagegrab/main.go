// Command pagegrab fetches a fully rendered web page with headless
// Chromium and prints the extracted facts as a JSON document.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Exit codes. Interrupt mirrors the conventional 128+SIGINT.
const (
	exitOK        = 0
	exitFailure   = 1
	exitInterrupt = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx)

	// A signal during the fetch cancels the context; report a failed run
	// as an interrupt regardless of which step the cancellation surfaced
	// in. A clean shutdown (serve mode) keeps exit 0.
	if code != exitOK && ctx.Err() != nil {
		code = exitInterrupt
	}
	os.Exit(code)
}

func run(ctx context.Context) int {
	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return exitInterrupt
		}
		return exitFailure
	}
	return exitOK
}

// initLogger configures slog. Logs always go to stderr so stdout stays
// reserved for the JSON result; with logFile set they additionally go to
// a rotating file.
func initLogger(levelName, logFile string) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(levelName)}

	var w io.Writer = os.Stderr
	if logFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
		})
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
}

// parseLogLevel accepts the conventional level names case-insensitively.
// WARNING maps to warn and CRITICAL to error; unknown names mean info.
func parseLogLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
