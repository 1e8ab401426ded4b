// Command pagegrab-mcp exposes the page fetcher as an MCP tool over stdio.
// Each tool call launches its own browser session, so the server carries no
// state between calls.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/fetcher"
	"github.com/use-agent/pagegrab/models"
)

func main() {
	// Stdout carries the MCP protocol; logs must stay off it entirely.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	s := server.NewMCPServer(
		"pagegrab",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	fetchPageTool := mcp.NewTool("fetch_page",
		mcp.WithDescription("Fetch a fully rendered web page with a headless browser and return its contents (URL, title, HTML, text, links, forms, images, cookies) as JSON. Waits for the page to finish loading, including JavaScript-driven content."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to fetch"),
		),
		mcp.WithString("wait_selector",
			mcp.Description("CSS selector to wait for after the page settles"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Per-step timeout in seconds (default: 60)"),
		),
		mcp.WithBoolean("markdown",
			mcp.Description("Include a cleaned markdown rendition of the main content"),
		),
	)

	s.AddTool(fetchPageTool, handleFetchPage)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleFetchPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	req := &models.FetchRequest{
		URL:          url,
		WaitSelector: request.GetString("wait_selector", ""),
		// Zero defers to the session default (PAGEGRAB_TIMEOUT).
		Timeout:  request.GetInt("timeout", 0),
		Markdown: request.GetBool("markdown", false),
	}

	cfg := config.Load()

	session, err := fetcher.NewSession(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("browser session failed to start: %v", err)), nil
	}
	defer session.Close()

	result, err := session.Fetch(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}

	if req.Markdown {
		md, mdErr := cleaner.NewCleaner().Markdown(result.HTML, result.URL, cleaner.Options{})
		if mdErr == nil {
			result.Markdown = md
		}
	}

	payload, err := encodeResult(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}

	return mcp.NewToolResultText(payload), nil
}

// encodeResult renders the result without escaping HTML characters, the
// same form the CLI prints.
func encodeResult(result *models.PageResult) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return "", err
	}
	return buf.String(), nil
}
