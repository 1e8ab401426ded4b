package models

// FetchRequest describes one page fetch. It is the payload for
// POST /api/v1/fetch and the parameter record the CLI builds from its flags.
type FetchRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// WaitSelector is an optional CSS selector to wait for after the
	// readiness sequence completes. A timeout waiting for it is fatal.
	WaitSelector string `json:"wait_selector,omitempty"`

	// Timeout is the navigation/operation timeout in seconds, applied
	// uniformly to every wait step. Zero means the session default
	// (PAGEGRAB_TIMEOUT, 60s out of the box).
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=600"`

	// WaitTime is the extra grace period in seconds slept after the
	// network goes idle, for deferred script-driven DOM mutation.
	// Nil means the session default (PAGEGRAB_WAIT_TIME, 2s out of the
	// box); negative values mean no grace wait.
	WaitTime *int `json:"wait_time,omitempty"`

	// Stealth enables anti-bot-detection evasions before navigation.
	Stealth bool `json:"stealth,omitempty"`

	// BlockAds blocks requests to known ad/tracking domains.
	BlockAds bool `json:"block_ads,omitempty"`

	// Markdown adds a cleaned-markdown rendition to the result.
	Markdown bool `json:"markdown,omitempty"`

	// MarkdownSelector optionally narrows the markdown pipeline input to
	// the outer HTML of the elements matching this CSS selector.
	MarkdownSelector string `json:"markdown_selector,omitempty"`

	// MarkdownExclude removes elements matching these CSS selectors
	// before the markdown conversion (navigation, footers, banners).
	MarkdownExclude []string `json:"markdown_exclude,omitempty"`

	// MaxAge enables cache lookups in serve mode: a cached result younger
	// than MaxAge milliseconds is returned without touching the browser.
	MaxAge int `json:"max_age,omitempty"`
}

