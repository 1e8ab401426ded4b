package fetcher

import (
	"encoding/json"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"github.com/use-agent/pagegrab/models"
)

// DOM queries for the three independent extraction categories. Each runs
// as one in-page evaluation returning plain JSON.
const (
	linksJS = `() => Array.from(document.querySelectorAll('a[href]'))
		.map(e => ({href: e.href, text: (e.textContent || '').trim()}))`

	formsJS = `() => Array.from(document.querySelectorAll('form'))
		.map(form => ({
			action: form.action,
			method: form.method,
			fields: Array.from(form.elements).map(el => ({
				name: el.name,
				type: el.type,
				tag: el.tagName
			}))
		}))`

	imagesJS = `() => Array.from(document.querySelectorAll('img[src]'))
		.map(img => ({src: img.src, alt: img.alt}))`

	// statusJS reads the navigation response status from the Performance
	// API. Needs no CDP event listeners, so it cannot conflict with
	// request hijacking. Returns 0 when no navigation entry exists.
	statusJS = `() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`
)

// extract reads every page fact into a PageResult. The document-level
// facts (URL, title, HTML, body text, cookies) are required; the three
// collection categories are each best-effort and independently recovered.
func (s *Session) extract(page *rod.Page, requestURL string) (*models.PageResult, error) {
	result := models.NewPageResult()

	html, err := page.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}
	result.HTML = html

	result.URL = evalStringOrEmpty(page, `() => window.location.href`)
	if result.URL == "" {
		result.URL = requestURL
	}
	result.Title = evalStringOrEmpty(page, `() => document.title`)

	body, err := page.Element("body")
	if err != nil {
		return nil, categorizeError(err, "failed to locate document body")
	}
	text, err := body.Text()
	if err != nil {
		return nil, categorizeError(err, "failed to extract body text")
	}
	result.Text = text

	if res, err := page.Eval(statusJS); err == nil {
		if code := res.Value.Int(); code > 0 {
			result.StatusCode = &code
		}
	}

	result.Metadata.Viewport = s.viewport

	cookies, err := page.Cookies(nil)
	if err != nil {
		return nil, categorizeError(err, "failed to read cookies")
	}
	for _, c := range cookies {
		result.Metadata.Cookies = append(result.Metadata.Cookies, models.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	collectCategories(result, func(js string, out any) error {
		return evalInto(page, js, out)
	})

	slog.Info("extraction complete",
		"title", result.Title,
		"links", len(result.Links),
		"forms", len(result.Forms),
		"images", len(result.Images),
	)
	return result, nil
}

// collectCategories fills the three independent collections. Each never
// fails the overall result: a broken evaluation leaves its own category
// empty and the others untouched.
func collectCategories(result *models.PageResult, eval func(js string, out any) error) {
	if err := eval(linksJS, &result.Links); err != nil {
		slog.Warn("failed to extract links", "error", err)
		result.Links = []models.Link{}
	}
	if err := eval(formsJS, &result.Forms); err != nil {
		slog.Warn("failed to extract forms", "error", err)
		result.Forms = []models.Form{}
	}
	if err := eval(imagesJS, &result.Images); err != nil {
		slog.Warn("failed to extract images", "error", err)
		result.Images = []models.Image{}
	}
}

// evalInto runs a page evaluation and decodes its JSON value into out.
func evalInto(page *rod.Page, js string, out any) error {
	res, err := page.Eval(js)
	if err != nil {
		return err
	}
	return decodeEval(res.Value, out)
}

// decodeEval round-trips a gson value through encoding/json into a typed
// destination.
func decodeEval(v gson.JSON, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
