package models

// PageResult is the output record of one fetch: every DOM fact extracted
// from the rendered page. This is the exact document emitted as JSON by
// the CLI and returned by the HTTP API.
type PageResult struct {
	// URL is the final URL after all redirects.
	URL string `json:"url"`

	// Title is the rendered document title.
	Title string `json:"title"`

	// StatusCode is the HTTP status of the navigation response.
	// Nil when no response object was produced (e.g. about: pages).
	StatusCode *int `json:"status_code"`

	// HTML is the full serialized document after rendering.
	HTML string `json:"html"`

	// Text is the visible text of the document body.
	Text string `json:"text"`

	// Metadata carries viewport dimensions and the cookies of the context.
	Metadata Metadata `json:"metadata"`

	// Links, Forms and Images are extracted independently; each defaults
	// to an empty slice when its DOM evaluation fails. They are never nil.
	Links  []Link  `json:"links"`
	Forms  []Form  `json:"forms"`
	Images []Image `json:"images"`

	// Markdown is the optional cleaned-markdown rendition of the page.
	// Present only when markdown output was requested.
	Markdown string `json:"markdown,omitempty"`
}

// NewPageResult returns a PageResult with the collection fields initialised,
// so a partially-extracted result still serializes them as [] and never null.
func NewPageResult() *PageResult {
	return &PageResult{
		Links:  []Link{},
		Forms:  []Form{},
		Images: []Image{},
		Metadata: Metadata{
			Cookies: []Cookie{},
		},
	}
}

// Metadata holds page-level facts that are not part of the document itself.
type Metadata struct {
	// Viewport is the configured viewport, nil when unknown.
	Viewport *Viewport `json:"viewport"`

	// Cookies lists all cookies of the browsing context, in browser order.
	Cookies []Cookie `json:"cookies"`
}

// Viewport is the page viewport in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Cookie is one cookie record of the browsing context.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Link is an anchor with a non-empty href.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Form describes a form element and its associated controls.
type Form struct {
	Action string      `json:"action"`
	Method string      `json:"method"`
	Fields []FormField `json:"fields"`
}

// FormField is one form-associated element.
type FormField struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Tag  string `json:"tag"`
}

// Image is an img element with a non-empty src.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}
