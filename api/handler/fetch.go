package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/cache"
	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/models"
)

// Fetcher is the page-fetching dependency of the fetch handler. In
// production it is backed by a browser session; tests substitute a fake.
type Fetcher interface {
	Fetch(ctx context.Context, req *models.FetchRequest) (*models.PageResult, error)
}

// Fetch returns a handler for POST /api/v1/fetch.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup when the request opts in via max_age.
//  3. Fetcher.Fetch → full PageResult.
//  4. Optional markdown rendition via the cleaner.
//  5. Cache store, return 200 with the result document.
func Fetch(f Fetcher, cl *cleaner.Cleaner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Parse request ────────────────────────────────────────
		var req models.FetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		// ── 2. Cache lookup ─────────────────────────────────────────
		var cacheKey string
		if cc != nil && req.MaxAge > 0 {
			cacheKey = cache.Key(&req)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		// ── 3. Fetch ────────────────────────────────────────────────
		result, err := f.Fetch(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}

		// ── 4. Markdown rendition ───────────────────────────────────
		if req.Markdown && cl != nil {
			md, mdErr := cl.Markdown(result.HTML, result.URL, cleaner.Options{
				Selector: req.MarkdownSelector,
				Exclude:  req.MarkdownExclude,
			})
			if mdErr == nil {
				result.Markdown = md
			}
		}

		// ── 5. Cache store ──────────────────────────────────────────
		if cacheKey != "" {
			cc.Set(cacheKey, result)
		}

		c.JSON(http.StatusOK, result)
	}
}

// respondError maps a FetchError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	fetchErr, ok := err.(*models.FetchError)
	if !ok {
		fetchErr = models.NewFetchError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(fetchErr), models.ErrorResponse{
		Success: false,
		Error:   fetchErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.FetchError) int {
	switch e.Code {
	case models.ErrCodeTimeout, models.ErrCodeSelector:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeCanceled:
		// Client closed request (nginx convention); the fetch did not
		// time out, the caller walked away.
		return 499
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
