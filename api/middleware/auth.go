package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pagegrab/models"
)

// keyring is the set of accepted API keys.
type keyring map[string]struct{}

func newKeyring(keys []string) keyring {
	kr := make(keyring, len(keys))
	for _, k := range keys {
		if k != "" {
			kr[k] = struct{}{}
		}
	}
	return kr
}

func (kr keyring) accepts(key string) bool {
	_, ok := kr[key]
	return ok
}

// Auth returns API-key authentication middleware. The key arrives either
// as `X-API-Key: <key>` or `Authorization: Bearer <key>`. With no keys
// configured the middleware is a no-op (open access).
//
// Accepted keys are stored on the context as "api_key" so the rate
// limiter can bucket by key instead of by IP.
func Auth(apiKeys []string) gin.HandlerFunc {
	kr := newKeyring(apiKeys)
	if len(kr) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestAPIKey(c)

		switch {
		case key == "":
			abortUnauthorized(c, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
		case !kr.accepts(key):
			abortUnauthorized(c, "invalid API key")
		default:
			c.Set("api_key", key)
			c.Next()
		}
	}
}

// requestAPIKey tries X-API-Key first, then Authorization: Bearer.
func requestAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
