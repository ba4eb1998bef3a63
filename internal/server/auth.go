package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyRequired authenticates requests against the configured API key.
// An empty configured key disables auth (dev mode).
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	expected := sha256.Sum256([]byte(s.cfg.APIKey))

	return func(c *gin.Context) {
		if s.cfg.APIKey == "" {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		presented := sha256.Sum256([]byte(parts[1]))
		if subtle.ConstantTimeCompare(presented[:], expected[:]) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Next()
	}
}
