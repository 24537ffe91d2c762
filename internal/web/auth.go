package web

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradehand/tradehand/internal/db"
	"github.com/tradehand/tradehand/internal/errors"
)

// userIDKey is the gin context key holding the authenticated owner id.
const userIDKey = "user_id"

// requireAuth resolves the bearer token to an owner id or aborts with 401.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortWithError(c, errors.NewUnauthorized())
			return
		}

		userID, err := db.ResolveToken(c.Request.Context(), s.db, strings.TrimSpace(token))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUser returns the owner id set by requireAuth.
func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
