package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextSessionID is the key used to store the token's session ID in the Gin context.
	ContextSessionID = "sessionID"

	// sessionParam is the route parameter naming the session a request targets.
	sessionParam = "ID"

	// tokenQuery carries the token for clients that cannot set headers, such as browser WebSockets.
	tokenQuery = "token"
)

// Authoriz admits requests carrying a valid game token. When the route names a session,
// the token must have been issued for that session.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		sessionID, err := ts.SessionID(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if raw := c.Param(sessionParam); raw != "" {
			target, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
				return
			}
			if target != sessionID {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not grant this game"})
				return
			}
		}

		// Attach the session ID to the request context for further use.
		c.Set(ContextSessionID, sessionID)
		c.Next()
	}
}

// extractToken reads a bearer token from the Authorization header, falling back to the
// token query parameter.
func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	token := c.Query(tokenQuery)
	return token, token != ""
}

// SessionID returns the session ID stored by Authoriz.
func SessionID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
