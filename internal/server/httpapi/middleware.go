package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/server/auth"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = common.RequestIDHeaderName

	ctxRequestID = "request_id"
	ctxUserID    = "user_id"
	ctxUserRole  = "user_role"
	ctxClaims    = "token_claims"
)

// requestID reuses the caller's X-Request-ID or mints one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs method, path, final status, response size and duration.
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"request_id", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.RequestURI(),
			"status", c.Writer.Status(),
			"bytes", max(c.Writer.Size(), 0),
			"dur_ms", time.Since(start).Milliseconds(),
		)
	}
}

// requireAuth validates the Bearer access token and stores the caller in
// the gin context.
func (s *HTTPServer) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			fail(c, http.StatusUnauthorized, "authorization token required")
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			s.logger.Debug(c.Request.Context(), "token rejected", "error", err)
			fail(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// requireRole lets through callers holding one of roles.
func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString(ctxUserRole))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		fail(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

func extractToken(c *gin.Context) string {
	h := c.GetHeader(common.AuthorizationHeaderName)
	if len(h) < len(common.BearerPrefix) || !strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(common.BearerPrefix):])
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	cl, _ := v.(*auth.Claims)
	return cl
}
