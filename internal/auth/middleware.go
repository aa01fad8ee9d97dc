package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var middlewareTracer = otel.Tracer("auth-middleware")

const (
	// SessionIDKey is the gin context key holding the authenticated session id
	SessionIDKey = "session_id"
	// ClaimsKey is the gin context key holding the full claims
	ClaimsKey = "claims"
)

// RequireSession is a Gin middleware that validates the session token.
// Browsers cannot set headers on WebSocket upgrades, so the token query
// parameter is accepted as well.
func RequireSession(jwtManager *JWTManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := middlewareTracer.Start(c.Request.Context(), "auth.require_session")
		defer span.End()

		token := ExtractToken(c)
		if token == "" {
			span.SetAttributes(attribute.Bool("auth.token_present", false))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			return
		}
		span.SetAttributes(attribute.Bool("auth.token_present", true))

		claims, err := jwtManager.ValidateToken(ctx, token)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("auth.token_valid", false))
			logger.Warn("Invalid token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		span.SetAttributes(
			attribute.Bool("auth.token_valid", true),
			attribute.String("session.id", claims.SessionID),
		)

		c.Set(SessionIDKey, claims.SessionID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// SessionID returns the session id set by RequireSession.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// ExtractToken reads the bearer token, falling back to the token query parameter.
func ExtractToken(c *gin.Context) string {
	const prefix = "Bearer "
	if h := c.GetHeader("Authorization"); h != "" {
		if len(h) < len(prefix) || !strings.HasPrefix(h, prefix) {
			return ""
		}
		return strings.TrimSpace(h[len(prefix):])
	}
	return strings.TrimSpace(c.Query("token"))
}
