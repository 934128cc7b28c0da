package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const (
	// ContextKeyActor is the gin context key for the authenticated actor.
	ContextKeyActor = "actor"

	// HeaderAuthorization carries the bearer session token.
	HeaderAuthorization = "Authorization"

	bearerPrefix = "bearer "
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively. Returns "" when absent or malformed.
func BearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader(HeaderAuthorization))
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(header[len(bearerPrefix):])
}

// RequireAuth returns middleware that verifies the bearer token and stores
// the resolved actor on the context. Missing or invalid tokens abort with 401.
func RequireAuth(tokens ports.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			dto.AbortWithError(c, domain.NewUnauthorizedError("authentication required"))
			return
		}

		actor, err := tokens.Verify(token)
		if err != nil {
			dto.AbortWithError(c, err)
			return
		}

		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// CurrentActor returns the actor stored by RequireAuth.
// Returns the zero actor if the route is not authenticated, which services
// reject as unauthorized.
func CurrentActor(c *gin.Context) domain.Actor {
	if v, exists := c.Get(ContextKeyActor); exists {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}

	return domain.Actor{}
}
