package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/pkg/auth"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
	"github.com/carebook/clinic-api/pkg/httputil"
)

const contextActorKey = "actor"

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate validates the bearer token and stores the resulting Actor in
// the request context. Everything behind it trusts that Actor completely.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthorized("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized("invalid token"))
			c.Abort()
			return
		}

		c.Set(contextActorKey, model.Actor{
			UserID: claims.UserID,
			Role:   claims.Role,
			Name:   claims.Name,
		})
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized("authentication required"))
			c.Abort()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden("insufficient role"))
		c.Abort()
	}
}

// ActorFromContext returns the authenticated Actor set by Authenticate.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	v, exists := c.Get(contextActorKey)
	if !exists {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
