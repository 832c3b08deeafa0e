package middleware

import (
	"context"
	"strings"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/logger"
	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Auth requires a valid bearer token and stores the acting user.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("Authorization header with a Bearer token is required"))
			c.Abort()
			return
		}

		user, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		setActor(c, models.Actor{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through otherwise.
func OptionalAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := authn.Authenticate(c.Request.Context(), token); err == nil {
				setActor(c, models.Actor{ID: user.ID, Role: user.Role})
			}
		}
		c.Next()
	}
}

func setActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
	c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), actor.ID))
}

// RequireRole admits only the listed roles. Admin is always admitted.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			_ = c.Error(apperrors.Unauthorized("Authentication required"))
			c.Abort()
			return
		}
		if actor.Role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		_ = c.Error(apperrors.Forbidden("You do not have permission to perform this action"))
		c.Abort()
	}
}

// RequireStaff admits staff and admins.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(models.RoleStaff)
}

func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
