// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/apperror"

	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key holding the authenticated access.Actor.
const ActorKey = "actor"

// Authenticator turns a bearer token into the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Actor, error)
}

// Authenticate validates the JWT from the Authorization header and stores the
// caller in the context. The user is reloaded so role and facility changes apply
// to tokens issued before them.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperror.Unauthorized("Authorization header is required"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.Error(c, apperror.Unauthorized("Invalid token format"))
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// CurrentActor returns the caller stored by Authenticate.
func CurrentActor(c *gin.Context) (access.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return access.Actor{}, false
	}
	actor, ok := value.(access.Actor)
	return actor, ok
}

// Authorize only lets the listed roles through.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			response.Error(c, apperror.Unauthorized("Authentication required"))
			return
		}

		for _, role := range allowedRoles {
			if role == actor.Role {
				c.Next()
				return
			}
		}

		response.Error(c, apperror.Forbidden("You do not have permission to access this resource"))
	}
}
