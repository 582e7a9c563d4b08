package api

import (
	"strings"

	"github.com/Domenick1991/autorental/internal/auth"
	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthRequired resolves the bearer token into an actor and aborts with 401
// when it cannot.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeErrorCode(c, domain.CodeUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		actor, err := auth.Parse(strings.TrimPrefix(header, "Bearer "), jwtSecret)
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		c.Set(actorKey, *actor)
		c.Next()
	}
}

// ElevatedOnly gates manager and admin endpoints. It must run after
// AuthRequired.
func ElevatedOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok || !actor.Elevated() {
			writeErrorCode(c, domain.CodeForbidden, "manager or admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
