package middlewares

import (
	"net/http"

	"accounthub/internal/auth"
	"accounthub/internal/http/session"

	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Actor is the authenticated principal derived from the session cookie.
type Actor struct {
	ID    int64
	Email string
	Role  string
}

func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := session.ReadCookie(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthenticated",
					"message": "Missing session cookie",
				},
			})
			return
		}

		claims, err := m.jwt.VerifyToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthenticated",
					"message": "Invalid or expired session",
				},
			})
			return
		}

		SetActor(c, Actor{ID: claims.UserID, Email: claims.Email, Role: claims.Role})

		c.Next()
	}
}

// SetActor stashes the identity on the context; exported so handler tests
// can stage an authenticated request without a real token.
func SetActor(c *gin.Context, a Actor) {
	c.Set(ctxUserIDKey, a.ID)
	c.Set(ctxEmailKey, a.Email)
	c.Set(ctxRoleKey, a.Role)
}

// ActorFromContext lets handlers read the identity without knowing the
// magic keys.
func ActorFromContext(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return Actor{}, false
	}

	id, ok := v.(int64)
	if !ok {
		return Actor{}, false
	}

	email, _ := c.Get(ctxEmailKey)
	role, _ := c.Get(ctxRoleKey)

	actor := Actor{ID: id}

	if s, ok := email.(string); ok {
		actor.Email = s
	}

	if s, ok := role.(string); ok {
		actor.Role = s
	}

	return actor, true
}
