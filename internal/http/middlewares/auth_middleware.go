package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cartelera/billboard/internal/auth"
	"github.com/cartelera/billboard/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type IdentityResolver interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users IdentityResolver
}

func NewAuthMiddleware(jwt TokenVerifier, users IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireAuth extracts the bearer token, verifies it and re-resolves the
// identity from the store. The token's embedded role is only a snapshot
// from issuance time; the store's current role is what downstream checks
// see, so a role change applies immediately to live tokens. A subject that
// no longer exists is unauthorized, not a server error.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid access token",
				},
			})
			return
		}

		claims, err := m.jwt.Verify(raw)
		if err != nil {
			code := "invalid_token"
			message := "Invalid access token"

			if errors.Is(err, auth.ErrTokenExpired) {
				code = "token_expired"
				message = "Access token has expired"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    code,
					"message": message,
				},
			})
			return
		}

		cctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		u, err := m.users.GetByID(cctx, claims.UserID)
		cancel()

		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{
						"code":    "unauthorized",
						"message": "Account no longer exists",
					},
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not resolve identity",
				},
			})
			return
		}

		SetIdentity(c, u.ID, u.Email, u.Role, u.Name)

		c.Next()
	}
}
