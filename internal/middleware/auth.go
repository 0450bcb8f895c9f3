package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-dashboard/internal/backend"
	"github.com/jwalitptl/clinic-dashboard/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

const (
	ContextClaims = "claims"
	ContextUserID = "user_id"
)

type AuthMiddleware struct {
	jwt    auth.JWTService
	cookie string
}

func NewAuthMiddleware(jwt auth.JWTService, cookie string) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, cookie: cookie}
}

// Authenticate verifies the staff token from the Authorization header or
// the token cookie. The token is forwarded to the appointment API.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extract(c)
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if httputil.WantsHTML(c) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Abort()
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.Subject)
		c.Request = c.Request.WithContext(backend.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

func (m *AuthMiddleware) extract(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if m.cookie != "" {
		if v, err := c.Cookie(m.cookie); err == nil {
			return v
		}
	}
	return ""
}
