package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/handler"
	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/pkg/auth"
)

const (
	ContextPrincipalID   = "principal_id"
	ContextPrincipalKind = "principal_kind"
)

type AuthMiddleware struct {
	tokens *auth.TokenService
}

func NewAuthMiddleware(tokens *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and stores the principal in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextPrincipalID, claims.PrincipalID)
		c.Set(ContextPrincipalKind, claims.Kind)
		c.Next()
	}
}

// RequireKind rejects principals of the wrong kind after Authenticate ran.
func (m *AuthMiddleware) RequireKind(kind model.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := c.Get(ContextPrincipalKind)
		if !ok || got.(model.PrincipalKind) != kind {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("operation not permitted for this account type"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalID extracts the authenticated principal's id from context.
func PrincipalID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextPrincipalID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
