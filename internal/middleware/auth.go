package middleware

import (
	"convenios-dashboard/internal/auth"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	KeySessionID = "session_id"
	KeyUserName  = "user_name"
	KeyUserRole  = "user_role"
)

// Identity is the acting user of a request.
type Identity struct {
	SessionID string
	Name      string
	Role      convenio.Role
}

// IdentityFrom reads the identity stored by AuthMiddleWare.
func IdentityFrom(c *gin.Context) Identity {
	role, _ := c.Get(KeyUserRole)
	r, _ := role.(convenio.Role)
	return Identity{
		SessionID: c.GetString(KeySessionID),
		Name:      c.GetString(KeyUserName),
		Role:      r,
	}
}

type Auth struct {
	Signer *auth.Signer
}

func (m *Auth) AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		var token string
		tokenQuery := ctx.Query("token")

		if authHeader != "" {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if tokenQuery != "" {
			token = tokenQuery
		} else {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		claims, err := m.Signer.Verify(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		ctx.Set(KeySessionID, claims.SessionID)
		ctx.Set(KeyUserName, claims.Name)
		ctx.Set(KeyUserRole, claims.Role)
		ctx.Next()
	}
}

// RequireRole rejects requests whose acting user lacks the role.
func RequireRole(role convenio.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if IdentityFrom(ctx).Role != role {
			ctx.Error(errors.Forbidden("Not allowed for your role", nil))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
