package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/auth"
	"github.com/junaidrashid-git/restaurant-api/models"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxEmail  = "email"
)

// ValidateToken requires a valid JWT in the Authorization header, either as
// "Bearer <token>" or bare, and stores user_id and role on the context.
func ValidateToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			apperr.Respond(c, apperr.Unauthorized("Authorization header is missing"))
			return
		}
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}

		claims, err := auth.ParseToken(secret, raw)
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

// OptionalToken sets user_id and role when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		if raw != "" {
			if claims, err := auth.ParseToken(secret, raw); err == nil {
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxRole, claims.Role)
				c.Set(ctxEmail, claims.Email)
			}
		}
		c.Next()
	}
}

// QueryToken lets browsers that cannot set headers on a websocket handshake
// pass the token as ?token=.
func QueryToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if t := c.Query("token"); t != "" {
				c.Request.Header.Set("Authorization", "Bearer "+t)
			}
		}
		c.Next()
	}
}

// RequireRoles must run after ValidateToken.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, Role(c)) {
			apperr.Respond(c, apperr.Forbidden("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// RequireRegistered rejects guest tokens.
func RequireRegistered() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) == models.RoleGuest {
			apperr.Respond(c, apperr.Forbidden("please sign in to continue"))
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string { return c.GetString(ctxUserID) }

func Role(c *gin.Context) models.Role {
	r, _ := c.Get(ctxRole)
	role, _ := r.(models.Role)
	return role
}

// IsStaff reports whether the caller has any non-customer role.
func IsStaff(c *gin.Context) bool {
	return slices.Contains(models.StaffRoles, Role(c))
}
