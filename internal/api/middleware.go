package api

import (
	"net/http"
	"strings"

	"github.com/bizsuite/bizsuite/internal/logging"
	"github.com/bizsuite/bizsuite/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID         = "user_id"
	ContextOrganizationID = logging.ContextOrganizationID
	ContextRole           = "role"
	ContextPermissions    = "permissions"
	ContextAccessToken    = "access_token"
)

// RoleAdmin bypasses permission checks
const RoleAdmin = "Admin"

// Contact permissions
const (
	PermContactsRead   = "crm:contacts:read"
	PermContactsCreate = "crm:contacts:create"
	PermContactsUpdate = "crm:contacts:update"
	PermContactsDelete = "crm:contacts:delete"
)

// AuthMiddleware enforces a valid HMAC-signed JWT carrying user_id and a
// UUID organization_id claim
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization format")
			return
		}
		if secret == "" {
			logging.LogKV("error", "JWT_SECRET not set", nil)
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.Fail(models.ErrorCodeInternal, "Server not configured"))
			return
		}

		token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logging.LogKV("warn", "token invalid", map[string]interface{}{"error": err})
			abortUnauthorized(c, "Invalid token")
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid token")
			return
		}

		userID := claimString(claims, "user_id")
		orgID := claimString(claims, "organization_id")
		if userID == "" || orgID == "" {
			abortUnauthorized(c, "Token is missing user or organization")
			return
		}
		if uuid.Validate(orgID) != nil {
			abortUnauthorized(c, "Invalid organization")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextOrganizationID, orgID)
		c.Set(ContextRole, claimString(claims, "role"))
		c.Set(ContextPermissions, claimStrings(claims, "permissions"))
		c.Set(ContextAccessToken, tokenParts[1])
		c.Next()
	}
}

// RequirePermission rejects callers whose token lacks perm. Admins pass.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAdmin(c) || HasPermission(c, perm) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.Fail(models.ErrorCodeForbidden, "Missing permission "+perm))
	}
}

// IsAdmin returns true if current context has Admin role
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextRole) == RoleAdmin
}

// HasPermission reports whether the caller's token grants perm
func HasPermission(c *gin.Context, perm string) bool {
	for _, p := range c.GetStringSlice(ContextPermissions) {
		if p == perm {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.Fail(models.ErrorCodeUnauthorized, msg))
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func claimStrings(claims jwt.MapClaims, key string) []string {
	raw, ok := claims[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
