package middleware

import (
	"crypto/subtle"
	"strings"

	"campusreq_backend/internal/auth"
	"campusreq_backend/internal/logger"
	"campusreq_backend/internal/models"
	"campusreq_backend/pkg/apperrors"
	"campusreq_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID       = "userID"
	KeyRole         = "role"
	KeyDepartmentID = "departmentID"
)

// TokenParser is satisfied by *auth.Manager.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware verifies the bearer token. Browsers cannot set headers on
// EventSource or WebSocket, so the access_token query parameter is accepted too.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("access_token")
		}
		if token == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "token rejected", "error", err.Error())
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid token"))
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyDepartmentID, claims.DepartmentID)
		c.Set(string(contextkeys.ClaimsContextKey), claims)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireRoles lets through only callers holding one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if !roleSet[GetRole(c)] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions())
			return
		}
		c.Next()
	}
}

// CronSecretMiddleware guards the external scheduler hook. An empty secret
// disables the endpoint.
func CronSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			apperrors.HandleError(c, apperrors.ServiceUnavailableError("cron endpoint is disabled"))
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid cron secret"))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func GetUserID(c *gin.Context) string {
	return c.GetString(KeyUserID)
}

func GetRole(c *gin.Context) models.UserRole {
	v, ok := c.Get(KeyRole)
	if !ok {
		return ""
	}
	switch role := v.(type) {
	case models.UserRole:
		return role
	case string:
		return models.UserRole(role)
	}
	return ""
}

func GetDepartmentID(c *gin.Context) string {
	return c.GetString(KeyDepartmentID)
}
