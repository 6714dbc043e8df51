package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"chip-quotation-backend/models"
	"chip-quotation-backend/storage"
	"chip-quotation-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// currentUser returns the authenticated user set by AuthRequired.
func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// Permissions gating the API surface. Roles are static: the role_name
// column on users maps straight into this table.
const (
	PermQuoteCreate   = "quote:create"
	PermQuoteApprove  = "quote:approve"
	PermCatalogManage = "catalog:manage"
	PermExport        = "export"
)

var rolePermissions = map[string][]string{
	"sales":    {PermQuoteCreate, PermExport},
	"reviewer": {PermQuoteCreate, PermQuoteApprove, PermExport},
	"admin":    {PermQuoteCreate, PermQuoteApprove, PermCatalogManage, PermExport},
}

func roleHasPermission(role, permission string) bool {
	for _, p := range rolePermissions[strings.ToLower(role)] {
		if p == permission {
			return true
		}
	}
	return false
}

func bearerToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	token = strings.TrimPrefix(token, "Bearer ")
	return strings.TrimSpace(token)
}

// AuthRequired validates the bearer token and its backing session row,
// then stores the authenticated user in the context.
func AuthRequired(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := bearerToken(c)
		if sessionToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			return
		}

		parsedToken, err := utils.ValidateJWT(sessionToken)
		if err != nil || !parsedToken.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		exp, ok := claims["exp"].(float64)
		if !ok || time.Now().Unix() > int64(exp) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			return
		}

		// The session row is the revocation authority: a deleted or
		// expired session invalidates an otherwise valid token.
		user, err := storage.GetUserBySessionID(db, sessionToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// RequirePermission gates a route group on one permission. Must run
// after AuthRequired.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if !roleHasPermission(user.RoleName, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
