package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"chip-quotation-backend/models"
	"chip-quotation-backend/services"
	"chip-quotation-backend/storage"
	"chip-quotation-backend/utils"

	"github.com/gin-gonic/gin"
)

// LoginHandler handles user authentication
// @Summary Login user
// @Description Authenticate user and return session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginData models.LoginRequest
		if err := c.ShouldBindJSON(&loginData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		user, err := storage.GetUserByEmail(db, loginData.Email)
		if err != nil || !utils.ValidatePassword(user.Password, loginData.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if user.Suspended {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is suspended"})
			return
		}

		newToken, err := utils.GenerateJWT(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		session := &models.Session{
			UserID:    user.ID,
			SessionID: newToken,
			HostName:  user.Email,
			IPAddress: loginData.IP,
			Timestamp: time.Now(),
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
		if err := storage.SaveSession(db, session); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful",
			"access_token": newToken,
			"role":         user.RoleName,
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
			},
		})
	}
}

// LogoutHandler deletes the caller's session and device token
// @Summary Logout
// @Description Invalidate the current session
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/logout [post]
func LogoutHandler(db *sql.DB, push *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		if err := storage.DeleteSessionByID(db, bearerToken(c), user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout", "details": err.Error()})
			return
		}
		if push != nil {
			_ = push.RemoveDeviceToken(user.ID)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// ValidateSessionHandler reports whether the caller's session is valid
// @Summary Validate session
// @Description Validate user session token
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/validate-session [post]
func ValidateSessionHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":   "Session validated",
			"role_name": user.RoleName,
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
			},
		})
	}
}

// RegisterDeviceTokenHandler stores the caller's push token
// @Summary Register device token
// @Description Register an FCM device token for workflow notifications
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body object true "Device token" SchemaExample({"token": "string"})
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/device-token [post]
func RegisterDeviceTokenHandler(push *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var requestData struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&requestData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		if push == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications not configured"})
			return
		}
		if err := push.SaveDeviceToken(user.ID, requestData.Token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save device token", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Device token registered"})
	}
}
