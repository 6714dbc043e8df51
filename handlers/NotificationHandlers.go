package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"chip-quotation-backend/models"

	"github.com/gin-gonic/gin"
)

// GetMyNotificationsHandler godoc
// @Summary      Get my notifications
// @Description  Return workflow notifications for the current user, newest first
// @Tags         notifications
// @Produce      json
// @Success      200  {array}  models.Notification
// @Router       /api/notifications [get]
func GetMyNotificationsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		rows, err := db.Query(`
			SELECT id, user_id, message, status, action, created_at, updated_at
			FROM notifications
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT 100`, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		defer rows.Close()

		notifications := []models.Notification{}
		for rows.Next() {
			var n models.Notification
			if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Status, &n.Action, &n.CreatedAt, &n.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan notification"})
				return
			}
			notifications = append(notifications, n)
		}

		c.JSON(http.StatusOK, notifications)
	}
}

// MarkNotificationAsReadHandler godoc
// @Summary      Mark notification as read
// @Tags         notifications
// @Produce      json
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  models.SuccessResponse
// @Router       /api/notifications/{id}/read [put]
func MarkNotificationAsReadHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
			return
		}

		result, err := db.Exec(`
			UPDATE notifications SET status = 'read', updated_at = $1
			WHERE id = $2 AND user_id = $3`, time.Now(), id, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}

// MarkAllNotificationsAsReadHandler godoc
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  models.SuccessResponse
// @Router       /api/notifications/read-all [put]
func MarkAllNotificationsAsReadHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		result, err := db.Exec(`
			UPDATE notifications SET status = 'read', updated_at = $1
			WHERE user_id = $2 AND status = 'unread'`, time.Now(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
			return
		}
		updated, _ := result.RowsAffected()

		c.JSON(http.StatusOK, gin.H{
			"message":       "All notifications marked as read",
			"updated_count": updated,
		})
	}
}

// DeleteNotificationHandler godoc
// @Summary      Delete notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  models.SuccessResponse
// @Router       /api/notifications/{id} [delete]
func DeleteNotificationHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
			return
		}

		result, err := db.Exec(`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
	}
}
