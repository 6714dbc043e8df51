package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"chip-quotation-backend/models"

	"github.com/gin-gonic/gin"
)

// ListQuoteChangesHandler godoc
// @Summary      List quote audit trail
// @Description  Return the change history recorded for one quote, newest first
// @Tags         quotes
// @Produce      json
// @Param        id   path     int  true  "Quote ID"
// @Success      200  {array}  models.QuoteChange
// @Router       /api/quotes/{id}/changes [get]
func ListQuoteChangesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		rows, err := db.Query(`
			SELECT qc.id, qc.user_id, COALESCE(u.email, ''), qc.change_type,
			       qc.old_value, qc.new_value, qc.changed_at
			FROM quote_changes qc
			LEFT JOIN users u ON qc.user_id = u.id
			WHERE qc.entity_type = 'quote' AND qc.entity_id = $1
			ORDER BY qc.changed_at DESC`, strconv.Itoa(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch change history"})
			return
		}
		defer rows.Close()

		changes := []models.QuoteChange{}
		for rows.Next() {
			var ch models.QuoteChange
			var oldValue, newValue sql.NullString
			if err := rows.Scan(&ch.ID, &ch.UserID, &ch.UserEmail, &ch.ChangeType,
				&oldValue, &newValue, &ch.ChangedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan change row"})
				return
			}
			ch.OldValue = oldValue.String
			ch.NewValue = newValue.String
			changes = append(changes, ch)
		}

		c.JSON(http.StatusOK, changes)
	}
}
