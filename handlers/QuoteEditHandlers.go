package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"chip-quotation-backend/repository"
	"chip-quotation-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetQuoteEditState godoc
// @Summary      Load quote for re-editing
// @Description  Reconstruct the type-specific form state from a quote's stored line items, re-resolving devices and cards against the current catalog and repricing them. Works for quotes written by this backend and for legacy records with free-text configurations.
// @Tags         quotes
// @Produce      json
// @Param        id   path      int  true  "Quote ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quote_edit/{id} [get]
func GetQuoteEditState(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		quote, err := repository.GetQuoteByID(c.Request.Context(), db, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		catalog, err := repository.LoadCatalog(gdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		formState, err := services.FormStateForQuote(quote, catalog)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"quote":      quote,
			"form_state": formState,
		})
	}
}
