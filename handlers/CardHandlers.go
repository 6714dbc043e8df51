package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"chip-quotation-backend/models"
	"chip-quotation-backend/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetCardsForMachine godoc
// @Summary      List cards of a machine
// @Tags         catalog
// @Produce      json
// @Param        id   path     int  true  "Machine ID"
// @Success      200  {array}  models.CardConfig
// @Router       /api/machines/{id}/cards [get]
func GetCardsForMachine(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		machineID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid machine ID"})
			return
		}

		cards, err := repository.ListCards(gdb, machineID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, cards)
	}
}

// CreateCard godoc
// @Summary      Add card configuration
// @Description  Attach a card to a machine. unit_price is the hourly price scaled by 10,000.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      models.CardConfig  true  "Card"
// @Success      201   {object}  models.CardConfig
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/cards [post]
func CreateCard(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var card models.CardConfig
		if err := c.ShouldBindJSON(&card); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if card.MachineID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "machine_id is required"})
			return
		}
		if _, err := repository.GetMachine(gdb, card.MachineID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Machine not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := repository.CreateCard(gdb, &card); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, card)
	}
}

// UpdateCard godoc
// @Summary      Update card configuration
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Card ID"
// @Param        body  body      models.CardConfig  true  "Card"
// @Success      200   {object}  models.CardConfig
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/cards/{id} [put]
func UpdateCard(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID"})
			return
		}

		var card models.CardConfig
		if err := c.ShouldBindJSON(&card); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		card.ID = id

		if err := repository.UpdateCard(gdb, &card); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, card)
	}
}

// DeleteCard godoc
// @Summary      Delete card configuration
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Card ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/cards/{id} [delete]
func DeleteCard(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID"})
			return
		}

		if err := repository.DeleteCard(gdb, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Card deleted successfully"})
	}
}
