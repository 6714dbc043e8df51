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

// GetMachines godoc
// @Summary      List machines
// @Description  List catalog machines, optionally filtered by type or restricted to active ones
// @Tags         catalog
// @Produce      json
// @Param        machine_type  query  string  false  "Machine type filter (测试机, 分选机, 探针台, 辅助设备)"
// @Param        active        query  bool    false  "Only active machines"
// @Success      200  {array}  models.Machine
// @Router       /api/machines [get]
func GetMachines(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := c.Query("active") == "true"
		machines, err := repository.ListMachines(gdb, activeOnly)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if machineType := c.Query("machine_type"); machineType != "" {
			filtered := machines[:0]
			for _, m := range machines {
				if m.MachineType == machineType {
					filtered = append(filtered, m)
				}
			}
			machines = filtered
		}

		c.JSON(http.StatusOK, machines)
	}
}

// GetMachineByID godoc
// @Summary      Get machine by ID
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Machine ID"
// @Success      200  {object}  models.Machine
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/machines/{id} [get]
func GetMachineByID(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid machine ID"})
			return
		}

		machine, err := repository.GetMachine(gdb, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		cards, err := repository.ListCards(gdb, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"machine": machine, "cards": cards})
	}
}

// CreateMachine godoc
// @Summary      Create machine
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      models.Machine  true  "Machine"
// @Success      201   {object}  models.Machine
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/machines [post]
func CreateMachine(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var machine models.Machine
		if err := c.ShouldBindJSON(&machine); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if machine.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Machine name is required"})
			return
		}

		if err := repository.CreateMachine(gdb, &machine); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, machine)
	}
}

// UpdateMachine godoc
// @Summary      Update machine
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Machine ID"
// @Param        body  body      models.Machine  true  "Machine"
// @Success      200   {object}  models.Machine
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/machines/{id} [put]
func UpdateMachine(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid machine ID"})
			return
		}

		var machine models.Machine
		if err := c.ShouldBindJSON(&machine); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		machine.ID = id

		if err := repository.UpdateMachine(gdb, &machine); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, machine)
	}
}

// DeleteMachine godoc
// @Summary      Retire machine
// @Description  Mark a machine inactive; existing quotes keep resolving it by ID
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Machine ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/machines/{id} [delete]
func DeleteMachine(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid machine ID"})
			return
		}

		if err := repository.DeleteMachine(gdb, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Machine retired"})
	}
}
