package repository

import (
	"fmt"

	"chip-quotation-backend/models"
	"chip-quotation-backend/services"

	"gorm.io/gorm"
)

// ListMachines returns catalog machines, newest first. With activeOnly
// set, retired machines are filtered out.
func ListMachines(gdb *gorm.DB, activeOnly bool) ([]models.Machine, error) {
	var machines []models.Machine
	query := gdb.Order("id")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

func GetMachine(gdb *gorm.DB, id int) (*models.Machine, error) {
	var machine models.Machine
	if err := gdb.First(&machine, id).Error; err != nil {
		return nil, err
	}
	return &machine, nil
}

func CreateMachine(gdb *gorm.DB, machine *models.Machine) error {
	if machine.Currency == "" {
		machine.Currency = "RMB"
	}
	if machine.DiscountRate == 0 {
		machine.DiscountRate = 1
	}
	machine.Active = true
	return gdb.Create(machine).Error
}

func UpdateMachine(gdb *gorm.DB, machine *models.Machine) error {
	result := gdb.Model(&models.Machine{}).Where("id = ?", machine.ID).Updates(map[string]interface{}{
		"name":          machine.Name,
		"supplier":      machine.Supplier,
		"currency":      machine.Currency,
		"exchange_rate": machine.ExchangeRate,
		"discount_rate": machine.DiscountRate,
		"machine_type":  machine.MachineType,
		"description":   machine.Description,
		"active":        machine.Active,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMachine retires a machine instead of removing the row: old
// quotes keep resolving against it by ID.
func DeleteMachine(gdb *gorm.DB, id int) error {
	result := gdb.Model(&models.Machine{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCards returns the card configurations of one machine.
func ListCards(gdb *gorm.DB, machineID int) ([]models.CardConfig, error) {
	var cards []models.CardConfig
	if err := gdb.Where("machine_id = ?", machineID).Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func GetCard(gdb *gorm.DB, id int) (*models.CardConfig, error) {
	var card models.CardConfig
	if err := gdb.First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func CreateCard(gdb *gorm.DB, card *models.CardConfig) error {
	return gdb.Create(card).Error
}

func UpdateCard(gdb *gorm.DB, card *models.CardConfig) error {
	result := gdb.Model(&models.CardConfig{}).Where("id = ?", card.ID).Updates(map[string]interface{}{
		"part_number": card.PartNumber,
		"board_name":  card.BoardName,
		"unit_price":  card.UnitPrice,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func DeleteCard(gdb *gorm.DB, id int) error {
	result := gdb.Delete(&models.CardConfig{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LoadCatalog reads the whole machine and card catalog for the
// reconstruction and pricing services. Retired machines are included
// so old quotes still resolve them by ID.
func LoadCatalog(gdb *gorm.DB) (*services.Catalog, error) {
	var machines []models.Machine
	if err := gdb.Order("id").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to load machines: %w", err)
	}
	var cards []models.CardConfig
	if err := gdb.Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	return &services.Catalog{Machines: machines, Cards: cards}, nil
}
