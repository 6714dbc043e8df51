package models

import "time"

// Machine represents a piece of test equipment in the catalog
// (tester, handler, prober or auxiliary device). Prices hang off the
// attached card configurations, not the machine itself.
type Machine struct {
	ID           int       `gorm:"primaryKey;column:id" json:"id" example:"1"`
	Name         string    `gorm:"column:name;not null" json:"name" example:"ETS-88"`
	Supplier     string    `gorm:"column:supplier" json:"supplier" example:"Eagle Test"`
	Currency     string    `gorm:"column:currency;default:'RMB'" json:"currency" example:"RMB"`
	ExchangeRate float64   `gorm:"column:exchange_rate;default:1" json:"exchange_rate" example:"7.1"`
	DiscountRate float64   `gorm:"column:discount_rate;default:1" json:"discount_rate" example:"0.9"`
	MachineType  string    `gorm:"column:machine_type" json:"machine_type" example:"测试机"`
	Description  string    `gorm:"column:description" json:"description,omitempty"`
	Active       bool      `gorm:"column:active;default:true" json:"active" example:"true"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Machine
func (Machine) TableName() string {
	return "machine"
}

// CardConfig represents an add-on board attached to a machine.
// UnitPrice is stored scaled by 10,000 in the machine's own currency;
// divide by 10,000 to get the working hourly price.
type CardConfig struct {
	ID         int       `gorm:"primaryKey;column:id" json:"id" example:"101"`
	MachineID  int       `gorm:"column:machine_id;not null" json:"machine_id" example:"1"`
	PartNumber string    `gorm:"column:part_number" json:"part_number" example:"APU-12"`
	BoardName  string    `gorm:"column:board_name" json:"board_name" example:"Digital Pin Card"`
	UnitPrice  float64   `gorm:"column:unit_price;type:numeric(14,2)" json:"unit_price" example:"1000000"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for CardConfig
func (CardConfig) TableName() string {
	return "card_config"
}
