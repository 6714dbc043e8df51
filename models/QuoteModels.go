package models

import "time"

// Quote is the aggregate persisted for one quotation: customer and
// project info plus the full list of priced line items. Status is
// always "draft" when created here; the approval workflow owns every
// later transition.
type Quote struct {
	ID              int         `json:"id" example:"1"`
	QuoteNumber     string      `json:"quote_number" example:"CIS-KS20260901001"`
	Title           string      `json:"title" example:"XX芯片测试报价"`
	QuoteType       string      `json:"quote_type" example:"engineering"`
	CustomerName    string      `json:"customer_name" example:"苏州芯片科技"`
	CustomerContact string      `json:"customer_contact,omitempty"`
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	CustomerEmail   string      `json:"customer_email,omitempty"`
	Currency        string      `json:"currency" example:"CNY"`
	ExchangeRate    float64     `json:"exchange_rate" example:"7.2"`
	Description     string      `json:"description,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	TotalAmount     float64     `json:"total_amount" example:"1250"`
	Status          string      `json:"status" example:"draft"`
	CreatedBy       int         `json:"created_by" example:"1"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	ValidUntil      *time.Time  `json:"valid_until,omitempty"`
	Items           []QuoteItem `json:"items"`
}

// QuoteItem is one persisted line of a quote. Configuration carries
// the serialized device/card selection: newer records hold a JSON
// ItemConfiguration, older ones free text or "key:value" pairs.
// UnitPrice/TotalPrice are display values; re-editing always reprices
// from the current catalog.
type QuoteItem struct {
	ID              int           `json:"id" example:"10"`
	QuoteID         int           `json:"quote_id" example:"1"`
	ItemName        string        `json:"item_name" example:"ETS-88 - Digital Pin Card"`
	ItemDescription string        `json:"item_description,omitempty" example:"Digital Pin Card - APU-12"`
	MachineType     string        `json:"machine_type,omitempty" example:"测试机"`
	Supplier        string        `json:"supplier,omitempty" example:"Eagle Test"`
	MachineModel    string        `json:"machine_model,omitempty" example:"ETS-88"`
	MachineID       int           `json:"machine_id,omitempty" example:"1"`
	Configuration   string        `json:"configuration,omitempty"`
	CardInfo        *CardSnapshot `json:"card_info,omitempty"`
	Quantity        float64       `json:"quantity" example:"1"`
	Unit            string        `json:"unit,omitempty" example:"小时"`
	UnitPrice       float64       `json:"unit_price" example:"350"`
	TotalPrice      float64       `json:"total_price" example:"350"`
}

// CardSnapshot records one selected card inside a serialized
// configuration, with enough identity to re-resolve it against a
// future version of the catalog.
type CardSnapshot struct {
	ID         int     `json:"id,omitempty" example:"101"`
	PartNumber string  `json:"part_number,omitempty" example:"APU-12"`
	BoardName  string  `json:"board_name,omitempty" example:"Digital Pin Card"`
	Quantity   int     `json:"quantity" example:"1"`
	UnitPrice  float64 `json:"unit_price,omitempty" example:"1000000"`
}

// DeviceSnapshot records one selected machine and its cards inside a
// serialized configuration.
type DeviceSnapshot struct {
	ID    int            `json:"id,omitempty" example:"1"`
	Name  string         `json:"name" example:"ETS-88"`
	Cards []CardSnapshot `json:"cards,omitempty"`
}

// ItemConfiguration is the JSON shape embedded in
// QuoteItem.Configuration for records written by this backend. Old
// quotes may instead carry free text or legacy "k:v,k:v" strings; the
// reconstruction logic in services handles all of them.
type ItemConfiguration struct {
	Section     string           `json:"section,omitempty" example:"engineering"`
	DeviceType  string           `json:"device_type,omitempty" example:"测试机"`
	TestType    string           `json:"test_type,omitempty" example:"FT"`
	ProcessType string           `json:"process_type,omitempty" example:"CP1"`
	TestMachine *DeviceSnapshot  `json:"test_machine,omitempty"`
	Handler     *DeviceSnapshot  `json:"handler,omitempty"`
	Prober      *DeviceSnapshot  `json:"prober,omitempty"`
	AuxDevices  []DeviceSnapshot `json:"aux_devices,omitempty"`
	Cards       []CardSnapshot   `json:"cards,omitempty"`
	UPH         float64          `json:"uph,omitempty" example:"1000"`
	UnitCost    float64          `json:"unit_cost,omitempty" example:"0.5"`
}

// CreateQuoteRequest is the payload for creating a quote. The item
// list is complete; the server never accepts partial item updates.
type CreateQuoteRequest struct {
	Title           string      `json:"title" binding:"required"`
	QuoteType       string      `json:"quote_type" binding:"required"`
	CustomerName    string      `json:"customer_name" binding:"required"`
	CustomerContact string      `json:"customer_contact"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerEmail   string      `json:"customer_email"`
	Currency        string      `json:"currency"`
	ExchangeRate    float64     `json:"exchange_rate"`
	Description     string      `json:"description"`
	Notes           string      `json:"notes"`
	ValidUntil      *time.Time  `json:"valid_until"`
	Items           []QuoteItem `json:"items"`
}

// UpdateQuoteRequest replaces a quote's header fields and its whole
// item set in one transaction.
type UpdateQuoteRequest struct {
	Title           string      `json:"title"`
	CustomerName    string      `json:"customer_name"`
	CustomerContact string      `json:"customer_contact"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerEmail   string      `json:"customer_email"`
	Currency        string      `json:"currency"`
	ExchangeRate    float64     `json:"exchange_rate"`
	Description     string      `json:"description"`
	Notes           string      `json:"notes"`
	ValidUntil      *time.Time  `json:"valid_until"`
	Items           []QuoteItem `json:"items"`
}
