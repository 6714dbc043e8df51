package models

// ErrorResponse is the generic error body returned by handlers
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid input"`
	Details string `json:"details,omitempty" example:""`
}

// LoginRequest is used in @Param for login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password"`
	IP       string `json:"ip" example:"192.168.1.1"`
}

// LoginResponse is used in @Success for login
type LoginResponse struct {
	Message     string    `json:"message" example:"User successfully logged in"`
	AccessToken string    `json:"access_token" example:"eyJhbGc..."`
	Role        string    `json:"role" example:"sales"`
	User        LoginUser `json:"user"`
}

// LoginUser is the user object inside LoginResponse
type LoginUser struct {
	ID    int    `json:"id" example:"1"`
	Email string `json:"email" example:"user@example.com"`
}

// SuccessResponse is used in @Success for generic success
type SuccessResponse struct {
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data,omitempty"`
}

// RateRequest is the payload for the interactive rate calculation
// endpoint: one machine, its selected cards with quantities, and the
// quote-level pricing context.
type RateRequest struct {
	MachineID    int            `json:"machine_id" binding:"required" example:"1"`
	Cards        []CardQuantity `json:"cards"`
	Currency     string         `json:"currency" example:"USD"`
	ExchangeRate float64        `json:"exchange_rate" example:"7.2"`
	Multiplier   float64        `json:"multiplier" example:"1.5"`
	UPH          float64        `json:"uph" example:"0"`
}

// CardQuantity selects one card of a machine with a quantity.
type CardQuantity struct {
	CardID   int `json:"card_id" binding:"required" example:"101"`
	Quantity int `json:"quantity" example:"1"`
}

// RateResponse carries the computed rates for a RateRequest.
type RateResponse struct {
	HourlyRate float64 `json:"hourly_rate" example:"25"`
	UnitRate   float64 `json:"unit_rate,omitempty" example:"0.025"`
	Currency   string  `json:"currency" example:"USD"`
}
