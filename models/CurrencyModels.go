package models

type Currency struct {
	ID           int     `json:"id" example:"1"`
	CurrencyName string  `json:"currency_name" example:"人民币"`
	CurrencyCode string  `json:"currency_code" example:"CNY"`
	Symbol       string  `json:"symbol" example:"¥"`
	ExchangeRate float64 `json:"exchange_rate" example:"1"`
}
