// Package services holds the quotation pricing engine: rate
// calculation, currency rounding, line-item serialization and the
// reconstruction of editable form state from persisted quotes.
package services

import "math"

// roundEpsilon decides whether a USD value already fits in two
// decimal places. Values within this distance of their half-up
// 2-decimal rounding are considered clean.
const roundEpsilon = 1e-9

// RoundForCurrency applies the quote-level rounding rule for the
// target currency.
//
// CNY quotes carry no sub-yuan prices, so the value is ceiled to a
// whole unit. USD quotes keep two decimals: a value that is already
// expressible with two decimals is rounded half-up (no artificial
// bump), anything with a sub-cent remainder is ceiled so the quote
// never undercuts the computed cost.
func RoundForCurrency(value float64, currency string) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if IsCNY(currency) {
		return math.Ceil(value)
	}

	rounded := math.Round(value*100) / 100
	if math.Abs(value-rounded) < roundEpsilon {
		return rounded
	}
	return math.Ceil(value*100) / 100
}

// RoundUnitPrice is the narrower 4-decimal ceiling used only for the
// per-chip unit cost of process quotes.
func RoundUnitPrice(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	scaled := value * 10000
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) < roundEpsilon {
		return rounded / 10000
	}
	return math.Ceil(scaled) / 10000
}

// IsCNY reports whether a currency label means Chinese yuan. Catalog
// rows use RMB, quotes use CNY, a few old records spell it out.
func IsCNY(currency string) bool {
	switch currency {
	case "CNY", "RMB", "rmb", "cny", "人民币":
		return true
	}
	return false
}

// IsUSD reports whether a currency label means US dollar.
func IsUSD(currency string) bool {
	switch currency {
	case "USD", "usd", "美元":
		return true
	}
	return false
}
