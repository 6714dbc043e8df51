package services

import (
	"chip-quotation-backend/models"
)

// cardPriceScale is the storage scale of CardConfig.UnitPrice: card
// prices are persisted multiplied by 10,000.
const cardPriceScale = 10000

// PricingContext carries everything that makes one cost computation
// deterministic: the quote currency, the quote-level exchange rate
// (CNY per USD, user editable) and the scenario multiplier (inquiry
// factor, or 1 for direct pass-through).
type PricingContext struct {
	Currency     string
	ExchangeRate float64
	Multiplier   float64
}

// SelectedCard pairs a catalog card with the quantity chosen on the
// form. Quantity below 1 counts as 1.
type SelectedCard struct {
	Card     models.CardConfig `json:"card"`
	Quantity int               `json:"quantity"`
}

// DeviceSelection is one machine plus its selected cards, the unit
// the calculator and serializer work on. Placeholder selections come
// out of reconstruction when a persisted item no longer matches the
// catalog; they carry a negative machine ID and zero prices.
type DeviceSelection struct {
	Machine models.Machine `json:"machine"`
	Cards   []SelectedCard `json:"cards"`
}

// cnyDeviceToUsdQuote converts a CNY card price into a USD quote
// using the quote-level exchange rate. The machine's own catalog rate
// plays no part in this direction.
func cnyDeviceToUsdQuote(price, quoteRate float64) float64 {
	if quoteRate <= 0 {
		return 0
	}
	return price / quoteRate
}

// usdDeviceToCnyQuote converts a USD card price into a CNY quote
// using the machine's catalog exchange rate, not the quote-level one.
// The direction asymmetry is a business rule: users quoting in USD
// control the rate per quote, USD-priced machines carry their own
// contracted rate into CNY quotes.
func usdDeviceToCnyQuote(price, machineRate float64) float64 {
	if machineRate <= 0 {
		return 0
	}
	return price * machineRate
}

// bridgeCurrency moves a working card price from the machine's native
// currency into the quote currency. Same-currency selections pass
// through unchanged.
func bridgeCurrency(price float64, machine models.Machine, ctx PricingContext) float64 {
	switch {
	case IsUSD(ctx.Currency) && IsCNY(machine.Currency):
		return cnyDeviceToUsdQuote(price, ctx.ExchangeRate)
	case IsCNY(ctx.Currency) && IsUSD(machine.Currency):
		return usdDeviceToCnyQuote(price, machine.ExchangeRate)
	default:
		return price
	}
}

// discountRate normalizes a catalog discount: 0 means unset and is
// treated as the default 1.0.
func discountRate(machine models.Machine) float64 {
	if machine.DiscountRate <= 0 {
		return 1.0
	}
	return machine.DiscountRate
}

// MachineHourlyRaw computes the unrounded hourly cost of one machine
// selection in the quote currency: per card, unscale the stored
// price, bridge the currency, apply the machine discount and the card
// quantity, then sum. No cards selected means cost 0.
func MachineHourlyRaw(sel *DeviceSelection, ctx PricingContext) float64 {
	if sel == nil {
		return 0
	}
	var total float64
	for _, sc := range sel.Cards {
		qty := sc.Quantity
		if qty < 1 {
			qty = 1
		}
		price := sc.Card.UnitPrice / cardPriceScale
		price = bridgeCurrency(price, sel.Machine, ctx)
		total += price * discountRate(sel.Machine) * float64(qty)
	}
	return total
}

// ComputeHourlyRate is the hourly figure that goes onto a line item:
// raw machine cost times the scenario multiplier, rounded per the
// quote currency. A zero multiplier means no scaling.
func ComputeHourlyRate(sel *DeviceSelection, ctx PricingContext) float64 {
	raw := MachineHourlyRaw(sel, ctx)
	mult := ctx.Multiplier
	if mult == 0 {
		mult = 1
	}
	return RoundForCurrency(raw*mult, ctx.Currency)
}

// ComputeUnitRate converts an hourly machine cost into a per-chip
// cost by dividing through UPH, with the 4-decimal ceiling applied.
// UPH of 0 contributes cost 0 rather than dividing by zero.
func ComputeUnitRate(sel *DeviceSelection, ctx PricingContext, uph float64) float64 {
	if uph <= 0 {
		return 0
	}
	raw := MachineHourlyRaw(sel, ctx)
	return RoundUnitPrice(raw / uph)
}

// CombinedUnitRate sums the raw hourly costs of several device roles
// (tester plus prober for CP, tester plus handler for FT), divides by
// UPH and applies the per-chip ceiling once over the total, so the
// rounding never accumulates per role.
func CombinedUnitRate(sels []*DeviceSelection, ctx PricingContext, uph float64) float64 {
	if uph <= 0 {
		return 0
	}
	var raw float64
	for _, sel := range sels {
		raw += MachineHourlyRaw(sel, ctx)
	}
	return RoundUnitPrice(raw / uph)
}
