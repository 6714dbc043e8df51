package services

import (
	"math"
	"testing"

	"chip-quotation-backend/models"
)

func testerCNY() models.Machine {
	return models.Machine{
		ID:           1,
		Name:         "ETS-88",
		Supplier:     "Eagle Test",
		Currency:     "RMB",
		ExchangeRate: 7.1,
		DiscountRate: 0.9,
		MachineType:  "测试机",
	}
}

func testerUSD() models.Machine {
	return models.Machine{
		ID:           2,
		Name:         "J750",
		Supplier:     "Teradyne",
		Currency:     "USD",
		ExchangeRate: 7.1,
		DiscountRate: 1,
		MachineType:  "测试机",
	}
}

func cardFor(machine models.Machine, scaledPrice float64) models.CardConfig {
	return models.CardConfig{
		ID:         100 + machine.ID,
		MachineID:  machine.ID,
		PartNumber: "PN-1",
		BoardName:  "Pin Card",
		UnitPrice:  scaledPrice,
	}
}

func TestMachineHourlyRawEmptySelection(t *testing.T) {
	ctx := PricingContext{Currency: "CNY"}

	if got := MachineHourlyRaw(nil, ctx); got != 0 {
		t.Errorf("MachineHourlyRaw(nil) = %v, want 0", got)
	}

	sel := &DeviceSelection{Machine: testerCNY()}
	if got := MachineHourlyRaw(sel, ctx); got != 0 {
		t.Errorf("MachineHourlyRaw with no cards = %v, want 0", got)
	}
}

func TestCurrencyBridgeAsymmetry(t *testing.T) {
	// CNY machine quoted in USD uses the quote-level rate.
	cnySel := &DeviceSelection{
		Machine: testerCNY(),
		Cards:   []SelectedCard{{Card: cardFor(testerCNY(), 720000), Quantity: 1}},
	}
	// 720000/10000 = 72, /7.2 = 10, *0.9 discount = 9
	got := MachineHourlyRaw(cnySel, PricingContext{Currency: "USD", ExchangeRate: 7.2})
	if math.Abs(got-9) > 1e-9 {
		t.Errorf("CNY machine in USD quote = %v, want 9", got)
	}

	// USD machine quoted in CNY uses the machine's catalog rate, not
	// the quote rate.
	usdSel := &DeviceSelection{
		Machine: testerUSD(),
		Cards:   []SelectedCard{{Card: cardFor(testerUSD(), 100000), Quantity: 1}},
	}
	// 100000/10000 = 10, *7.1 machine rate = 71
	got = MachineHourlyRaw(usdSel, PricingContext{Currency: "CNY", ExchangeRate: 6.5})
	if math.Abs(got-71) > 1e-9 {
		t.Errorf("USD machine in CNY quote = %v, want 71 (machine rate, not quote rate)", got)
	}

	// Same currency passes through untouched.
	got = MachineHourlyRaw(usdSel, PricingContext{Currency: "USD", ExchangeRate: 7.2})
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("USD machine in USD quote = %v, want 10", got)
	}
}

func TestComputeHourlyRateEngineeringScenario(t *testing.T) {
	// 1,000,000 scaled CNY card, discount 0.9, quoted in USD at 7.2,
	// quantity 2: 100/7.2*0.9*2 = 25 exactly after USD rounding.
	sel := &DeviceSelection{
		Machine: testerCNY(),
		Cards:   []SelectedCard{{Card: cardFor(testerCNY(), 1000000), Quantity: 2}},
	}
	ctx := PricingContext{Currency: "USD", ExchangeRate: 7.2}

	got := ComputeHourlyRate(sel, ctx)
	if got != 25.00 {
		t.Errorf("ComputeHourlyRate = %v, want 25.00", got)
	}
}

func TestComputeHourlyRateMultiplier(t *testing.T) {
	sel := &DeviceSelection{
		Machine: testerUSD(),
		Cards:   []SelectedCard{{Card: cardFor(testerUSD(), 100000), Quantity: 1}},
	}
	tests := []struct {
		name       string
		multiplier float64
		expect     float64
	}{
		{"zero multiplier means no scaling", 0, 10},
		{"unit multiplier", 1, 10},
		{"inquiry factor", 1.5, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := PricingContext{Currency: "USD", Multiplier: tt.multiplier}
			got := ComputeHourlyRate(sel, ctx)
			if got != tt.expect {
				t.Errorf("ComputeHourlyRate(multiplier=%v) = %v, want %v", tt.multiplier, got, tt.expect)
			}
		})
	}
}

func TestDiscountRateDefaults(t *testing.T) {
	machine := testerCNY()
	machine.DiscountRate = 0 // unset on the catalog row
	sel := &DeviceSelection{
		Machine: machine,
		Cards:   []SelectedCard{{Card: cardFor(machine, 500000), Quantity: 1}},
	}

	got := MachineHourlyRaw(sel, PricingContext{Currency: "CNY"})
	if got != 50 {
		t.Errorf("MachineHourlyRaw with unset discount = %v, want 50 (discount treated as 1.0)", got)
	}
}

func TestQuantityBelowOneCountsAsOne(t *testing.T) {
	machine := testerUSD()
	sel := &DeviceSelection{
		Machine: machine,
		Cards:   []SelectedCard{{Card: cardFor(machine, 100000), Quantity: 0}},
	}

	got := MachineHourlyRaw(sel, PricingContext{Currency: "USD"})
	if got != 10 {
		t.Errorf("MachineHourlyRaw with quantity 0 = %v, want 10", got)
	}
}

func TestComputeUnitRate(t *testing.T) {
	machine := testerCNY()
	machine.DiscountRate = 1
	sel := &DeviceSelection{
		Machine: machine,
		Cards:   []SelectedCard{{Card: cardFor(machine, 5000000), Quantity: 1}},
	}
	ctx := PricingContext{Currency: "CNY"}

	// 500 CNY per hour at 1000 units per hour is 0.5 per chip.
	got := ComputeUnitRate(sel, ctx, 1000)
	if got != 0.5 {
		t.Errorf("ComputeUnitRate = %v, want 0.5", got)
	}

	// UPH 0 must contribute 0, not infinity.
	if got := ComputeUnitRate(sel, ctx, 0); got != 0 {
		t.Errorf("ComputeUnitRate with UPH 0 = %v, want 0", got)
	}
	if got := ComputeUnitRate(sel, ctx, -5); got != 0 {
		t.Errorf("ComputeUnitRate with negative UPH = %v, want 0", got)
	}
}

func TestCombinedUnitRate(t *testing.T) {
	tester := testerCNY()
	tester.DiscountRate = 1
	prober := models.Machine{ID: 3, Name: "AP3000", Currency: "RMB", DiscountRate: 1, MachineType: "探针台"}

	testerSel := &DeviceSelection{
		Machine: tester,
		Cards:   []SelectedCard{{Card: cardFor(tester, 5000000), Quantity: 1}},
	}
	proberSel := &DeviceSelection{
		Machine: prober,
		Cards:   []SelectedCard{{Card: models.CardConfig{ID: 301, MachineID: 3, UnitPrice: 3000000}, Quantity: 1}},
	}
	ctx := PricingContext{Currency: "CNY"}

	// 500 + 300 per hour over 1000 UPH is 0.8 per chip.
	got := CombinedUnitRate([]*DeviceSelection{testerSel, proberSel}, ctx, 1000)
	if got != 0.8 {
		t.Errorf("CombinedUnitRate = %v, want 0.8", got)
	}

	// A nil role is simply skipped.
	got = CombinedUnitRate([]*DeviceSelection{testerSel, nil}, ctx, 1000)
	if got != 0.5 {
		t.Errorf("CombinedUnitRate with nil second role = %v, want 0.5", got)
	}

	if got := CombinedUnitRate([]*DeviceSelection{testerSel, proberSel}, ctx, 0); got != 0 {
		t.Errorf("CombinedUnitRate with UPH 0 = %v, want 0", got)
	}
}
