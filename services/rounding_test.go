package services

import (
	"math"
	"testing"
)

func TestRoundForCurrencyCNY(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		expect float64
	}{
		{"whole number stays", 120, 120},
		{"fraction ceils up", 120.01, 121},
		{"tiny fraction ceils up", 120.0001, 121},
		{"just below whole", 119.9999, 120},
		{"zero", 0, 0},
		{"negative fraction ceils toward zero", -3.7, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundForCurrency(tt.value, "CNY")
			if got != tt.expect {
				t.Errorf("RoundForCurrency(%v, CNY) = %v, want %v", tt.value, got, tt.expect)
			}
			if got != math.Trunc(got) {
				t.Errorf("RoundForCurrency(%v, CNY) = %v, want an integer", tt.value, got)
			}
		})
	}
}

func TestRoundForCurrencyUSD(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		expect float64
	}{
		{"clean two decimals kept", 25.00, 25.00},
		{"clean cents kept", 13.89, 13.89},
		{"sub-cent remainder ceils", 13.888888888888, 13.89},
		{"sub-cent remainder ceils again", 0.001, 0.01},
		{"float noise counts as clean", 25.000000000000004, 25.00},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundForCurrency(tt.value, "USD")
			if got != tt.expect {
				t.Errorf("RoundForCurrency(%v, USD) = %v, want %v", tt.value, got, tt.expect)
			}
			cents := got * 100
			if math.Abs(cents-math.Round(cents)) > 1e-6 {
				t.Errorf("RoundForCurrency(%v, USD) = %v, has more than 2 decimals", tt.value, got)
			}
		})
	}
}

func TestRoundForCurrencyMonotonic(t *testing.T) {
	values := []float64{0, 0.001, 0.009, 0.01, 0.5, 0.99, 0.999, 1, 1.004, 1.005, 1.01, 13.8888, 13.89, 25, 119.9999, 120, 120.0001}

	for _, currency := range []string{"CNY", "USD"} {
		prev := math.Inf(-1)
		for _, v := range values {
			got := RoundForCurrency(v, currency)
			if got < prev {
				t.Errorf("RoundForCurrency not monotonic for %s: value %v rounded to %v, below previous %v", currency, v, got, prev)
			}
			prev = got
		}
	}
}

func TestRoundForCurrencyNeverNaN(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, currency := range []string{"CNY", "USD"} {
				got := RoundForCurrency(tt.value, currency)
				if got != 0 {
					t.Errorf("RoundForCurrency(%v, %s) = %v, want 0", tt.value, currency, got)
				}
			}
		})
	}
}

func TestRoundUnitPrice(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		expect float64
	}{
		{"clean four decimals kept", 0.5, 0.5},
		{"exact four decimals kept", 0.1234, 0.1234},
		{"fifth decimal ceils", 0.12341, 0.1235},
		{"long remainder ceils", 0.55555555, 0.5556},
		{"zero", 0, 0},
		{"NaN becomes zero", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundUnitPrice(tt.value)
			if got != tt.expect {
				t.Errorf("RoundUnitPrice(%v) = %v, want %v", tt.value, got, tt.expect)
			}
		})
	}
}

func TestCurrencyLabels(t *testing.T) {
	if !IsCNY("RMB") || !IsCNY("CNY") || !IsCNY("人民币") {
		t.Error("expected RMB, CNY and 人民币 to read as yuan")
	}
	if IsCNY("USD") {
		t.Error("USD must not read as yuan")
	}
	if !IsUSD("USD") || !IsUSD("美元") {
		t.Error("expected USD and 美元 to read as dollars")
	}
}
