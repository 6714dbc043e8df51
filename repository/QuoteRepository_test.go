package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestQuoteNumberPrefix(t *testing.T) {
	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		quoteType string
		expect    string
	}{
		{"inquiry", "inquiry", "CIS-XJ20260901"},
		{"tooling", "tooling", "CIS-GZ20260901"},
		{"engineering", "engineering", "CIS-GC20260901"},
		{"mass production", "mass_production", "CIS-LC20260901"},
		{"process", "process", "CIS-GX20260901"},
		{"combined", "combined", "CIS-ZH20260901"},
		{"unknown type falls back to KS", "mystery", "CIS-KS20260901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quoteNumberPrefix(tt.quoteType, day); got != tt.expect {
				t.Errorf("quoteNumberPrefix(%q) = %q, want %q", tt.quoteType, got, tt.expect)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("failed to insert quote: %w", &pq.Error{Code: "23505"})
	if !isUniqueViolation(dup) {
		t.Error("wrapped 23505 must count as a unique violation")
	}
	if isUniqueViolation(fmt.Errorf("failed to insert quote: %w", &pq.Error{Code: "40001"})) {
		t.Error("other postgres errors must not trigger the retry")
	}
	if isUniqueViolation(errors.New("connection reset")) {
		t.Error("plain errors must not trigger the retry")
	}
	if isUniqueViolation(nil) {
		t.Error("nil error must not trigger the retry")
	}
}
