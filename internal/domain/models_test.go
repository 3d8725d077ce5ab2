package domain

import (
	"testing"
)

func TestEntitlementStatusValid(t *testing.T) {
	tests := []struct {
		name     string
		value    EntitlementStatus
		expected bool
	}{
		{"Entitled", ENTITLED, true},
		{"Non-entitled", NON_ENTITLED, true},
		{"Empty", EntitlementStatus(""), false},
		{"Unknown", EntitlementStatus("PENDING"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Valid() != tt.expected {
				t.Errorf("Valid() = %v, expected %v for %q", tt.value.Valid(), tt.expected, string(tt.value))
			}
		})
	}
}

func TestQoLLevelValid(t *testing.T) {
	tests := []struct {
		name     string
		value    QoLLevel
		expected bool
	}{
		{"Level one", QOL_LEVEL_ONE, true},
		{"Level two", QOL_LEVEL_TWO, true},
		{"Level three", QOL_LEVEL_THREE, true},
		{"Zero", QoLLevel(0), false},
		{"Four", QoLLevel(4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Valid() != tt.expected {
				t.Errorf("Valid() = %v, expected %v for level %d", tt.value.Valid(), tt.expected, int(tt.value))
			}
		})
	}
}

func TestPCTFractionValid(t *testing.T) {
	tests := []struct {
		name     string
		value    PCTFraction
		expected bool
	}{
		{"Quarter", QUARTER, true},
		{"Half", HALF, true},
		{"Three quarters", THREE_QUARTERS, true},
		{"Full", PCTFraction("1/1"), false},
		{"Empty", PCTFraction(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Valid() != tt.expected {
				t.Errorf("Valid() = %v, expected %v for %q", tt.value.Valid(), tt.expected, string(tt.value))
			}
		})
	}
}

func TestFractionValid(t *testing.T) {
	tests := []struct {
		name     string
		value    Fraction
		expected bool
	}{
		{"Whole", Fraction{1, 1}, true},
		{"Four fifths", Fraction{4, 5}, true},
		{"Zero", Fraction{0, 5}, true},
		{"Above one", Fraction{6, 5}, false},
		{"Zero denominator", Fraction{1, 0}, false},
		{"Negative numerator", Fraction{-1, 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Valid() != tt.expected {
				t.Errorf("Valid() = %v, expected %v for %s", tt.value.Valid(), tt.expected, tt.value.String())
			}
		})
	}
}

func TestFractionString(t *testing.T) {
	f := Fraction{Numerator: 4, Denominator: 5}
	if f.String() != "4/5" {
		t.Errorf("Expected 4/5, got %s", f.String())
	}
	if !WholeEntitlement().IsWhole() {
		t.Error("WholeEntitlement should equal 1")
	}
}

func TestQoLBandContains(t *testing.T) {
	band := QoLBand{Min: 16, Max: 25}

	tests := []struct {
		name     string
		mi       int
		expected bool
	}{
		{"Below", 15, false},
		{"Lower edge", 16, true},
		{"Inside", 20, true},
		{"Upper edge", 25, true},
		{"Above", 26, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if band.Contains(tt.mi) != tt.expected {
				t.Errorf("Contains(%d) = %v, expected %v", tt.mi, band.Contains(tt.mi), tt.expected)
			}
		})
	}
}
