package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomesticReference(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		acceptable bool
	}{
		{"valid short", "1232", true},
		{"valid six digit base", "1234561", true},
		{"valid with grouping spaces", "12 3456 1", true},
		{"wrong check digit", "1234562", false},
		{"too short", "123", false},
		{"too long", "123456789012345678901", false},
		{"non-digit", "12A4561", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.acceptable, Reference(tt.input).Acceptable)
		})
	}
}

func TestISOReference(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		acceptable bool
	}{
		{"valid", "RF18539007547034", true},
		{"valid with spaces", "RF18 5390 0754 7034", true},
		{"wrong check digits", "RF19539007547034", false},
		{"altered body digit", "RF18539007547035", false},
		{"letters in body", "RF18ABC", false},
		{"too short", "RF181", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.acceptable, Reference(tt.input).Acceptable)
		})
	}
}
