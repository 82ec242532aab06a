package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIBAN(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		acceptable bool
	}{
		{"valid Finnish", "FI2112345600000785", true},
		{"valid German", "DE89370400440532013000", true},
		{"valid British with letters", "GB82WEST12345698765432", true},
		{"valid with layout spaces", "FI21 1234 5600 0007 85", true},
		{"single digit altered", "FI2112345600000786", false},
		{"check digits altered", "FI2212345600000785", false},
		{"too short", "FI21", false},
		{"missing country code", "212345600000785", false},
		{"lowercase country code", "fi2112345600000785", false},
		{"embedded punctuation", "FI21-1234-5600-0007-85", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := IBAN(tt.input)
			assert.Equal(t, tt.acceptable, v.Acceptable)
			if !tt.acceptable {
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

// Every accepted IBAN must leave MOD-97 remainder 1 after rearrangement.
func TestIBANMod97Remainder(t *testing.T) {
	for _, s := range []string{
		"FI2112345600000785",
		"DE89370400440532013000",
		"GB82WEST12345698765432",
	} {
		assert.True(t, IBAN(s).Acceptable, s)
		assert.Equal(t, 1, mod97(s[4:]+s[:4]), s)
	}
}
