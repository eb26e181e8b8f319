package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestIsValidAddress(t *testing.T) {
	v := NewAddressValidator(false)

	tests := []struct {
		address string
		valid   bool
	}{
		{checksummed, true},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", true},
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", false},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1bea", false},
		{"0xZZaeb6053f3e94c9b9a09f33669435e7ef1beaed", false},
		{"", false},
		{"1A2B", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, v.IsValidAddress(tt.address), "IsValidAddress(%q)", tt.address)
	}
}

func TestChecksumMismatch(t *testing.T) {
	bad := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD"

	result := NewAddressValidator(false).ValidateAddress(bad)
	assert.True(t, result.IsValid, "lenient validator accepts a bad checksum")
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ErrorChecksumMismatch, result.Warnings[0].Code)
	assert.Len(t, result.Suggestions, 1)

	strict := NewAddressValidator(true)
	assert.False(t, strict.IsValidAddress(bad))
	assert.True(t, strict.IsValidAddress(checksummed))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, checksummed, Normalize("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.Equal(t, "not-an-address", Normalize("not-an-address"))
}
