package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContactEntryTrimsFields(t *testing.T) {
	entry := NewContactEntry("  Alice ", " 0xabc ", " a@x.com", "https://x.com  ", AddressSend)

	assert.Equal(t, "Alice", entry.Label)
	assert.Equal(t, "0xabc", entry.Address)
	assert.Equal(t, "a@x.com", entry.Email)
	assert.Equal(t, "https://x.com", entry.URL)
	assert.Equal(t, AddressSend, entry.Type)
}

func TestContactEntryIsReceive(t *testing.T) {
	assert.False(t, NewContactEntry("Alice", "1A", "", "", AddressSend).IsReceive())
	assert.True(t, NewContactEntry("Savings", "1B", "", "", AddressReceive).IsReceive())
}

func TestParseAddressType(t *testing.T) {
	tests := map[string]AddressType{
		"receive":   AddressReceive,
		"RECEIVE ":  AddressReceive,
		"send":      AddressSend,
		"":          AddressSend,
		"something": AddressSend,
	}

	for input, expected := range tests {
		assert.Equal(t, expected, ParseAddressType(input), "input %q", input)
	}
}

func TestChangeStatusString(t *testing.T) {
	assert.Equal(t, "new", StatusNew.String())
	assert.Equal(t, "updated", StatusUpdated.String())
	assert.Equal(t, "deleted", StatusDeleted.String())
}
