package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ten digits", "9876543210", "9876543210"},
		{"formatted with country code", "+91 98765-43210", "9876543210"},
		{"spaces and dashes", "111-222-3333", "1112223333"},
		{"more than ten digits keeps last ten", "919876543210", "9876543210"},
		{"short number passes through", "12345", "12345"},
		{"letters stripped", "call 98765x43210", "9876543210"},
		{"empty", "", ""},
		{"no digits at all", "n/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"+91 98765-43210", "919876543210", "12345", "", "abc"}
	for _, input := range inputs {
		once := NormalizePhone(input)
		assert.Equal(t, once, NormalizePhone(once), "normalize(normalize(%q))", input)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
	assert.Equal(t, "a@b.co", NormalizeEmail("a@b.co"))
}

func TestNullableContact(t *testing.T) {
	assert.Nil(t, NullableContact(""))

	got := NullableContact("9876543210")
	if assert.NotNil(t, got) {
		assert.Equal(t, "9876543210", *got)
	}
}

func TestLeadEnums(t *testing.T) {
	assert.True(t, IsValidLeadType(LeadTypeBuyer))
	assert.True(t, IsValidLeadType(LeadTypeContractor))
	assert.True(t, IsValidLeadType(LeadTypeSeller))
	assert.True(t, IsValidLeadType(LeadTypeManufacturer))
	assert.False(t, IsValidLeadType("Supplier"))
	assert.False(t, IsValidLeadType(""))

	assert.True(t, IsValidLeadStatus(LeadStatusNew))
	assert.True(t, IsValidLeadStatus(LeadStatusFollowUp))
	assert.True(t, IsValidLeadStatus(LeadStatusClosed))
	assert.True(t, IsValidLeadStatus(LeadStatusConverted))
	assert.False(t, IsValidLeadStatus("Open"))
}
