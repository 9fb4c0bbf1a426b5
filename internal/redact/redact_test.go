package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactInfo_Masks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		mask  string
	}{
		{
			name:  "email address",
			input: "Contact us at support@example.com for help",
			mask:  EmailMask,
		},
		{
			name:  "us phone with dashes",
			input: "Call 555-867-5309 today",
			mask:  PhoneMask,
		},
		{
			name:  "us phone with parens",
			input: "Call (555) 867-5309 today",
			mask:  PhoneMask,
		},
		{
			name:  "international phone",
			input: "Reach us at +44 7700 900123 anytime",
			mask:  PhoneMask,
		},
		{
			name:  "ip address",
			input: "Request came from 192.168.1.100 yesterday",
			mask:  IPMask,
		},
		{
			name:  "card number",
			input: "Card 4111 1111 1111 1111 was charged",
			mask:  CardMask,
		},
		{
			name:  "ssn",
			input: "SSN 078-05-1120 on file",
			mask:  SSNMask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ContactInfo(tt.input)
			assert.Contains(t, out, tt.mask)
			assert.False(t, ContainsContactInfo(out), "masked output should not still match: %q", out)
		})
	}
}

func TestContactInfo_Idempotent(t *testing.T) {
	input := "Email a@b.com, call 555-123-4567, SSN 123-45-6789, card 1234-5678-9012-3456"
	once := ContactInfo(input)
	twice := ContactInfo(once)
	assert.Equal(t, once, twice)
}

func TestContactInfo_PreservesSurroundingText(t *testing.T) {
	out := ContactInfo("The report by jane@corp.org covers Q3 revenue.")
	assert.True(t, strings.HasPrefix(out, "The report by "))
	assert.True(t, strings.HasSuffix(out, " covers Q3 revenue."))
}

func TestContactInfo_Empty(t *testing.T) {
	assert.Equal(t, "", ContactInfo(""))
}

func TestContactInfo_CleanTextUnchanged(t *testing.T) {
	input := "Version 1.2 of the library shipped in 2024 with 15 fixes."
	assert.Equal(t, input, ContactInfo(input))
}
