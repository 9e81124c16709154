package pii

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEmail(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("Contact me at john.doe@example.com for details.")

	require.True(t, result.Detected)
	assert.Equal(t, "Contact me at [EMAIL] for details.", result.MaskedText)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, TypeEmail, result.Matches[0].Type)
	assert.Equal(t, "john.doe@example.com", result.Matches[0].Value)
}

func TestDetectPhone(t *testing.T) {
	d := NewDetector(true)

	tests := []struct {
		name string
		text string
	}{
		{name: "international prefix", text: "Call +49 151 2345678 now"},
		{name: "zero prefix", text: "Call 0151 2345678 now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.Detect(tt.text)
			require.True(t, result.Detected)
			assert.Contains(t, result.MaskedText, "[PHONE]")
		})
	}
}

func TestDetectIBAN(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("Transfer to DE89 3704 0044 0532 0130 00 please.")

	require.True(t, result.Detected)
	// The digit groups inside the IBAN also look like a credit card number;
	// the longer, earlier span must win.
	assert.Equal(t, "Transfer to [IBAN] please.", result.MaskedText)
}

func TestDetectPostalCode(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("The office is at Hauptstrasse 1, 10115 Berlin.")

	require.True(t, result.Detected)
	assert.Contains(t, result.MaskedText, "[POSTAL_CODE]")
	assert.NotContains(t, result.MaskedText, "10115")
}

func TestDetectDate(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("Born on 12.05.1984 in Hamburg.")

	require.True(t, result.Detected)
	assert.Contains(t, result.MaskedText, "[DATE]")
}

func TestDetectCreditCard(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("Card number 4111 1111 1111 1111 expires soon.")

	require.True(t, result.Detected)
	assert.Contains(t, result.MaskedText, "[CREDIT_CARD]")
	assert.NotContains(t, result.MaskedText, "4111")
}

func TestDetectIPAddress(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("Request from 192.168.1.10 was logged.")

	require.True(t, result.Detected)
	assert.Equal(t, "Request from [IP_ADDRESS] was logged.", result.MaskedText)
}

func TestDetectMultiple(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("Mail anna@example.org or call +49 30 901820 today.")

	require.True(t, result.Detected)
	assert.Contains(t, result.MaskedText, "[EMAIL]")
	assert.Contains(t, result.MaskedText, "[PHONE]")
	assert.NotContains(t, result.MaskedText, "anna@example.org")
}

func TestDetectClean(t *testing.T) {
	d := NewDetector(true)

	text := "This paragraph contains no personal data at all."
	result := d.Detect(text)

	assert.False(t, result.Detected)
	assert.Equal(t, text, result.MaskedText)
	assert.Equal(t, "No PII detected", result.Summary())
}

func TestDetectorDisabled(t *testing.T) {
	d := NewDetector(false)

	text := "Mail john.doe@example.com"
	result := d.Detect(text)

	assert.False(t, result.Detected)
	assert.Equal(t, text, result.MaskedText)
}

func TestSummary(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("Mail a@example.com and b@example.com from 10.0.0.1")

	summary := result.Summary()
	assert.Contains(t, summary, "2x email")
	assert.Contains(t, summary, "1x ip_address")
}

func TestDetectAllAndAggregate(t *testing.T) {
	d := NewDetector(true)

	results := d.DetectAll([]string{
		"Mail john@example.com",
		"Nothing sensitive here",
		"Server at 10.0.0.1 and backup at 10.0.0.2",
	})

	require.Len(t, results, 3)

	stats := d.Aggregate(results)
	assert.Equal(t, 3, stats.TotalMatches)
	assert.Equal(t, 2, stats.TextsWithPII)
	assert.Equal(t, 1, stats.TypeDistribution[TypeEmail])
	assert.Equal(t, 2, stats.TypeDistribution[TypeIPAddress])
}

func TestMaskPreservesSurroundingText(t *testing.T) {
	d := NewDetector(true)

	result := d.Detect("before john@example.com after")

	assert.True(t, strings.HasPrefix(result.MaskedText, "before "))
	assert.True(t, strings.HasSuffix(result.MaskedText, " after"))
}
