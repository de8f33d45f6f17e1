package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		compliant bool
		issues    []string
		risk      RiskLevel
	}{
		{
			name:      "clean term plan message",
			text:      "Dear Priya, your term plan renewal is due. Please contact us. Thank you.",
			compliant: true,
			issues:    []string{},
			risk:      RiskLow,
		},
		{
			name:      "prohibited term",
			text:      "This plan is completely Risk-Free!",
			compliant: false,
			issues:    []string{`Prohibited term detected: "risk-free". This violates IRDAI guidelines.`},
			risk:      RiskMedium,
		},
		{
			name:      "investment without disclaimer",
			text:      "Our ULIP gives strong growth.",
			compliant: false,
			issues:    []string{disclaimerIssue},
			risk:      RiskMedium,
		},
		{
			name:      "investment with disclaimer",
			text:      "ULIP returns are subject to market risks.",
			compliant: true,
			issues:    []string{},
			risk:      RiskLow,
		},
		{
			name:      "many issues",
			text:      "Guaranteed returns, no risk, tax-free: the best investment.",
			compliant: false,
			risk:      RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Check(tt.text)
			assert.Equal(t, tt.compliant, res.IsCompliant)
			assert.Equal(t, tt.risk, res.RiskLevel)
			if tt.issues != nil {
				assert.Equal(t, tt.issues, res.Issues)
			}
			assert.NotEmpty(t, res.Suggestions)
		})
	}
}

func TestCheck_ManyIssuesCount(t *testing.T) {
	res := Check("Guaranteed returns, no risk, tax-free: the best investment.")
	// four keywords plus the missing disclaimer
	require.Len(t, res.Issues, 5)
	assert.Equal(t, disclaimerIssue, res.Issues[4])
}

func TestNewChecker_CustomKeywords(t *testing.T) {
	c := NewChecker([]string{"  Double Money ", ""})
	assert.False(t, c.Check("double money in a year").IsCompliant)
	assert.True(t, c.Check("risk-free cover").IsCompliant)
}
