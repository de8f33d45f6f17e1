// internal/agent/generator/fallback.go
package generator

import (
	"strings"

	"insurance-agent/internal/models"
)

const crossSellFallback = `📊 Cross-Sell Report

I can generate a report of customers with single policies who are good candidates for complementary products.

The report will include:
- Customers with only one policy type
- High-value customers (based on age and existing coverage)
- Recommended complementary policies
- Priority ranking for outreach

To generate the full report, please ensure the database query completes successfully. The system will analyze:
- Current policy holdings
- Customer demographics
- Available complementary products
- Cross-sell opportunities

Would you like me to try generating the report again?`

const policyInfoFallback = "I can help you with insurance policy information. We offer Term Life, ULIP, Health Insurance, and more. " +
	"Each policy has unique benefits and tax advantages. Would you like details about a specific policy type?"

const premiumFallback = "To calculate your premium, I'll need:\n" +
	"- Policy type (Term Life, ULIP, etc.)\n" +
	"- Coverage amount\n" +
	"- Your age\n" +
	"- Policy term\n\n" +
	"Please provide these details for an accurate quote."

const claimFallback = "Claim Process:\n" +
	"1. Inform insurer immediately\n" +
	"2. Submit required documents (death certificate, policy document, claim form)\n" +
	"3. Provide nominee KYC\n" +
	"4. Claim settled within 30 days\n\n" +
	"For specific guidance, please contact our claims team."

const generalFallback = "Thank you for your query. I'm here to help with:\n" +
	"- Policy information\n" +
	"- Premium calculations\n" +
	"- Claim process\n" +
	"- Tax benefits\n" +
	"- Customer reports and cross-sell opportunities\n\n" +
	"Please ask me about any specific insurance topic."

// Fallback is the deterministic reply used when the model is unavailable.
// Retrieved knowledge takes precedence over the intent templates.
func Fallback(in Input) string {
	if strings.TrimSpace(in.RAGContext) != "" {
		return "Based on our knowledge base:\n\n" + in.RAGContext + "\n\nFor more specific information, please contact our team."
	}

	switch in.Intent.Type {
	case models.IntentReport, models.IntentCrossSell:
		return crossSellFallback
	case models.IntentPolicyInfo:
		return policyInfoFallback
	case models.IntentPremiumCalc:
		return premiumFallback
	case models.IntentClaimProcess:
		return claimFallback
	default:
		return generalFallback
	}
}
