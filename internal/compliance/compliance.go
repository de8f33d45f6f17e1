// Package compliance screens outbound customer text against IRDAI
// advertising rules before it is delivered.
package compliance

import (
	"fmt"
	"strings"

	"insurance-agent/internal/common/config"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const disclaimerIssue = "Investment products should include market risk disclaimer."

var (
	investmentTerms = []string{"ulip", "investment", "returns"}
	disclaimerTerms = []string{"market-linked", "subject to market"}
)

type Result struct {
	IsCompliant bool      `json:"isCompliant"`
	Issues      []string  `json:"issues"`
	Suggestions []string  `json:"suggestions"`
	RiskLevel   RiskLevel `json:"riskLevel"`
}

type Checker struct {
	keywords []string
}

// NewChecker lowercases keywords once. An empty list uses the defaults.
func NewChecker(keywords []string) *Checker {
	if len(keywords) == 0 {
		keywords = config.DefaultComplianceKeywords()
	}
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	return &Checker{keywords: kw}
}

var defaultChecker = NewChecker(nil)

// Check screens text with the default keyword list.
func Check(text string) Result {
	return defaultChecker.Check(text)
}

func (c *Checker) Check(text string) Result {
	lower := strings.ToLower(text)
	issues := []string{}

	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			issues = append(issues, fmt.Sprintf("Prohibited term detected: %q. This violates IRDAI guidelines.", kw))
		}
	}
	if containsAny(lower, investmentTerms) && !containsAny(lower, disclaimerTerms) {
		issues = append(issues, disclaimerIssue)
	}

	res := Result{
		IsCompliant: len(issues) == 0,
		Issues:      issues,
		RiskLevel:   riskLevel(len(issues)),
	}
	if res.IsCompliant {
		res.Suggestions = []string{"Message is compliant with IRDAI guidelines."}
	} else {
		res.Suggestions = []string{
			"Review and remove prohibited terms.",
			"Add appropriate disclaimers for investment products.",
		}
	}
	return res
}

func riskLevel(issues int) RiskLevel {
	switch {
	case issues == 0:
		return RiskLow
	case issues <= 2:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
