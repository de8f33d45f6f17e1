// Package intent maps a free-text agent query to one of a fixed set of
// intents using an ordered rule table. The first matching rule wins.
package intent

import (
	"regexp"
	"strings"

	"insurance-agent/internal/models"
)

type rule struct {
	name  string
	match func(text, lower string) (models.Intent, bool)
}

// Capitalized words must stay case-sensitive even where the lead-in keyword is not.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:about|for|regarding|find|search|show|tell me about|information (?:about|on|for))\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`),
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)(?:\s|$)`),
	regexp.MustCompile(`'([^']+)'`),
	regexp.MustCompile(`"([^"]+)"`),
}

var rules = []rule{
	{name: string(models.IntentPersonSearch), match: matchPerson},
	keywordRule(models.IntentReport, "report", "list", "show me"),
	keywordRule(models.IntentCrossSell, "cross-sell", "complementary", "additional polic"),
	keywordRule(models.IntentPremiumCalc, "premium", "cost", "price"),
	keywordRule(models.IntentClaimProcess, "claim", "settlement"),
	keywordRule(models.IntentPolicyInfo, "policy", "insurance", "coverage"),
	keywordRule(models.IntentCustomerQuery, "customer", "client", "lead"),
}

func keywordRule(t models.IntentType, keywords ...string) rule {
	return rule{
		name: string(t),
		match: func(_, lower string) (models.Intent, bool) {
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					return models.Intent{Type: t, Entities: map[string]interface{}{}}, true
				}
			}
			return models.Intent{}, false
		},
	}
}

func matchPerson(text, _ string) (models.Intent, bool) {
	name, ok := ExtractPersonName(text)
	if !ok {
		return models.Intent{}, false
	}
	return models.Intent{
		Type:     models.IntentPersonSearch,
		Entities: map[string]interface{}{"name": name},
	}, true
}

// Classify is pure and total; unmatched text is general.
func Classify(text string) models.Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if in, ok := r.match(text, lower); ok {
			return in
		}
	}
	return models.Intent{Type: models.IntentGeneral, Entities: map[string]interface{}{}}
}

// ExtractPersonName tries the name patterns in priority order and returns
// the first non-blank capture, trimmed.
func ExtractPersonName(text string) (string, bool) {
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if name := strings.TrimSpace(m[1]); name != "" {
			return name, true
		}
	}
	return "", false
}

// Rules returns the rule names in evaluation order, ending with the general fallback.
func Rules() []string {
	names := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		names = append(names, r.name)
	}
	return append(names, string(models.IntentGeneral))
}
