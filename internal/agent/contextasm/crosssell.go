// internal/agent/contextasm/crosssell.go
package contextasm

import (
	"sort"

	"insurance-agent/internal/models"
)

// highPriorityAge is a coarse heuristic: customers older than this are
// flagged High. It has not been validated against conversion data.
const highPriorityAge = 35

// ComputeCrossSell derives opportunities for customers holding exactly one
// policy. Complementary policies keep catalog order. The result is ordered by
// priority (High first), then by age descending.
func ComputeCrossSell(customers []models.Customer, catalog []models.Policy) []models.CrossSellOpportunity {
	single := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if len(c.Policies) == 1 {
			single = append(single, c)
		}
	}
	sort.SliceStable(single, func(i, j int) bool {
		return single[i].Age > single[j].Age
	})

	opps := make([]models.CrossSellOpportunity, 0, len(single))
	for _, c := range single {
		held := c.Policies[0]
		complementary := make([]string, 0, len(catalog))
		for _, p := range catalog {
			if p.PolicyName != held {
				complementary = append(complementary, p.PolicyName)
			}
		}

		priority := models.PriorityMedium
		if c.Age > highPriorityAge {
			priority = models.PriorityHigh
		}

		opps = append(opps, models.CrossSellOpportunity{
			Customer:              c,
			CurrentPolicy:         held,
			ComplementaryPolicies: complementary,
			Priority:              priority,
		})
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Priority == models.PriorityHigh && opps[j].Priority != models.PriorityHigh
	})
	return opps
}

// TopOpportunities returns at most n opportunities.
func TopOpportunities(opps []models.CrossSellOpportunity, n int) []models.CrossSellOpportunity {
	if n < 0 {
		n = 0
	}
	if len(opps) > n {
		return opps[:n]
	}
	return opps
}
