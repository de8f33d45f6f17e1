// Package contextasm turns an intent and the caller context into the
// database-context block of the prompt. Lookup failures become explanatory
// lines; assembly itself never fails.
package contextasm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/metrics"
	"insurance-agent/internal/models"
)

const (
	DefaultTopOpportunities = 5
	DefaultRecentLeads      = 3
	complementaryShown      = 3
	dateLayout              = "02 Jan 2006"
)

// Lookup names, used as metric labels.
const (
	LookupPersonSearch    = "person_search"
	LookupCrossSell       = "cross_sell_report"
	LookupCustomerSummary = "customer_summary"
	LookupPolicyDetails   = "policy_details"
	LookupCustomerDetails = "customer_details"
	LookupPremiumQuote    = "premium_quote"
)

// Directory is the read-only view of the CRM store. Single-record lookups
// return nil, nil when nothing matches.
type Directory interface {
	FindPeopleByName(ctx context.Context, name string) (models.PeopleSearchResult, error)
	ListPolicies(ctx context.Context) ([]models.Policy, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListLeads(ctx context.Context) ([]models.Lead, error)
	PolicyByType(ctx context.Context, policyType string) (*models.Policy, error)
	CustomerByContact(ctx context.Context, identifier string) (*models.Customer, error)
	CustomerByID(ctx context.Context, id string) (*models.Customer, error)
	PremiumQuote(ctx context.Context, req models.PremiumRequest) (*models.PremiumQuote, error)
}

type Config struct {
	TopOpportunities int
	RecentLeads      int
}

type Assembler struct {
	dir    Directory
	config Config
	logger logger.Logger
}

func New(cfg Config, dir Directory, log logger.Logger) *Assembler {
	if cfg.TopOpportunities <= 0 {
		cfg.TopOpportunities = DefaultTopOpportunities
	}
	if cfg.RecentLeads <= 0 {
		cfg.RecentLeads = DefaultRecentLeads
	}
	return &Assembler{
		dir:    dir,
		config: cfg,
		logger: logger.Component(log, "context-assembler"),
	}
}

// Assemble returns the additional context for intent. The result is empty
// when nothing applies.
func (a *Assembler) Assemble(ctx context.Context, intent models.Intent, callerContext map[string]interface{}) string {
	ctx, span := otel.Tracer("insurance-agent/agent").Start(ctx, "contextasm.Assemble")
	defer span.End()

	var blocks []string
	add := func(block string) {
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	switch intent.Type {
	case models.IntentPersonSearch:
		if name := intent.PersonName(); name != "" {
			add(a.run(LookupPersonSearch, fmt.Sprintf("Error searching database for %q.", name), func() (string, error) {
				return a.personBlock(ctx, name)
			}))
		}
	case models.IntentReport, models.IntentCrossSell:
		add(a.run(LookupCrossSell, "Error generating cross-sell report from database.", func() (string, error) {
			return a.crossSellBlock(ctx)
		}))
	case models.IntentCustomerQuery:
		add(a.run(LookupCustomerSummary, "Error fetching customer data from database.", func() (string, error) {
			return a.summaryBlock(ctx)
		}))
	case models.IntentPolicyInfo:
		if policyType := stringValue(callerContext, "policyType"); policyType != "" {
			add(a.run(LookupPolicyDetails, fmt.Sprintf("Error fetching policy details for %q.", policyType), func() (string, error) {
				return a.policyBlock(ctx, policyType)
			}))
		}
	case models.IntentPremiumCalc:
		if req, ok := premiumRequest(callerContext); ok {
			add(a.run(LookupPremiumQuote, fmt.Sprintf("Error calculating premium for %q.", req.PolicyType), func() (string, error) {
				return a.premiumBlock(ctx, req)
			}))
		}
	}

	if ref, byID := customerReference(callerContext); ref != "" {
		add(a.run(LookupCustomerDetails, fmt.Sprintf("Error fetching customer details for %q.", ref), func() (string, error) {
			return a.customerBlock(ctx, ref, byID)
		}))
	}

	span.SetAttributes(attribute.String("intent", string(intent.Type)), attribute.Int("context.blocks", len(blocks)))
	return strings.Join(blocks, "\n\n")
}

// run executes one lookup, converting an error or panic into failLine.
func (a *Assembler) run(lookup, failLine string, fn func() (string, error)) (block string) {
	defer func() {
		if rec := recover(); rec != nil {
			a.failed(lookup, fmt.Errorf("panic: %v", rec))
			block = failLine
		}
	}()
	if a.dir == nil {
		a.failed(lookup, fmt.Errorf("no directory configured"))
		return failLine
	}
	block, err := fn()
	if err != nil {
		a.failed(lookup, err)
		return failLine
	}
	return block
}

func (a *Assembler) failed(lookup string, err error) {
	metrics.ContextLookupFailures.WithLabelValues(lookup).Inc()
	a.logger.Warn("context lookup failed", apperrors.NewContextLookupFailedError(lookup, err).Fields())
}

func (a *Assembler) personBlock(ctx context.Context, name string) (string, error) {
	result, err := a.dir.FindPeopleByName(ctx, name)
	if err != nil {
		return "", err
	}
	if result.Total() == 0 {
		return fmt.Sprintf("Search Results: No records found for %q in leads or customers database.", name), nil
	}

	parts := []string{fmt.Sprintf("Search Results for %q:", name)}
	if len(result.Leads) > 0 {
		parts = append(parts, "", fmt.Sprintf("LEADS (%d found):", len(result.Leads)))
		for _, l := range result.Leads {
			parts = append(parts,
				"- "+l.Name,
				"  Status: "+string(l.Status),
				"  Email: "+orNA(l.Email),
				"  Phone: "+orNA(l.Phone),
				"  Age: "+ageOrNA(l.Age),
				"  Policy Interest: "+orNA(l.PolicyInterest),
				"  Sentiment: "+percent(l.Sentiment),
				"  Conversion Probability: "+percent(l.ConversionProbability),
				"  Last Contact: "+dateOrNA(l.LastContact),
				"  Notes: "+orNA(l.Notes),
				"  Location: "+orNA(l.Location),
				"  Source: "+orNA(l.Source),
				"  Best Contact Time: "+orNA(l.BestContactTime),
			)
		}
	}
	if len(result.Customers) > 0 {
		parts = append(parts, "", fmt.Sprintf("CUSTOMERS (%d found):", len(result.Customers)))
		for _, c := range result.Customers {
			since := c.CreatedAt
			parts = append(parts,
				"- "+c.Name,
				"  Email: "+orNA(c.Email),
				"  Phone: "+orNA(c.Phone),
				"  Age: "+ageOrNA(c.Age),
				"  Current Policies: "+policiesOrNone(c.Policies),
				"  Customer Since: "+dateOrNA(&since),
			)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (a *Assembler) crossSellBlock(ctx context.Context) (string, error) {
	customers, err := a.dir.ListCustomers(ctx)
	if err != nil {
		return "", err
	}
	catalog, err := a.dir.ListPolicies(ctx)
	if err != nil {
		return "", err
	}
	opps := ComputeCrossSell(customers, catalog)

	names := make([]string, 0, len(catalog))
	for _, p := range catalog {
		names = append(names, p.PolicyName)
	}

	parts := []string{
		"Cross-Sell Report Data:",
		fmt.Sprintf("Total Customers with Single Policy: %d", len(opps)),
		"Available Policies: " + strings.Join(names, ", "),
		"",
		"Top Opportunities:",
	}
	top := TopOpportunities(opps, a.config.TopOpportunities)
	if len(top) == 0 {
		parts = append(parts, "None")
	}
	for i, o := range top {
		complementary := o.ComplementaryPolicies
		if len(complementary) > complementaryShown {
			complementary = complementary[:complementaryShown]
		}
		parts = append(parts,
			"",
			fmt.Sprintf("%d. %s (Age: %s)", i+1, o.Customer.Name, ageOrNA(o.Customer.Age)),
			"   Current: "+o.CurrentPolicy,
			"   Priority: "+string(o.Priority),
			"   Complementary: "+strings.Join(complementary, ", "),
			fmt.Sprintf("   Contact: %s, %s", orNA(o.Customer.Email), orNA(o.Customer.Phone)),
		)
	}
	return strings.Join(parts, "\n"), nil
}

func (a *Assembler) summaryBlock(ctx context.Context) (string, error) {
	leads, err := a.dir.ListLeads(ctx)
	if err != nil {
		return "", err
	}
	customers, err := a.dir.ListCustomers(ctx)
	if err != nil {
		return "", err
	}

	parts := []string{
		"Database Summary:",
		fmt.Sprintf("Total Leads: %d", len(leads)),
		fmt.Sprintf("Total Customers: %d", len(customers)),
		"",
		fmt.Sprintf("Recent Leads (Top %d):", a.config.RecentLeads),
	}
	recent := leads
	if len(recent) > a.config.RecentLeads {
		recent = recent[:a.config.RecentLeads]
	}
	for i, l := range recent {
		contact := l.Phone
		if contact == "" {
			contact = orNA(l.Email)
		}
		parts = append(parts,
			"",
			fmt.Sprintf("%d. %s - %s (%s conversion)", i+1, l.Name, l.Status, percent(l.ConversionProbability)),
			"   Interest: "+orNA(l.PolicyInterest),
			"   Contact: "+contact,
		)
	}
	return strings.Join(parts, "\n"), nil
}

func (a *Assembler) policyBlock(ctx context.Context, policyType string) (string, error) {
	policy, err := a.dir.PolicyByType(ctx, policyType)
	if err != nil {
		return "", err
	}
	if policy == nil {
		return fmt.Sprintf("Policy Details: no policy found for type %q.", policyType), nil
	}
	data, err := json.Marshal(policy)
	if err != nil {
		return "", err
	}
	return "Policy Details: " + string(data), nil
}

func (a *Assembler) customerBlock(ctx context.Context, ref string, byID bool) (string, error) {
	var (
		customer *models.Customer
		err      error
	)
	if byID {
		customer, err = a.dir.CustomerByID(ctx, ref)
	} else {
		customer, err = a.dir.CustomerByContact(ctx, ref)
	}
	if err != nil {
		return "", err
	}
	if customer == nil {
		return fmt.Sprintf("Customer Details: no customer found for %q.", ref), nil
	}
	data, err := json.Marshal(customer)
	if err != nil {
		return "", err
	}
	return "Customer Details: " + string(data), nil
}

func (a *Assembler) premiumBlock(ctx context.Context, req models.PremiumRequest) (string, error) {
	quote, err := a.dir.PremiumQuote(ctx, req)
	if err != nil {
		return "", err
	}
	if quote == nil {
		return fmt.Sprintf("Premium Details: no premium table entry for %s, age group %s, coverage ₹%d, %d years.",
			req.PolicyType, req.AgeGroup(), req.CoverageAmount, req.TermYears), nil
	}
	parts := []string{
		"Premium Details:",
		"Policy Type: " + quote.PolicyType,
		"Age Group: " + quote.AgeGroup,
		fmt.Sprintf("Coverage Amount: ₹%d", quote.CoverageAmount),
		fmt.Sprintf("Term: %d years", quote.TermYears),
		fmt.Sprintf("Annual Premium: ₹%.0f", quote.AnnualPremium),
		fmt.Sprintf("Monthly Premium: ₹%.0f", quote.MonthlyPremium),
	}
	return strings.Join(parts, "\n"), nil
}

// customerReference picks the caller-supplied customer key. Email wins over
// phone, and both win over id.
func customerReference(callerContext map[string]interface{}) (string, bool) {
	if v := stringValue(callerContext, "customerEmail"); v != "" {
		return v, false
	}
	if v := stringValue(callerContext, "customerPhone"); v != "" {
		return v, false
	}
	if v := stringValue(callerContext, "customerId"); v != "" {
		return v, true
	}
	return "", false
}

func premiumRequest(callerContext map[string]interface{}) (models.PremiumRequest, bool) {
	policyType := stringValue(callerContext, "policyType")
	age, okAge := numberValue(callerContext, "age")
	coverage, okCoverage := numberValue(callerContext, "coverageAmount")
	term, okTerm := numberValue(callerContext, "termYears")
	if policyType == "" || !okAge || !okCoverage || !okTerm || age <= 0 || coverage <= 0 || term <= 0 {
		return models.PremiumRequest{}, false
	}
	return models.PremiumRequest{
		PolicyType:     policyType,
		Age:            int(age),
		CoverageAmount: int64(coverage),
		TermYears:      int(term),
	}, true
}

func stringValue(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	}
	return ""
}

// numberValue accepts JSON numbers (float64), Go integers and numeric strings.
func numberValue(m map[string]interface{}, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func ageOrNA(age int) string {
	if age <= 0 {
		return "N/A"
	}
	return strconv.Itoa(age)
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

func dateOrNA(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.Format(dateLayout)
}

func policiesOrNone(policies []string) string {
	if len(policies) == 0 {
		return "None"
	}
	return strings.Join(policies, ", ")
}
