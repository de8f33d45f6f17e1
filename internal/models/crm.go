// internal/models/crm.go
package models

import (
	"fmt"
	"time"
)

type LeadStatus string

const (
	LeadStatusHot  LeadStatus = "hot"
	LeadStatusWarm LeadStatus = "warm"
	LeadStatusCold LeadStatus = "cold"
)

type Lead struct {
	ID                    string     `json:"id" db:"id"`
	Name                  string     `json:"name" db:"name"`
	Email                 string     `json:"email,omitempty" db:"email"`
	Phone                 string     `json:"phone,omitempty" db:"phone"`
	Age                   int        `json:"age,omitempty" db:"age"`
	Status                LeadStatus `json:"status" db:"status"`
	Sentiment             float64    `json:"sentiment" db:"sentiment"`
	ConversionProbability float64    `json:"conversionProbability" db:"conversion_probability"`
	PolicyInterest        string     `json:"policyInterest,omitempty" db:"policy_interest"`
	Notes                 string     `json:"notes,omitempty" db:"notes"`
	LastContact           *time.Time `json:"lastContact,omitempty" db:"last_contact"`
	Location              string     `json:"location,omitempty" db:"location"`
	Source                string     `json:"source,omitempty" db:"source"`
	BestContactTime       string     `json:"bestContactTime,omitempty" db:"best_contact_time"`
}

type Customer struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email,omitempty" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Age       int       `json:"age,omitempty" db:"age"`
	Policies  []string  `json:"policies" db:"policies"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Policy struct {
	ID              string   `json:"id" db:"id"`
	PolicyName      string   `json:"policyName" db:"policy_name"`
	PolicyType      string   `json:"policyType" db:"policy_type"`
	Description     string   `json:"description,omitempty" db:"description"`
	Benefits        []string `json:"benefits,omitempty" db:"benefits"`
	PremiumRange    string   `json:"premiumRange,omitempty" db:"premium_range"`
	CoverageAmount  string   `json:"coverageAmount,omitempty" db:"coverage_amount"`
	TermYears       string   `json:"termYears,omitempty" db:"term_years"`
	TaxBenefits     string   `json:"taxBenefits,omitempty" db:"tax_benefits"`
	RidersAvailable []string `json:"ridersAvailable,omitempty" db:"riders_available"`
}

// PeopleSearchResult holds name matches across both person stores.
type PeopleSearchResult struct {
	Leads     []Lead     `json:"leads"`
	Customers []Customer `json:"customers"`
}

// Total returns the number of matches across leads and customers.
func (r PeopleSearchResult) Total() int {
	return len(r.Leads) + len(r.Customers)
}

// PremiumRequest identifies one row of the premium table. AgeGroup is the
// five-year band containing Age, e.g. "30-34".
type PremiumRequest struct {
	PolicyType     string `json:"policyType"`
	Age            int    `json:"age"`
	CoverageAmount int64  `json:"coverageAmount"`
	TermYears      int    `json:"termYears"`
}

type PremiumQuote struct {
	PolicyType     string  `json:"policyType" db:"policy_type"`
	AgeGroup       string  `json:"ageGroup" db:"age_group"`
	CoverageAmount int64   `json:"coverageAmount" db:"coverage_amount"`
	TermYears      int     `json:"termYears" db:"term_years"`
	AnnualPremium  float64 `json:"annualPremium" db:"annual_premium"`
	MonthlyPremium float64 `json:"monthlyPremium" db:"monthly_premium"`
}

// AgeGroup returns the five-year band used as the premium table key.
func (r PremiumRequest) AgeGroup() string {
	lo := (r.Age / 5) * 5
	return fmt.Sprintf("%d-%d", lo, lo+4)
}
