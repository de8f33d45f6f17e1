// Package crm reads leads, customers, policies and premium tables from the
// transactional postgres database.
package crm

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// FindPeopleByName matches leads and customers whose name contains name,
// case-insensitively.
func (s *Store) FindPeopleByName(ctx context.Context, name string) (models.PeopleSearchResult, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(name)) + "%"

	leads, err := s.queryLeads(ctx, "leads_by_name", queryLeadsByName, pattern)
	if err != nil {
		return models.PeopleSearchResult{}, err
	}
	customers, err := s.queryCustomers(ctx, "customers_by_name", queryCustomersByName, pattern)
	if err != nil {
		return models.PeopleSearchResult{}, err
	}
	return models.PeopleSearchResult{Leads: leads, Customers: customers}, nil
}

// ListLeads returns every lead, most recently created first.
func (s *Store) ListLeads(ctx context.Context) ([]models.Lead, error) {
	return s.queryLeads(ctx, "all_leads", queryAllLeads)
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.queryCustomers(ctx, "all_customers", queryAllCustomers)
}

// ListPolicies returns the catalog ordered by policy name.
func (s *Store) ListPolicies(ctx context.Context) ([]models.Policy, error) {
	rows, err := s.db.QueryContext(ctx, queryAllPolicies)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("all_policies", err)
	}
	defer rows.Close()

	policies := []models.Policy{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("all_policies", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("all_policies", err)
	}
	return policies, nil
}

// PolicyByType returns the first policy whose type contains policyType, or nil.
func (s *Store) PolicyByType(ctx context.Context, policyType string) (*models.Policy, error) {
	p, err := scanPolicy(s.db.QueryRowContext(ctx, queryPolicyByType, "%"+escapeLike(policyType)+"%"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("policy_by_type", err)
	}
	return &p, nil
}

// CustomerByContact matches identifier against email or phone, or returns nil.
func (s *Store) CustomerByContact(ctx context.Context, identifier string) (*models.Customer, error) {
	return s.queryCustomer(ctx, "customer_by_contact", queryCustomerByContact, identifier)
}

func (s *Store) CustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	return s.queryCustomer(ctx, "customer_by_id", queryCustomerByID, id)
}

// PremiumQuote looks up the premium table row for req, or returns nil.
func (s *Store) PremiumQuote(ctx context.Context, req models.PremiumRequest) (*models.PremiumQuote, error) {
	var q models.PremiumQuote
	err := s.db.QueryRowContext(ctx, queryPremium, req.PolicyType, req.AgeGroup(), req.CoverageAmount, req.TermYears).Scan(
		&q.PolicyType, &q.AgeGroup, &q.CoverageAmount, &q.TermYears, &q.AnnualPremium, &q.MonthlyPremium,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("premium_quote", err)
	}
	return &q, nil
}

func (s *Store) queryLeads(ctx context.Context, queryType, query string, args ...interface{}) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var (
			l           models.Lead
			status      string
			lastContact sql.NullTime
		)
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Email, &l.Phone, &l.Age,
			&status, &l.Sentiment, &l.ConversionProbability,
			&l.PolicyInterest, &l.Notes, &lastContact,
			&l.Location, &l.Source, &l.BestContactTime,
		); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
		}
		l.Status = models.LeadStatus(status)
		if lastContact.Valid {
			t := lastContact.Time
			l.LastContact = &t
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
	}
	return leads, nil
}

func (s *Store) queryCustomers(ctx context.Context, queryType, query string, args ...interface{}) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
	}
	return customers, nil
}

func (s *Store) queryCustomer(ctx context.Context, queryType, query, arg string) (*models.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
	}
	return &c, nil
}

func scanCustomer(row rowScanner) (models.Customer, error) {
	var (
		c        models.Customer
		policies pq.StringArray
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Age, &policies, &c.CreatedAt); err != nil {
		return models.Customer{}, err
	}
	c.Policies = []string(policies)
	return c, nil
}

func scanPolicy(row rowScanner) (models.Policy, error) {
	var (
		p        models.Policy
		benefits pq.StringArray
		riders   pq.StringArray
	)
	if err := row.Scan(
		&p.ID, &p.PolicyName, &p.PolicyType, &p.Description,
		&benefits, &p.PremiumRange, &p.CoverageAmount, &p.TermYears,
		&p.TaxBenefits, &riders,
	); err != nil {
		return models.Policy{}, err
	}
	p.Benefits = []string(benefits)
	p.RidersAvailable = []string(riders)
	return p, nil
}

// escapeLike escapes ILIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
