// internal/store/crm/queries.go
package crm

const leadColumns = `id::text, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(age, 0),
		       status, COALESCE(sentiment, 0), COALESCE(conversion_probability, 0),
		       COALESCE(policy_interest, ''), COALESCE(notes, ''), last_contact,
		       COALESCE(location, ''), COALESCE(source, ''), COALESCE(best_contact_time, '')`

const customerColumns = `id::text, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(age, 0),
		       COALESCE(policies, '{}'), created_at`

const policyColumns = `id::text, policy_name, policy_type, COALESCE(description, ''),
		       COALESCE(benefits, '{}'), COALESCE(premium_range, ''),
		       COALESCE(coverage_amount::text, ''), COALESCE(term_years::text, ''),
		       COALESCE(tax_benefits, ''), COALESCE(riders_available, '{}')`

const (
	queryLeadsByName = `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE name ILIKE $1
		ORDER BY name`

	queryCustomersByName = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE name ILIKE $1
		ORDER BY name`

	queryAllLeads = `
		SELECT ` + leadColumns + `
		FROM leads
		ORDER BY created_at DESC`

	queryAllCustomers = `
		SELECT ` + customerColumns + `
		FROM customers
		ORDER BY created_at DESC`

	queryAllPolicies = `
		SELECT ` + policyColumns + `
		FROM policies
		ORDER BY policy_name`

	queryPolicyByType = `
		SELECT ` + policyColumns + `
		FROM policies
		WHERE policy_type ILIKE $1
		ORDER BY policy_name
		LIMIT 1`

	queryCustomerByContact = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE email = $1 OR phone = $1
		LIMIT 1`

	queryCustomerByID = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id::text = $1`

	queryPremium = `
		SELECT policy_type, age_group, coverage_amount, term_years, annual_premium, monthly_premium
		FROM premium_tables
		WHERE policy_type = $1 AND age_group = $2 AND coverage_amount = $3 AND term_years = $4
		LIMIT 1`
)
