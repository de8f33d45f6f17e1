// internal/models/agent.go
package models

import "strings"

type IntentType string

const (
	IntentPolicyInfo    IntentType = "policy_info"
	IntentPremiumCalc   IntentType = "premium_calc"
	IntentClaimProcess  IntentType = "claim_process"
	IntentCustomerQuery IntentType = "customer_query"
	IntentPersonSearch  IntentType = "person_search"
	IntentReport        IntentType = "report"
	IntentCrossSell     IntentType = "cross_sell"
	IntentGeneral       IntentType = "general"
)

// Intent is derived from the query text only.
type Intent struct {
	Type     IntentType             `json:"type"`
	Entities map[string]interface{} `json:"entities,omitempty"`
}

// PersonName returns the extracted name for person_search intents.
func (i Intent) PersonName() string {
	if i.Entities == nil {
		return ""
	}
	name, _ := i.Entities["name"].(string)
	return name
}

type AgentQuery struct {
	Text    string                 `json:"query"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// AgentResponse carries the four channel artifacts. All fields are always
// non-blank when returned by the agent.
type AgentResponse struct {
	AgentReply string `json:"agent_reply"`
	WhatsApp   string `json:"whatsapp"`
	Email      string `json:"email"`
	VoiceText  string `json:"voice_text"`
}

// Complete reports whether every channel artifact is non-blank.
func (r AgentResponse) Complete() bool {
	for _, v := range []string{r.AgentReply, r.WhatsApp, r.Email, r.VoiceText} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
)

// CrossSellOpportunity is computed per request and never stored.
type CrossSellOpportunity struct {
	Customer              Customer `json:"customer"`
	CurrentPolicy         string   `json:"currentPolicy"`
	ComplementaryPolicies []string `json:"complementaryPolicies"`
	Priority              Priority `json:"priority"`
}
