// internal/workers/communication/send-agent-message/models.go
package sendagentmessage

import "insurance-agent/internal/models"

const DefaultSubject = "Message from Insurance Team"

type Input struct {
	Channel   models.Channel       `json:"channel"`
	Subject   string               `json:"subject,omitempty"`
	Recipient models.Recipient     `json:"recipient"`
	Response  models.AgentResponse `json:"response"`
}

type Output struct {
	MessageID string   `json:"messageId"`
	Status    string   `json:"status"`
	Channel   string   `json:"channel"`
	SentAt    string   `json:"sentAt"` // ISO 8601
	Issues    []string `json:"issues,omitempty"`
}

const (
	StatusSent     = "sent"
	StatusBlocked  = "blocked"
	StatusDisabled = "disabled"
)
