// internal/workers/agent/process-agent-query/models.go
package processagentquery

import "insurance-agent/internal/models"

type Input struct {
	Query   string                 `json:"query"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Output embeds the four channel artifacts as top-level process variables.
type Output struct {
	models.AgentResponse
	ProcessedAt string `json:"processedAt"` // ISO 8601
}
