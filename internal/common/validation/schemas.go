// internal/common/validation/schemas.go
package validation

// AgentQuerySchema validates {query, context} request bodies.
var AgentQuerySchema = MustCompile(`{
	"type": "object",
	"required": ["query"],
	"properties": {
		"query": {"type": "string", "minLength": 1, "maxLength": 4000, "pattern": "\\S"},
		"context": {
			"type": "object",
			"properties": {
				"customerEmail":  {"type": "string"},
				"customerPhone":  {"type": "string"},
				"customerId":     {"type": "string"},
				"policyType":     {"type": "string"},
				"age":            {"type": ["number", "string"]},
				"coverageAmount": {"type": ["number", "string"]},
				"termYears":      {"type": ["number", "string"]}
			}
		}
	}
}`)

// ComplianceCheckSchema validates {text} request bodies.
var ComplianceCheckSchema = MustCompile(`{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string", "minLength": 1}
	}
}`)

// SendMessageSchema validates send-agent-message job variables.
var SendMessageSchema = MustCompile(`{
	"type": "object",
	"required": ["channel", "recipient", "response"],
	"properties": {
		"channel": {"type": "string", "enum": ["email", "sms", "whatsapp"]},
		"subject": {"type": "string"},
		"recipient": {
			"type": "object",
			"properties": {
				"name":  {"type": "string"},
				"email": {"type": "string"},
				"phone": {"type": "string"}
			}
		},
		"response": {
			"type": "object",
			"required": ["agent_reply", "whatsapp", "email", "voice_text"],
			"properties": {
				"agent_reply": {"type": "string", "minLength": 1},
				"whatsapp":    {"type": "string", "minLength": 1},
				"email":       {"type": "string", "minLength": 1},
				"voice_text":  {"type": "string", "minLength": 1}
			}
		}
	}
}`)
