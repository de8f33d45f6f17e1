// internal/agent/generator/prompt.go
package generator

import (
	"fmt"
	"strings"
)

// OutputLabels are the section headers the model is asked to emit, in order.
var OutputLabels = []string{"agent_reply", "whatsapp", "email", "voice_text"}

// BuildPrompt renders the single-shot prompt for one query.
func BuildPrompt(in Input) string {
	var parts []string

	parts = append(parts, "You are an AI Insurance Agent Assistant for Indian customers.")
	parts = append(parts, "\nYour job:")
	parts = append(parts, "1. Give real-time suggestions for client queries")
	parts = append(parts, "2. Explain policy benefits, premium breakdown, claim steps")
	parts = append(parts, "3. Auto-create messages for Email, WhatsApp, and SMS")
	parts = append(parts, "4. Keep replies short, clear, and simple")
	parts = append(parts, "5. Use very simple words suitable for Indian customers")
	parts = append(parts, "6. Do not hallucinate - if data is missing, ask for it")

	parts = append(parts, "\nContext from knowledge base:")
	if strings.TrimSpace(in.RAGContext) != "" {
		parts = append(parts, in.RAGContext)
	} else {
		parts = append(parts, "(no matching knowledge base entries)")
	}

	if strings.TrimSpace(in.AdditionalContext) != "" {
		parts = append(parts, "\nDatabase context:")
		parts = append(parts, in.AdditionalContext)
	}

	parts = append(parts, fmt.Sprintf("\nUser Query: %s", in.Query))

	parts = append(parts, "\nIMPORTANT: Generate 4 separate outputs. Each output should be on its own line with the label followed by a colon. Do NOT include brackets or extra formatting.")
	parts = append(parts, "\nFormat exactly like this:")
	parts = append(parts, "\nagent_reply:")
	parts = append(parts, "Your detailed answer for the insurance agent to use")
	parts = append(parts, "\nwhatsapp:")
	parts = append(parts, "Short, friendly WhatsApp message (max 160 chars)")
	parts = append(parts, "\nemail:")
	parts = append(parts, "Professional email content")
	parts = append(parts, "\nvoice_text:")
	parts = append(parts, "Simple text that can be converted to audio")

	parts = append(parts, "\nUse Indian Rupees (₹) for all amounts. Keep language simple and friendly.")

	return strings.Join(parts, "\n")
}
