package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentQuerySchema(t *testing.T) {
	tests := []struct {
		name  string
		doc   interface{}
		valid bool
		field string
	}{
		{"query only", map[string]interface{}{"query": "term insurance?"}, true, ""},
		{"with context", `{"query": "premium", "context": {"policyType": "term", "age": 32, "termYears": "20"}}`, true, ""},
		{"missing query", map[string]interface{}{"context": map[string]interface{}{}}, false, "(root)"},
		{"blank query", map[string]interface{}{"query": "   "}, false, "query"},
		{"wrong type", []byte(`{"query": 42}`), false, "query"},
		{"bad context", map[string]interface{}{"query": "x", "context": "nope"}, false, "context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := AgentQuerySchema.Validate(tt.doc)
			assert.Equal(t, tt.valid, res.Valid, res.GetErrorMessages())
			if tt.field != "" {
				assert.True(t, res.HasErrors(tt.field), res.GetErrorMessages())
			}
		})
	}
}

func TestSendMessageSchema(t *testing.T) {
	valid := map[string]interface{}{
		"channel":   "email",
		"recipient": map[string]interface{}{"email": "a@example.com"},
		"response": map[string]interface{}{
			"agent_reply": "a", "whatsapp": "w", "email": "e", "voice_text": "v",
		},
	}
	assert.True(t, SendMessageSchema.Validate(valid).Valid)

	valid["channel"] = "fax"
	res := SendMessageSchema.Validate(valid)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("channel"))
}

func TestValidate_MalformedJSON(t *testing.T) {
	res := ComplianceCheckSchema.Validate([]byte(`{"text":`))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "INVALID_DOCUMENT", res.Errors[0].Code)
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`not json`) })
}

func TestValidateContact(t *testing.T) {
	assert.True(t, ValidateEmail("ravi.k@example.in"))
	assert.False(t, ValidateEmail("ravi@"))
	assert.True(t, ValidatePhone("+91 98765 43210"))
	assert.False(t, ValidatePhone("12345"))
}
