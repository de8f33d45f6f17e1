package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/models"
)

type fakeModel struct {
	reply   string
	err     error
	panics  bool
	prompts []string
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.panics {
		panic("sdk bug")
	}
	return f.reply, f.err
}

func input(intent models.IntentType, rag string) Input {
	return Input{
		Query:      "What is term insurance?",
		RAGContext: rag,
		Intent:     models.Intent{Type: intent},
	}
}

// ==========================
// Prompt
// ==========================

func TestBuildPrompt_Contents(t *testing.T) {
	prompt := BuildPrompt(Input{
		Query:             "Find Rajesh Kumar",
		RAGContext:        "Term insurance pays the sum assured on death.",
		AdditionalContext: `Search Results for "Rajesh Kumar":`,
	})

	assert.True(t, strings.HasPrefix(prompt, "You are an AI Insurance Agent Assistant for Indian customers."))
	assert.Contains(t, prompt, "Do not hallucinate - if data is missing, ask for it")
	assert.Contains(t, prompt, "₹")
	assert.Contains(t, prompt, "Term insurance pays the sum assured on death.")
	assert.Contains(t, prompt, `Search Results for "Rajesh Kumar":`)
	assert.Contains(t, prompt, "User Query: Find Rajesh Kumar")
	for _, label := range OutputLabels {
		assert.Contains(t, prompt, "\n"+label+":\n")
	}
	assert.NotContains(t, prompt, "[agent_reply]")
}

func TestBuildPrompt_NoContext(t *testing.T) {
	prompt := BuildPrompt(Input{Query: "hello"})
	assert.Contains(t, prompt, "(no matching knowledge base entries)")
	assert.NotContains(t, prompt, "Database context:")
}

// ==========================
// Generate
// ==========================

func TestGenerate_ModelReply(t *testing.T) {
	model := &fakeModel{reply: "agent_reply:\nhello"}
	g := New(model, WithLogger(logger.NewTestLogger(t)))

	out := g.Generate(context.Background(), input(models.IntentGeneral, ""))

	assert.Equal(t, "agent_reply:\nhello", out)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "User Query: What is term insurance?")
}

func TestGenerate_FallbackNoRetry(t *testing.T) {
	model := &fakeModel{err: errors.New("429 quota exceeded")}
	g := New(model, WithLogger(logger.NewTestLogger(t)))

	out := g.Generate(context.Background(), input(models.IntentGeneral, "Term plans are cheap."))

	assert.Len(t, model.prompts, 1)
	assert.Equal(t, "Based on our knowledge base:\n\nTerm plans are cheap.\n\nFor more specific information, please contact our team.", out)
}

func TestGenerate_FallbackPerIntent(t *testing.T) {
	tests := []struct {
		intent models.IntentType
		want   string
	}{
		{models.IntentReport, "📊 Cross-Sell Report"},
		{models.IntentCrossSell, "Priority ranking for outreach"},
		{models.IntentPolicyInfo, "We offer Term Life, ULIP, Health Insurance"},
		{models.IntentPremiumCalc, "To calculate your premium, I'll need:"},
		{models.IntentClaimProcess, "Claim Process:\n1. Inform insurer immediately"},
		{models.IntentPersonSearch, "Thank you for your query. I'm here to help with:"},
		{models.IntentGeneral, "Please ask me about any specific insurance topic."},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			g := New(&fakeModel{err: errors.New("down")})
			out := g.Generate(context.Background(), input(tt.intent, ""))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestGenerate_EmptyReplyIsFailure(t *testing.T) {
	g := New(&fakeModel{reply: "   \n"})
	out := g.Generate(context.Background(), input(models.IntentClaimProcess, ""))
	assert.Equal(t, claimFallback, out)
}

func TestGenerate_PanicRecovered(t *testing.T) {
	g := New(&fakeModel{panics: true})
	var out string
	require.NotPanics(t, func() {
		out = g.Generate(context.Background(), input(models.IntentPolicyInfo, ""))
	})
	assert.Equal(t, policyInfoFallback, out)
}

func TestGenerate_NilModel(t *testing.T) {
	out := New(nil).Generate(context.Background(), input(models.IntentGeneral, ""))
	assert.Equal(t, generalFallback, out)
}

func TestGenerate_LimiterFailure(t *testing.T) {
	model := &fakeModel{reply: "agent_reply: hi"}
	// A zero burst rejects every Wait.
	g := New(model, WithLimiter(rate.NewLimiter(rate.Limit(1), 0)))

	out := g.Generate(context.Background(), input(models.IntentPremiumCalc, ""))

	assert.Empty(t, model.prompts)
	assert.Equal(t, premiumFallback, out)
}

func TestGenerate_LimiterAllows(t *testing.T) {
	model := &fakeModel{reply: "agent_reply: hi"}
	g := New(model, WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	assert.Equal(t, "agent_reply: hi", g.Generate(context.Background(), input(models.IntentGeneral, "")))
}
