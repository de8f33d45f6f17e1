package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	genResp   *genai.GenerateContentResponse
	embedResp *genai.EmbedContentResponse
	err       error

	gotModel string
	gotText  string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotText = contents[0].Parts[0].Text
	return f.genResp, f.err
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.gotModel = model
	f.gotText = contents[0].Parts[0].Text
	return f.embedResp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	m := &fakeModels{genResp: textResponse("  agent_reply: hello \n")}
	p := newProvider(m, Config{})

	out, err := p.Generate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "agent_reply: hello", out)
	assert.Equal(t, DefaultGenerationModel, m.gotModel)
	assert.Equal(t, "prompt text", m.gotText)
}

func TestGenerate_Error(t *testing.T) {
	p := newProvider(&fakeModels{err: errors.New("429 RESOURCE_EXHAUSTED")}, Config{GenerationModel: "gemini-2.0-flash"})
	_, err := p.Generate(context.Background(), "x")
	assert.ErrorContains(t, err, "RESOURCE_EXHAUSTED")
}

func TestEmbed(t *testing.T) {
	m := &fakeModels{embedResp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2, 0.3}}},
	}}
	p := newProvider(m, Config{EmbeddingModel: "custom-embed"})

	vec, err := p.Embed(context.Background(), "term insurance")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "custom-embed", m.gotModel)
}

func TestEmbed_Empty(t *testing.T) {
	p := newProvider(&fakeModels{embedResp: &genai.EmbedContentResponse{}}, Config{})
	_, err := p.Embed(context.Background(), "x")
	assert.Error(t, err)
}
