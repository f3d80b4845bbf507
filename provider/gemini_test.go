package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruteam/dermai"
)

func testGemini() *Gemini {
	return NewGemini(GeminiConfig{APIKey: "test-key"})
}

func TestBuildRequestRolesAndSystem(t *testing.T) {
	g := testGemini()

	req := g.buildRequest(&dermai.Request{
		SystemPrompt: "persona",
		Messages: []dermai.Message{
			{Role: dermai.RoleUser, Content: "hello"},
			{Role: dermai.RoleAssistant, Content: "hi there"},
		},
	})

	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "persona", req.SystemInstruction.Parts[0].Text)

	require.Len(t, req.Contents, 2)
	assert.Equal(t, "user", req.Contents[0].Role)
	assert.Equal(t, "model", req.Contents[1].Role)
	assert.Equal(t, "hi there", req.Contents[1].Parts[0].Text)
}

func TestBuildRequestInlineImage(t *testing.T) {
	g := testGemini()

	req := g.buildRequest(&dermai.Request{
		Messages: []dermai.Message{
			{
				Role:    dermai.RoleUser,
				Content: "what is this?",
				Image:   &dermai.ImageData{MIMEType: "image/jpeg", Data: "aGVsbG8="},
			},
		},
	})

	require.Len(t, req.Contents, 1)
	parts := req.Contents[0].Parts
	require.Len(t, parts, 2)

	// Image part comes first, then the text part
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	assert.Equal(t, "aGVsbG8=", parts[0].InlineData.Data)
	assert.Equal(t, "what is this?", parts[1].Text)
}

func TestBuildRequestStructuredOutput(t *testing.T) {
	g := testGemini()

	req := g.buildRequest(&dermai.Request{
		Messages:         []dermai.Message{{Role: dermai.RoleUser, Content: "questions"}},
		ResponseMIMEType: "application/json",
		ResponseSchema: &dermai.Schema{
			Type:  dermai.SchemaArray,
			Items: &dermai.Schema{Type: dermai.SchemaString},
		},
	})

	assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
	require.NotNil(t, req.GenerationConfig.ResponseSchema)
	assert.Equal(t, dermai.SchemaArray, req.GenerationConfig.ResponseSchema.Type)
	require.NotNil(t, req.GenerationConfig.ResponseSchema.Items)
	assert.Equal(t, dermai.SchemaString, req.GenerationConfig.ResponseSchema.Items.Type)
}

func TestBuildRequestMapsGrounding(t *testing.T) {
	g := testGemini()

	req := g.buildRequest(&dermai.Request{
		Messages: []dermai.Message{{Role: dermai.RoleUser, Content: "clinics"}},
		Location: &dermai.LatLng{Latitude: 10.76, Longitude: 106.66},
	})

	require.Len(t, req.Tools, 1)
	assert.NotNil(t, req.Tools[0].GoogleMaps)
	require.NotNil(t, req.ToolConfig)
	require.NotNil(t, req.ToolConfig.RetrievalConfig)
	assert.Equal(t, 10.76, req.ToolConfig.RetrievalConfig.LatLng.Latitude)
	assert.Equal(t, 106.66, req.ToolConfig.RetrievalConfig.LatLng.Longitude)
}

func TestBuildRequestNoLocationNoTools(t *testing.T) {
	g := testGemini()

	req := g.buildRequest(&dermai.Request{
		Messages: []dermai.Message{{Role: dermai.RoleUser, Content: "hello"}},
	})

	assert.Empty(t, req.Tools)
	assert.Nil(t, req.ToolConfig)
}

func TestParseResponse(t *testing.T) {
	g := testGemini()

	resp := g.parseResponse(&geminiResponse{
		Candidates: []geminiCandidate{
			{
				Content:      geminiContent{Parts: []geminiPart{{Text: "answer"}}},
				FinishReason: "STOP",
			},
		},
		UsageMetadata: geminiUsage{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}, "gemini-2.5-flash")

	assert.Equal(t, "answer", resp.Content)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, 10, resp.Usage.PromptTokens)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestParseResponseNoCandidates(t *testing.T) {
	g := testGemini()

	resp := g.parseResponse(&geminiResponse{}, "gemini-2.5-flash")
	assert.Empty(t, resp.Content)
}
