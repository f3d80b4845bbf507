package provider

import (
	"context"
	"fmt"

	medahttp "github.com/medatechnology/goutil/http"
	"github.com/medatechnology/goutil/utils"

	"github.com/haruteam/dermai"
)

const (
	GeminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	GeminiDefaultModel   = "gemini-2.5-flash"
)

// GeminiConfig holds configuration for the Gemini provider
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Gemini implements the Provider interface for Google's Gemini
type Gemini struct {
	config GeminiConfig
	client medahttp.HttpClient
}

// NewGemini creates a new Gemini provider
func NewGemini(config GeminiConfig) *Gemini {
	if config.BaseURL == "" {
		config.BaseURL = GeminiDefaultBaseURL
	}
	if config.Model == "" {
		config.Model = GeminiDefaultModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}

	client := medahttp.NewHttp()
	client.SetHeader(map[string][]string{
		"Content-Type": {"application/json"},
	})

	return &Gemini{
		config: config,
		client: client,
	}
}

// NewGeminiFromEnv creates a Gemini provider from environment variables
// Environment variables: GEMINI_API_KEY, GEMINI_MODEL (optional)
func NewGeminiFromEnv() *Gemini {
	return NewGemini(GeminiConfig{
		APIKey: utils.GetEnvString("GEMINI_API_KEY", ""),
		Model:  utils.GetEnvString("GEMINI_MODEL", GeminiDefaultModel),
	})
}

// Name returns the provider name
func (g *Gemini) Name() string {
	return "gemini"
}

// Complete sends a completion request to Gemini
func (g *Gemini) Complete(ctx context.Context, req *dermai.Request) (*dermai.Response, error) {
	geminiReq := g.buildRequest(req)

	model := req.Model
	if model == "" {
		model = g.config.Model
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.config.BaseURL, model, g.config.APIKey)

	var geminiResp geminiResponse
	statusCode, err := g.client.Post(url, geminiReq, &geminiResp, nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if statusCode != 200 {
		return nil, dermai.NewProviderError(
			"gemini",
			int(statusCode),
			"request failed",
			"http_error",
		)
	}

	return g.parseResponse(&geminiResp, model), nil
}

// CountTokens estimates token count
func (g *Gemini) CountTokens(text string) int {
	return len(text) / 4
}

// Internal types for the Gemini generateContent API
type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenConfig   `json:"generationConfig,omitempty"`
	Tools             []geminiTool      `json:"tools,omitempty"`
	ToolConfig        *geminiToolConfig `json:"toolConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	MaxOutputTokens  int           `json:"maxOutputTokens,omitempty"`
	Temperature      float64       `json:"temperature,omitempty"`
	TopP             float64       `json:"topP,omitempty"`
	StopSequences    []string      `json:"stopSequences,omitempty"`
	ResponseMimeType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiSchema struct {
	Type  string        `json:"type"`
	Items *geminiSchema `json:"items,omitempty"`
}

type geminiTool struct {
	GoogleMaps *geminiGoogleMaps `json:"googleMaps,omitempty"`
}

type geminiGoogleMaps struct{}

type geminiToolConfig struct {
	RetrievalConfig *geminiRetrievalConfig `json:"retrievalConfig,omitempty"`
}

type geminiRetrievalConfig struct {
	LatLng geminiLatLng `json:"latLng"`
}

type geminiLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content       geminiContent `json:"content"`
	FinishReason  string        `json:"finishReason"`
	SafetyRatings []interface{} `json:"safetyRatings"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

func (g *Gemini) buildRequest(req *dermai.Request) *geminiRequest {
	contents := make([]geminiContent, 0, len(req.Messages))
	var systemContent *geminiContent

	for _, msg := range req.Messages {
		if msg.Role == dermai.RoleSystem {
			systemContent = &geminiContent{
				Parts: []geminiPart{{Text: msg.Content}},
			}
			continue
		}

		role := "user"
		if msg.Role == dermai.RoleAssistant {
			role = "model"
		}

		// Inline image data goes ahead of the text part
		parts := make([]geminiPart, 0, 2)
		if msg.Image != nil {
			parts = append(parts, geminiPart{
				InlineData: &geminiInlineData{
					MimeType: msg.Image.MIMEType,
					Data:     msg.Image.Data,
				},
			})
		}
		if msg.Content != "" || msg.Image == nil {
			parts = append(parts, geminiPart{Text: msg.Content})
		}

		contents = append(contents, geminiContent{
			Role:  role,
			Parts: parts,
		})
	}

	if req.SystemPrompt != "" {
		systemContent = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}

	temp := req.Temperature
	if temp == 0 {
		temp = g.config.Temperature
	}

	out := &geminiRequest{
		Contents:          contents,
		SystemInstruction: systemContent,
		GenerationConfig: geminiGenConfig{
			MaxOutputTokens:  maxTokens,
			Temperature:      temp,
			TopP:             req.TopP,
			StopSequences:    req.Stop,
			ResponseMimeType: req.ResponseMIMEType,
			ResponseSchema:   toGeminiSchema(req.ResponseSchema),
		},
	}

	if req.Location != nil {
		out.Tools = []geminiTool{{GoogleMaps: &geminiGoogleMaps{}}}
		out.ToolConfig = &geminiToolConfig{
			RetrievalConfig: &geminiRetrievalConfig{
				LatLng: geminiLatLng{
					Latitude:  req.Location.Latitude,
					Longitude: req.Location.Longitude,
				},
			},
		}
	}

	return out
}

func toGeminiSchema(s *dermai.Schema) *geminiSchema {
	if s == nil {
		return nil
	}
	return &geminiSchema{
		Type:  s.Type,
		Items: toGeminiSchema(s.Items),
	}
}

func (g *Gemini) parseResponse(resp *geminiResponse, model string) *dermai.Response {
	var content string
	var finishReason string

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		finishReason = candidate.FinishReason
		if len(candidate.Content.Parts) > 0 {
			content = candidate.Content.Parts[0].Text
		}
	}

	return &dermai.Response{
		Content:      content,
		Model:        model,
		FinishReason: finishReason,
		Usage: dermai.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}
}
