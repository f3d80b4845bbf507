package dermai

import (
	"context"
)

// Role represents the role of a message sender
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ImageData is an inline image payload: base64-encoded bytes plus MIME type.
// No data-URL prefix.
type ImageData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Message represents a single message in a conversation.
// When Image is set the provider sends it as an inline part ahead of the text.
type Message struct {
	Role    Role       `json:"role"`
	Content string     `json:"content"`
	Image   *ImageData `json:"image,omitempty"`
}

// Schema describes a structured-output response schema. Only the subset
// needed for array-of-strings responses is modeled.
type Schema struct {
	Type  string  `json:"type"`
	Items *Schema `json:"items,omitempty"`
}

// Schema types understood by providers
const (
	SchemaArray  = "ARRAY"
	SchemaString = "STRING"
)

// LatLng is a geographic coordinate for geo-grounded requests
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// QA is one answered yes/no question from the symptom questionnaire
type QA struct {
	Question string `json:"question"`
	Yes      bool   `json:"yes"`
}

// Request represents a completion request to an AI provider
type Request struct {
	Messages     []Message `json:"messages"`
	Model        string    `json:"model,omitempty"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
	Temperature  float64   `json:"temperature,omitempty"`
	TopP         float64   `json:"top_p,omitempty"`
	Stop         []string  `json:"stop,omitempty"`
	SystemPrompt string    `json:"system_prompt,omitempty"`

	// ResponseMIMEType and ResponseSchema request structured output,
	// e.g. "application/json" with an array-of-strings schema.
	ResponseMIMEType string  `json:"response_mime_type,omitempty"`
	ResponseSchema   *Schema `json:"response_schema,omitempty"`

	// Location enables the provider's maps-grounding tool around this point
	Location *LatLng `json:"location,omitempty"`
}

// Response represents a completion response from an AI provider
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider defines the interface for AI providers
type Provider interface {
	// Complete sends a completion request and returns the response
	Complete(ctx context.Context, req *Request) (*Response, error)

	// CountTokens estimates the token count for the given text
	CountTokens(text string) int

	// Name returns the provider name
	Name() string
}
