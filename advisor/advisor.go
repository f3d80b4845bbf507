// Package advisor wraps the generative-language service behind the four
// advisory operations of the diagnostic flow: follow-up questions, advice,
// open-ended chat and nearby-clinic lookup. All operations are stateless
// request/response wrappers sharing one fixed persona.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medatechnology/goutil/simplelog"

	"github.com/haruteam/dermai"
	"github.com/haruteam/dermai/template"
)

// Advisor issues advisory requests through a dermai client
type Advisor struct {
	client *dermai.Client
	tmpl   *template.Engine
}

// New creates an advisor. The prompt templates are constants, so a parse
// failure is a programming error and panics.
func New(client *dermai.Client) *Advisor {
	tmpl := template.NewEngine()
	for name, content := range promptTemplates {
		if err := tmpl.Load(name, content); err != nil {
			panic(err)
		}
	}
	return &Advisor{
		client: client,
		tmpl:   tmpl,
	}
}

// GenerateQuestions asks for 3-4 clinically relevant yes/no questions for
// the fixed prediction. Any failure, including an unparseable response,
// degrades to the fixed fallback list; the caller never sees an error or
// an empty result.
func (a *Advisor) GenerateQuestions(ctx context.Context, image dermai.ImageData, label string) []string {
	prompt, err := a.tmpl.Execute("questions", map[string]any{"Prediction": label})
	if err != nil {
		simplelog.LogErr(err, "question prompt failed, using fallback")
		return fallbackQuestions()
	}

	resp, err := a.client.Complete(ctx, &dermai.Request{
		SystemPrompt: SystemInstruction,
		Messages: []dermai.Message{
			{Role: dermai.RoleUser, Content: prompt, Image: &image},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &dermai.Schema{
			Type:  dermai.SchemaArray,
			Items: &dermai.Schema{Type: dermai.SchemaString},
		},
	})
	if err != nil {
		simplelog.LogErr(err, "question generation failed, using fallback")
		return fallbackQuestions()
	}

	var questions []string
	if err := json.Unmarshal([]byte(stripJSONFences(resp.Content)), &questions); err != nil || len(questions) == 0 {
		simplelog.LogInfoStr("Advisor", 1, "unparseable question response, using fallback")
		return fallbackQuestions()
	}

	return questions
}

// GenerateAdvice produces the markdown advisory text for the fixed
// prediction and the answered questionnaire. An empty response is replaced
// by a fixed apology; a failed call propagates to the caller.
func (a *Advisor) GenerateAdvice(ctx context.Context, image dermai.ImageData, label string, qa []dermai.QA) (string, error) {
	prompt, err := a.tmpl.Execute("advice", map[string]any{
		"Prediction": label,
		"QA":         qa,
	})
	if err != nil {
		return "", fmt.Errorf("advisor: advice prompt: %w", err)
	}

	resp, err := a.client.Complete(ctx, &dermai.Request{
		SystemPrompt: SystemInstruction,
		Messages: []dermai.Message{
			{Role: dermai.RoleUser, Content: prompt, Image: &image},
		},
	})
	if err != nil {
		return "", fmt.Errorf("advisor: advice generation: %w", err)
	}

	if resp.Content == "" {
		return adviceApology, nil
	}
	return resp.Content, nil
}

// Chat answers a follow-up message. When both image and label are present
// a two-turn grounding preamble is prepended so every turn stays anchored
// to the original diagnosis; the preamble is rebuilt per request and never
// enters the stored history.
func (a *Advisor) Chat(ctx context.Context, history []dermai.Message, message string, image *dermai.ImageData, label string) (string, error) {
	messages := make([]dermai.Message, 0, len(history)+3)

	if image != nil && label != "" {
		contextPrompt, err := a.tmpl.Execute("chat_context", map[string]any{"Prediction": label})
		if err != nil {
			return "", fmt.Errorf("advisor: chat prompt: %w", err)
		}
		messages = append(messages,
			dermai.Message{Role: dermai.RoleUser, Content: contextPrompt, Image: image},
			dermai.Message{Role: dermai.RoleAssistant, Content: acknowledgment},
		)
	}

	messages = append(messages, history...)
	messages = append(messages, dermai.Message{Role: dermai.RoleUser, Content: message})

	resp, err := a.client.Complete(ctx, &dermai.Request{
		SystemPrompt: SystemInstruction,
		Messages:     messages,
	})
	if err != nil {
		return "", fmt.Errorf("advisor: chat: %w", err)
	}

	if resp.Content == "" {
		return chatFallback, nil
	}
	return resp.Content, nil
}

// FindClinics asks for 3 nearby dermatology clinics as a markdown list,
// grounded on the given coordinates
func (a *Advisor) FindClinics(ctx context.Context, lat, lng float64) (string, error) {
	resp, err := a.client.Complete(ctx, &dermai.Request{
		Messages: []dermai.Message{
			{Role: dermai.RoleUser, Content: clinicsPrompt},
		},
		Location: &dermai.LatLng{Latitude: lat, Longitude: lng},
	})
	if err != nil {
		return "", fmt.Errorf("advisor: clinic lookup: %w", err)
	}

	if resp.Content == "" {
		return clinicsFallback, nil
	}
	return resp.Content, nil
}

// fallbackQuestions returns a fresh copy so callers can mutate freely
func fallbackQuestions() []string {
	out := make([]string, len(FallbackQuestions))
	copy(out, FallbackQuestions)
	return out
}

// stripJSONFences removes markdown code fences some models wrap around
// structured output
func stripJSONFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
