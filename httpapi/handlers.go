// Package httpapi exposes the diagnostic workflow as a JSON API for the
// web client.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/medatechnology/simplehttp"

	"github.com/haruteam/dermai"
	"github.com/haruteam/dermai/workflow"
)

// UploadRequest carries the lesion image as base64 plus its MIME type
type UploadRequest struct {
	Image    string `json:"image"`
	MIMEType string `json:"mime_type"`
}

// AnswerRequest records one yes/no reply
type AnswerRequest struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
}

// ChatRequest carries one follow-up chat message
type ChatRequest struct {
	Message string `json:"message"`
}

// ClinicsRequest carries the client's geolocation fix
type ClinicsRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CaseResponse is the full session view the client renders from
type CaseResponse struct {
	Case     workflow.Case          `json:"case"`
	Messages []workflow.ChatMessage `json:"messages"`
}

func caseResponse(w *workflow.Workflow) CaseResponse {
	return CaseResponse{
		Case:     w.Case(),
		Messages: w.Chat().Messages(),
	}
}

// statusFor maps workflow errors onto HTTP statuses. Anything else is an
// upstream failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrUnanswered),
		errors.Is(err, workflow.ErrUnknownQuestion),
		errors.Is(err, workflow.ErrInvalidAnswer):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrBusy),
		errors.Is(err, workflow.ErrChatBusy),
		errors.Is(err, workflow.ErrWrongStep):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func errorJSON(c simplehttp.Context, err error) error {
	return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
}

// CaseHandler returns the current session state
func CaseHandler(w *workflow.Workflow) simplehttp.HandlerFunc {
	return func(c simplehttp.Context) error {
		return c.JSON(http.StatusOK, caseResponse(w))
	}
}

// UploadHandler accepts the image and runs the analysis step
func UploadHandler(w *workflow.Workflow) simplehttp.HandlerFunc {
	return func(c simplehttp.Context) error {
		var req UploadRequest
		if err := c.BindJSON(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid request: " + err.Error(),
			})
		}
		if req.Image == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "image is required",
			})
		}
		mime := req.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}

		err := w.Upload(c.Context(), dermai.ImageData{MIMEType: mime, Data: req.Image})
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, caseResponse(w))
	}
}

// AnswerHandler records one questionnaire answer
func AnswerHandler(w *workflow.Workflow) simplehttp.HandlerFunc {
	return func(c simplehttp.Context) error {
		var req AnswerRequest
		if err := c.BindJSON(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid request: " + err.Error(),
			})
		}

		if err := w.Answer(req.ID, workflow.Answer(req.Answer)); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, caseResponse(w))
	}
}

// SubmitHandler closes the questionnaire and generates the advice
func SubmitHandler(w *workflow.Workflow) simplehttp.HandlerFunc {
	return func(c simplehttp.Context) error {
		if err := w.Submit(c.Context()); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, caseResponse(w))
	}
}

// ResetHandler discards the session and starts over
func ResetHandler(w *workflow.Workflow) simplehttp.HandlerFunc {
	return func(c simplehttp.Context) error {
		w.Reset()
		return c.JSON(http.StatusOK, caseResponse(w))
	}
}

// ExportHandler returns the plain-text report with its download filename
func ExportHandler(w *workflow.Workflow) simplehttp.HandlerFunc {
	return func(c simplehttp.Context) error {
		content, err := w.Export()
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{
			"filename": workflow.ExportFilename,
			"content":  content,
		})
	}
}

// ChatHandler sends one follow-up chat message and returns the reply
func ChatHandler(w *workflow.Workflow) simplehttp.HandlerFunc {
	return func(c simplehttp.Context) error {
		var req ChatRequest
		if err := c.BindJSON(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid request: " + err.Error(),
			})
		}
		if req.Message == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "message is required",
			})
		}

		reply, err := w.SendChat(c.Context(), req.Message)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"reply":    reply,
			"messages": w.Chat().Messages(),
		})
	}
}

// ClinicsHandler runs the nearby-clinic lookup for the given coordinates
func ClinicsHandler(w *workflow.Workflow) simplehttp.HandlerFunc {
	return func(c simplehttp.Context) error {
		var req ClinicsRequest
		if err := c.BindJSON(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid request: " + err.Error(),
			})
		}

		clinics, err := w.FindClinics(c.Context(), req.Latitude, req.Longitude)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"clinics": clinics})
	}
}
