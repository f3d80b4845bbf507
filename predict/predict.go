// Package predict wraps the image-classification backend. The classifier is
// the single source of truth for the condition label: every downstream
// advisory call treats its result as fixed and never re-derives it.
package predict

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/haruteam/dermai"
)

const (
	// DefaultEndpoint is the classification backend's predict route
	DefaultEndpoint = "http://localhost:8000/predict"

	// UnknownLabel is returned when the backend response carries no label
	UnknownLabel = "Không xác định"
)

// Classifier produces a condition label for a lesion image.
// A failed attempt is reported once; there are no retries.
type Classifier interface {
	Classify(ctx context.Context, image dermai.ImageData) (string, error)
}

// ServerError is a non-2xx reply from the classification backend
type ServerError struct {
	StatusCode int
	Status     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("predict: backend returned %s", e.Status)
}

// HTTPClassifier sends the image as a multipart upload to the backend
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClassifier creates a classifier against the given predict endpoint
func NewHTTPClassifier(endpoint string) *HTTPClassifier {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPClassifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// predictResponse mirrors the backend's JSON body. The label lives in
// "disease" with "prediction" as the alternate key.
type predictResponse struct {
	Disease    string  `json:"disease"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// Classify uploads the image and returns the predicted label
func (c *HTTPClassifier) Classify(ctx context.Context, image dermai.ImageData) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(image.Data)
	if err != nil {
		return "", fmt.Errorf("predict: invalid image payload: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "upload.png")
	if err != nil {
		return "", fmt.Errorf("predict: build upload: %w", err)
	}
	if _, err := part.Write(raw); err != nil {
		return "", fmt.Errorf("predict: build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("predict: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("predict: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("predict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", &ServerError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("predict: decode response: %w", err)
	}

	label := out.Disease
	if label == "" {
		label = out.Prediction
	}
	if label == "" {
		label = UnknownLabel
	}
	return label, nil
}
