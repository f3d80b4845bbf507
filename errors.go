package dermai

import "errors"

// Common errors
var (
	ErrNoProvider      = errors.New("dermai: no provider configured")
	ErrEmptyAPIKey     = errors.New("dermai: API key is required")
	ErrEmptyMessage    = errors.New("dermai: message cannot be empty")
	ErrInvalidResponse = errors.New("dermai: invalid response from provider")
)

// ProviderError represents an error from an AI provider
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Type       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error
func NewProviderError(provider string, statusCode int, message, errType string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Type:       errType,
	}
}
