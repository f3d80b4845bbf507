package dermai

import (
	"context"
)

// Handler is a function that processes a request and returns a response
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a handler to add functionality
type Middleware interface {
	Wrap(next Handler) Handler
}

// MiddlewareFunc is a function that implements Middleware
type MiddlewareFunc func(next Handler) Handler

// Wrap implements the Middleware interface
func (f MiddlewareFunc) Wrap(next Handler) Handler {
	return f(next)
}

// Client is the main entry point for the dermai generative layer
type Client struct {
	provider   Provider
	middleware []Middleware
	config     *ClientConfig
}

// ClientConfig holds client configuration
type ClientConfig struct {
	DefaultModel       string
	DefaultMaxTokens   int
	DefaultTemperature float64
}

// NewClient creates a new client with the given provider
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		middleware: []Middleware{},
		config: &ClientConfig{
			DefaultMaxTokens:   4096,
			DefaultTemperature: 0.7,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete sends a completion request through the middleware chain
func (c *Client) Complete(ctx context.Context, req *Request) (*Response, error) {
	if c.provider == nil {
		return nil, ErrNoProvider
	}

	// Apply defaults if not set
	if req.Model == "" {
		req.Model = c.config.DefaultModel
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.config.DefaultMaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = c.config.DefaultTemperature
	}

	// Build middleware chain
	handler := func(ctx context.Context, req *Request) (*Response, error) {
		return c.provider.Complete(ctx, req)
	}

	// Apply middleware in reverse order
	for i := len(c.middleware) - 1; i >= 0; i-- {
		handler = c.middleware[i].Wrap(handler)
	}

	return handler(ctx, req)
}

// CountTokens estimates token count for the given text
func (c *Client) CountTokens(text string) int {
	if c.provider == nil {
		return 0
	}
	return c.provider.CountTokens(text)
}

// Provider returns the underlying provider
func (c *Client) Provider() Provider {
	return c.provider
}
