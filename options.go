package dermai

// Option is a functional option for configuring the Client
type Option func(*Client)

// WithMiddleware adds middleware to the client
func WithMiddleware(m Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, m)
	}
}

// WithDefaultModel sets the default model
func WithDefaultModel(model string) Option {
	return func(c *Client) {
		c.config.DefaultModel = model
	}
}

// WithDefaultMaxTokens sets the default max tokens
func WithDefaultMaxTokens(n int) Option {
	return func(c *Client) {
		c.config.DefaultMaxTokens = n
	}
}

// WithDefaultTemperature sets the default temperature
func WithDefaultTemperature(t float64) Option {
	return func(c *Client) {
		c.config.DefaultTemperature = t
	}
}
