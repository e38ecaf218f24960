package cartapi

// Config represents the configuration for the cart API client
type Config struct {
	// BaseURL is the cart service base URL
	BaseURL string

	// TokenSource supplies the bearer token attached to every request.
	// Returning an empty string sends the request unauthenticated.
	TokenSource func() string

	// OnUnauthorized is invoked when the service answers 401, so the
	// session holder can drop its expired token. Optional.
	OnUnauthorized func()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
