package cartapi

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid cart api config")

	// ErrNetworkError is returned when the request could not be delivered
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the session token is missing or expired
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the cart or product does not exist remotely
	ErrNotFound = errors.New("not found")

	// ErrRemote is returned for any other non-2xx response
	ErrRemote = errors.New("cart service error")
)
