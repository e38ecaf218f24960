package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the persisted cart service. Every call carries the
// caller's context and the bearer token from the configured source.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new cart API client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// Get fetches the persisted cart for a user
func (c *Client) Get(ctx context.Context, userID uint) (*CartResponse, error) {
	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("cart/%d", userID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return decodeCart(body)
}

// Add adds a product to the persisted cart and returns the full
// resulting item list.
func (c *Client) Add(ctx context.Context, userID uint, req AddItemRequest) (*CartResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("cart/%d/add", userID), req)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return decodeCart(body)
}

// Update sets the quantity of a product in the persisted cart
func (c *Client) Update(ctx context.Context, userID uint, req UpdateItemRequest) (*CartResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("cart/%d/update", userID), req)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return decodeCart(body)
}

// Remove deletes a product from the persisted cart
func (c *Client) Remove(ctx context.Context, userID, productID uint) (*CartResponse, error) {
	body, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("cart/%d/remove/%d", userID, productID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return decodeCart(body)
}

// Clear empties the persisted cart
func (c *Client) Clear(ctx context.Context, userID uint) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("cart/%d/clear", userID), nil); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func decodeCart(body []byte) (*CartResponse, error) {
	var cart CartResponse
	if err := json.Unmarshal(body, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart response: %w", err)
	}
	return &cart, nil
}

// doRequest performs an HTTP request against the cart service
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	url := fmt.Sprintf("%s/api/v1/%s", c.config.BaseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.TokenSource != nil {
		if token := c.config.TokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			errResp.Message = string(body)
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			if c.config.OnUnauthorized != nil {
				c.config.OnUnauthorized()
			}
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errResp.Message)
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, errResp.Message)
		default:
			return nil, fmt.Errorf("%w: status %d: %s", ErrRemote, resp.StatusCode, errResp.Message)
		}
	}

	return body, nil
}
