package cartapi

// ItemPayload is one persisted line item as the cart service reports it.
// Subtotal is computed server side and is authoritative.
type ItemPayload struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// CartResponse is the full item list the service returns after every
// read or mutation.
type CartResponse struct {
	Items []ItemPayload `json:"items"`
}

// AddItemRequest is the body for the add endpoint
type AddItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// UpdateItemRequest is the body for the update endpoint
type UpdateItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// ErrorResponse is the error payload returned by the cart service
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
