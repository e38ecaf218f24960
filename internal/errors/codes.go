package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL
// The storefront maps these codes to user facing messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // login required
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // token expired
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // malformed or badly signed token
	AuthTokenRevoked = "AUTH_TOKEN_REVOKED" // token was revoked

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // no access to this resource
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // cart belongs to another user

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed request body
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // malformed identifier

	// ==================== Cart (CART_) ====================
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"   // no such line item
	CartInvalidQuantity = "CART_INVALID_QUANTITY" // quantity must be >= 1
	CartStockExceeded   = "CART_STOCK_EXCEEDED"   // quantity over available stock
	CartClearFailed     = "CART_CLEAR_FAILED"     // cart clear did not complete

	// ==================== Product (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND" // no such product

	// ==================== Coupon (COUPON_) ====================
	CouponMissingCode = "COUPON_MISSING_CODE" // empty or whitespace code
	CouponInvalid     = "COUPON_INVALID"      // code not in the registry

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // unexpected server error
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // database error
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // upstream service error
)
