package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error code/message pair
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps low level errors to response codes without leaking
// driver details to the client.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: "Requested data was not found"}
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "Conflicting data, please retry"}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Upstream service is unavailable, please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Something went wrong, please try again later"}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	if strings.Contains(contextLower, "product") {
		return ProductNotFound
	}
	if strings.Contains(contextLower, "cart") {
		return CartItemNotFound
	}
	return InternalServerError
}
