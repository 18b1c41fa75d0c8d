package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: a stable code plus a message safe to surface.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a raw error into a user-safe code and message.
// Database internals never leak to the caller; the message only carries
// what a client can act on.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Postgres constraint violations.

	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		if strings.Contains(errStrLower, "trending_dishes") || strings.Contains(errStrLower, "restaurant_id") {
			return ErrorInfo{
				Code:    DishAlreadyExists,
				Message: "A trending dish already exists for this restaurant",
			}
		}
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This record already exists",
		}
	}

	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "Referenced record does not exist",
		}
	}

	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// Network / upstream failures.
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An upstream service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func getNotFoundMessage(context string) string {
	switch {
	case strings.Contains(context, "restaurant"):
		return "Restaurant not found"
	case strings.Contains(context, "dish"):
		return "Dish not found"
	default:
		return "Resource not found"
	}
}

func getDefaultErrorMessage(context string) string {
	switch {
	case strings.Contains(context, "restaurant"):
		return "Failed to load restaurant data"
	case strings.Contains(context, "trending"):
		return "Failed to update trending data"
	default:
		return "Something went wrong. Please try again later"
	}
}
