package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo carries a parsed error code and client-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// Postgres error classes we care about
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ParseError converts a repository/database error into a client-facing
// code and message. Internals (SQL, constraint names) never leak to the
// caller; context is a short hint such as "order" or "product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An unexpected error occurred",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return parseUniqueViolation(pqErr)
		case pgForeignKeyViolation:
			return ErrorInfo{
				Code:    ResourceConflict,
				Message: "The referenced record does not exist or is still in use",
			}
		case pgNotNullViolation:
			return ErrorInfo{
				Code:    ValidationRequired,
				Message: "A required field is missing",
			}
		case pgCheckViolation:
			return ErrorInfo{
				Code:    ValidationInvalidInput,
				Message: "A field value is out of range",
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "The service is temporarily unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "An unexpected error occurred. Please try again later",
	}
}

func parseUniqueViolation(pqErr *pq.Error) ErrorInfo {
	constraint := strings.ToLower(pqErr.Constraint)

	if strings.Contains(constraint, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email address is already registered",
		}
	}
	if strings.Contains(constraint, "sku_code") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A SKU with this code already exists",
		}
	}
	if strings.Contains(constraint, "slug") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This name is already in use",
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "The record already exists",
	}
}

func notFoundMessage(context string) string {
	switch strings.ToLower(context) {
	case "product":
		return "Product not found"
	case "sku":
		return "Product variant not found"
	case "order":
		return "Order not found"
	case "user":
		return "User not found"
	case "category":
		return "Category not found"
	default:
		return "The requested record was not found"
	}
}
