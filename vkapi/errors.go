package vkapi

import (
	"errors"
	"fmt"
)

// Error codes returned by the API that the suite cares about.
const (
	CodeUnknown          = 1
	CodeAuthFailed       = 5
	CodeTooManyRequests  = 6
	CodePermissionDenied = 7
	CodeInternal         = 10
	CodeAccessDenied     = 15
	CodeUserDeleted      = 18
	CodePrivateProfile   = 30
	CodeParam            = 100
	CodeInvalidUserID    = 113
)

// Category is the classification of a failed API call.
type Category string

const (
	CategoryUnknown         Category = "unknown"
	CategoryAuth            Category = "auth"
	CategoryTooManyRequests Category = "too many requests"
	CategoryAccess          Category = "access"
	CategoryInternal        Category = "internal"
	CategoryUserDeleted     Category = "user deleted"
	CategoryPrivateProfile  Category = "private profile"
	CategoryParam           Category = "param"
)

// Classify maps an API error code to its Category.
func Classify(code int) Category {
	switch code {
	case CodeAuthFailed:
		return CategoryAuth
	case CodeTooManyRequests:
		return CategoryTooManyRequests
	case CodePermissionDenied, CodeAccessDenied:
		return CategoryAccess
	case CodeInternal:
		return CategoryInternal
	case CodeUserDeleted:
		return CategoryUserDeleted
	case CodePrivateProfile:
		return CategoryPrivateProfile
	case CodeParam, CodeInvalidUserID:
		return CategoryParam
	default:
		return CategoryUnknown
	}
}

// Error is a failure reported by the API itself, as opposed to a transport failure.
type Error struct {
	Method   string
	Code     int
	Message  string
	Category Category
}

func newError(method string, code int, message string) *Error {
	return &Error{
		Method:   method,
		Code:     code,
		Message:  message,
		Category: Classify(code),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed with %s error %d: %s", e.Method, e.Category, e.Code, e.Message)
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
