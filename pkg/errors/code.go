package errors

import (
	stderrors "errors"
	"net/http"
)

// Service codes.
const (
	// ServiceCommon is shared by every service.
	ServiceCommon = 0
	// ServiceExpress identifies errors raised by the HTTP server plugin.
	ServiceExpress = 5
)

// Category codes.
const (
	CategorySuccess     = 0
	CategoryRequest     = 1
	CategoryResource    = 4
	CategoryInternal    = 7
	CategoryUnavailable = 10
)

// MakeCode builds an AABBCCC error code.
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}

// ParseCode splits an error code into service, category and sequence.
func ParseCode(code int) (service, category, sequence int) {
	service = code / 100000
	category = (code % 100000) / 1000
	sequence = code % 1000
	return
}

var (
	// OK represents a successful operation.
	OK = Register(&Errno{
		Code:    MakeCode(ServiceCommon, CategorySuccess, 0),
		HTTP:    http.StatusOK,
		Message: "Success",
	})

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(&Errno{
		Code:    MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP:    http.StatusBadRequest,
		Message: "Bad request",
	})

	// ErrRouteNotFound is returned for requests no sibling registered a route for.
	ErrRouteNotFound = Register(&Errno{
		Code:    MakeCode(ServiceExpress, CategoryResource, 1),
		HTTP:    http.StatusNotFound,
		Message: "Route not found",
	})

	// ErrInternal indicates an unexpected server error.
	ErrInternal = Register(&Errno{
		Code:    MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP:    http.StatusInternalServerError,
		Message: "Internal server error",
	})

	// ErrPanic is returned when a handler panics.
	ErrPanic = Register(&Errno{
		Code:    MakeCode(ServiceExpress, CategoryInternal, 1),
		HTTP:    http.StatusInternalServerError,
		Message: "Internal server error",
	})

	// ErrServiceUnavailable indicates the server is not ready to serve.
	ErrServiceUnavailable = Register(&Errno{
		Code:    MakeCode(ServiceCommon, CategoryUnavailable, 3),
		HTTP:    http.StatusServiceUnavailable,
		Message: "Service unavailable",
	})
)

// As is errors.As from the standard library, re-exported so callers need
// only one errors import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
