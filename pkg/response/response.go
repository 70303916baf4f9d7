// Package response writes the unified JSON envelope used by framework-level
// handlers (404, panic recovery, readiness).
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/express-plugin/pkg/errors"
)

// Response is the unified API response structure.
type Response struct {
	// Code is the business error code (0 = success).
	Code int `json:"code"`

	// Message is a human-readable message.
	Message string `json:"message"`

	// Data contains the response payload (nil for errors).
	Data interface{} `json:"data,omitempty"`

	// RequestID is the request identifier, when one was assigned.
	RequestID string `json:"request_id,omitempty"`
}

// RequestIDKey is the gin context key under which the request ID is stored.
const RequestIDKey = "request_id"

// OK writes a 200 response carrying data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Code:      errors.OK.Code,
		Message:   errors.OK.Message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Fail writes the error envelope for e with its HTTP status and aborts the chain.
func Fail(c *gin.Context, e *errors.Errno) {
	c.AbortWithStatusJSON(e.HTTPStatus(), &Response{
		Code:      e.Code,
		Message:   e.Message,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Error converts err with errors.FromError and writes it with Fail.
func Error(c *gin.Context, err error) {
	Fail(c, errors.FromError(err))
}
