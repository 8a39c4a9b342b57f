package api

import (
	"time"

	"github.com/labstack/echo/v4"
)

// APIResponse is the standard response envelope for every endpoint.
type APIResponse struct {
	Data  interface{}    `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
	Meta  ResponseMeta   `json:"meta"`
}

// ErrorResponse contains error details.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

func meta() ResponseMeta {
	return ResponseMeta{Timestamp: time.Now().UTC(), Version: "1.0"}
}

// SuccessResponse writes a successful APIResponse with the given
// status code.
func SuccessResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, &APIResponse{Data: data, Meta: meta()})
}

// ErrorResponseWithCode writes an error APIResponse with the given
// status code and diagnostic code (internal/validation.KnownCodes).
func ErrorResponseWithCode(c echo.Context, status int, code, message string) error {
	return c.JSON(status, &APIResponse{
		Error: &ErrorResponse{Code: code, Message: message},
		Meta:  meta(),
	})
}

// ErrorResponse writes a plain error APIResponse (no diagnostic code),
// for request-binding failures that don't map to a KnownCodes entry.
func ErrorResponse(c echo.Context, status int, message string) error {
	return ErrorResponseWithCode(c, status, "", message)
}
