package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorCode represents a typed error code for client libraries
type ErrorCode string

const (
	// Validation errors (400)
	ErrorCodeInvalidParameter   ErrorCode = "INVALID_PARAMETER"
	ErrorCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"
	ErrorCodeQueryRejected      ErrorCode = "QUERY_REJECTED"
	ErrorCodeUnsupportedFormat  ErrorCode = "UNSUPPORTED_FORMAT"

	// Not found errors (404)
	ErrorCodeEntityNotFound ErrorCode = "ENTITY_NOT_FOUND"
	ErrorCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// Backend errors (500/503)
	ErrorCodeBackendUnavailable   ErrorCode = "BACKEND_UNAVAILABLE"
	ErrorCodeIndexSyncFailed      ErrorCode = "INDEX_SYNC_FAILED"
	ErrorCodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	ErrorCodeUnsafeWriteBack      ErrorCode = "UNSAFE_WRITE_BACK"
	ErrorCodeUUIDGenerationFailed ErrorCode = "UUID_GENERATION_FAILED"
	ErrorCodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Error helper functions

func BadRequest(c *fiber.Ctx, code ErrorCode, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func BadRequestWithDetails(c *fiber.Ctx, code ErrorCode, message, details string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

func NotFound(c *fiber.Ctx, code ErrorCode, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func ServiceUnavailable(c *fiber.Ctx, code ErrorCode, message string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func InternalError(c *fiber.Ctx, code ErrorCode, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Code:    code,
		Message: message,
	})
}
