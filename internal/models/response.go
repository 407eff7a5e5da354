package models

// Error codes used in the response envelope
const (
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeInternal     = "INTERNAL_ERROR"
)

// APIResponse is the envelope every endpoint responds with.
// Error is either an ErrorBody or a plain string.
type APIResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// ErrorBody is the structured form of APIResponse.Error
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageData is the payload of responses that only confirm an action
type MessageData struct {
	Message string `json:"message"`
}

// OK wraps data in a successful envelope
func OK(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// Fail wraps a structured error in a failed envelope
func Fail(code, message string) APIResponse {
	return APIResponse{Success: false, Error: ErrorBody{Code: code, Message: message}}
}

// FailMessage wraps a plain message in a failed envelope
func FailMessage(message string) APIResponse {
	return APIResponse{Success: false, Error: message}
}
