package dto

import "time"

// ErrorResponse is the JSON error envelope returned by every endpoint.
//
// Fields:
//   - Message: human-readable description of what went wrong.
//   - Code: machine-readable discriminator (e.g. "invalid_parameter",
//     "session_expired"). Optional; clients branch on it when present.
//   - ErrorDetails: underlying error text, when one exists.
//   - Timestamp: when the error response was built.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Message      string    `json:"message" example:"year is required"`
	Code         string    `json:"code,omitempty" example:"invalid_parameter"`
	ErrorDetails string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface so an ErrorResponse can travel
// through gin's error list.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails != "" {
		return e.Message + ": " + e.ErrorDetails
	}
	return e.Message
}

// NewErrorResponse builds an ErrorResponse from a message and an optional
// inner error.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

// NewErrorResponseWithCode builds an ErrorResponse carrying a
// machine-readable code.
func NewErrorResponseWithCode(code, message string, err error) ErrorResponse {
	resp := NewErrorResponse(message, err)
	resp.Code = code
	return resp
}
