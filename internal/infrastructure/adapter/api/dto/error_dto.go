package dto

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewErrorResponse builds a failed response body
func NewErrorResponse(code int, message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message, Code: code}
}

// Response is the envelope of every successful call
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK builds a successful response body
func OK(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}
