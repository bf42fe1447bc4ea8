package models

// APIResponse is the envelope for every API reply.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// OK builds a success envelope.
func OK(data any, message string) APIResponse {
	return APIResponse{Success: true, Data: data, Message: message}
}

// Fail builds an error envelope.
func Fail(code, message string) APIResponse {
	return APIResponse{Success: false, Error: &ErrorDetail{Code: code, Message: message}}
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	BrowserState string `json:"browserState"`
	Version      string `json:"version"`
}
