// Package types holds the JSON envelopes every API response is wrapped in.
package types

// SuccessEnvelope wraps a 2xx payload as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Details is omitted when empty or not allowed for the code.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func NewSuccess(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

func NewError(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
