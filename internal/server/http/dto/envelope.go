package dto

import "time"

// Envelope wraps every API response.
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// ErrorBody is the machine readable failure of a request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
