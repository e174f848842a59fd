// Package types holds the JSON envelopes shared by the admin and checkout APIs.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a failed request. Details only carries
// validation payloads such as field or price violations.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope echoes the request id so operators can find the log line.
type ErrorEnvelope struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}
