// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

// Envelope is the response shape shared by every transport:
// {"success": true, "data": ...} or {"success": false, "error": "..."}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success wraps data in a successful envelope.
func Success(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Failure wraps err in a failed envelope.
func Failure(err error) Envelope {
	return Envelope{Error: err.Error()}
}

// NewEnvelope builds a Failure when err is set and a Success otherwise.
func NewEnvelope(data any, err error) Envelope {
	if err != nil {
		return Failure(err)
	}
	return Success(data)
}
