package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Envelope is the wire shape of every JSON response.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// EnvelopeTransformer wraps handler output in an Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if v == nil {
		return v, nil
	}
	if apiErr, ok := v.(*APIError); ok {
		return Envelope{Success: false, Error: apiErr}, nil
	}
	if strings.HasPrefix(status, "2") {
		return Envelope{Success: true, Data: v}, nil
	}
	return v, nil
}
