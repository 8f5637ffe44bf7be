package api

import (
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the "v" field of every response body.
const EnvelopeVersion = 1

// Envelope wraps a successful response.
type Envelope struct {
	Version int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope wraps a failed response. Error is a flat human-readable
// string; Code is the machine-readable counterpart.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse is the body of operations that only report what happened.
type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable summary of what happened"`
}

// MessageOutput wraps a message-only response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func message(text string) *MessageOutput {
	return &MessageOutput{Body: MessageResponse{Message: text}}
}

// EnvelopeTransformer is a huma transformer that wraps every body, success
// or error, in the versioned envelope.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case Envelope, *Envelope, ErrorEnvelope, *ErrorEnvelope:
		return v, nil
	case error:
		return newErrorEnvelope(toAPIError(body)), nil
	default:
		return Envelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
	}
}

func newErrorEnvelope(err *APIError) ErrorEnvelope {
	return ErrorEnvelope{
		Version: EnvelopeVersion,
		Success: false,
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	}
}

// writeError writes an error envelope outside of huma, for plain net/http routes.
func writeError(w http.ResponseWriter, err error) {
	apiErr := toAPIError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.GetStatus())
	_ = json.NewEncoder(w).Encode(newErrorEnvelope(apiErr))
}
