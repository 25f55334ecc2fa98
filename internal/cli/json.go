package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/pidash/internal/action"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/errors"
)

// JSONEnvelope wraps --json output in the same success/error shape the
// management API uses.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError is a machine-readable failure.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error codes for --json output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeAPIUnreachable = "API_UNREACHABLE"
	ErrCodeAPIError       = "API_ERROR"
	ErrCodeAPIMalformed   = "API_MALFORMED"
	ErrCodeSSHFailed      = "SSH_FAILED"
	ErrCodeActionFailed   = "ACTION_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful envelope around data.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError writes a failed envelope describing err.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON maps err onto a JSONError code.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var pdErr *errors.Error
	if stderrors.As(err, &pdErr) {
		return &JSONError{
			Code:       mapErrorCode(pdErr.Code, pdErr.Message),
			Message:    pdErr.Message,
			Suggestion: pdErr.Suggestion,
		}
	}

	var actErr *action.ActionError
	if stderrors.As(err, &actErr) {
		code := ErrCodeActionFailed
		switch actErr.Kind {
		case action.ErrTransport:
			code = ErrCodeAPIUnreachable
		case action.ErrMalformed:
			code = ErrCodeAPIMalformed
		}
		return &JSONError{Code: code, Message: actErr.Error()}
	}

	switch action.Classify(err) {
	case action.ErrApplication:
		return &JSONError{Code: ErrCodeAPIError, Message: err.Error()}
	case action.ErrMalformed:
		return &JSONError{Code: ErrCodeAPIMalformed, Message: err.Error()}
	}

	var transportErr *api.TransportError
	if stderrors.As(err, &transportErr) {
		return &JSONError{
			Code:       ErrCodeAPIUnreachable,
			Message:    err.Error(),
			Suggestion: "Check the API server is running and api.url points at it",
		}
	}

	return &JSONError{Code: ErrCodeUnknown, Message: err.Error()}
}

// mapErrorCode maps structured error codes onto --json codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		if strings.Contains(strings.ToLower(message), "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrSSH:
		return ErrCodeSSHFailed
	case errors.ErrAPI, errors.ErrNetwork:
		return ErrCodeAPIUnreachable
	case errors.ErrAction:
		return ErrCodeActionFailed
	}
	return ErrCodeUnknown
}
