package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the LMS API.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// errorEnvelope matches the error body emitted by the exstem response package.
// Some endpoints answer {"mensaje": "..."} or {"error": "..."} instead.
type errorEnvelope struct {
	Error    json.RawMessage `json:"error"`
	Message  string          `json:"mensaje"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.RequestID = env.Metadata.RequestID
		apiErr.Message = env.Message

		var body errorBody
		var plain string
		switch {
		case len(env.Error) == 0:
		case json.Unmarshal(env.Error, &body) == nil:
			apiErr.Code = body.Code
			if body.Message != "" {
				apiErr.Message = body.Message
			}
		case json.Unmarshal(env.Error, &plain) == nil:
			apiErr.Message = plain
		}
	}

	if apiErr.Message == "" {
		if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") && len(text) < 200 {
			apiErr.Message = text
		} else {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
