// Package apierr defines the decoded REST error payload shared by the
// api transport and the components that interpret backend failures.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned when an authorization failure could not
// be recovered by the refresh protocol. Callers must treat it as a
// forced logout, not an inline error.
var ErrSessionExpired = errors.New("session expired")

// Error is a non-2xx backend response. Validation failures carry
// field-keyed message lists; other failures carry a detail string.
type Error struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Field returns the first message reported for the named field, or ""
// when the field has no messages.
func (e *Error) Field(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Decode builds an Error from a response body. Django REST bodies are
// either {"detail": "..."} or a map of field name to message list
// (including the "non_field_errors" pseudo-field); unrecognized shapes
// produce an Error with only the status code set.
func Decode(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode}

	if len(body) == 0 {
		return e
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return e
	}

	for key, val := range raw {
		if key == "detail" {
			var detail string
			if err := json.Unmarshal(val, &detail); err == nil {
				e.Detail = detail
			}
			continue
		}

		var msgs []string
		if err := json.Unmarshal(val, &msgs); err == nil {
			if e.Fields == nil {
				e.Fields = make(map[string][]string)
			}
			e.Fields[key] = msgs
		}
	}

	return e
}

// IsStatus reports whether err is a backend Error with the given status.
func IsStatus(err error, statusCode int) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == statusCode
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}
