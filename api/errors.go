// ABOUTME: Normalized API error shape
// ABOUTME: Maps transport failures and non-2xx responses onto a small set of kinds
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindNetwork means no response reached us from the server.
	KindNetwork Kind = iota
	// KindValidation means the input was rejected, locally or by the server.
	KindValidation
	// KindNotFound means the referenced lead does not exist.
	KindNotFound
	// KindServer is any other non-success response.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is the only error type the client returns.
type Error struct {
	Op      string // "list leads", "create lead", ...
	Kind    Kind
	Status  int // HTTP status, 0 when no response
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind of err, or KindServer for foreign errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

// IsNotFound reports whether err is a not-found API error.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	}
	return KindServer
}

func networkError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNetwork, Message: err.Error(), Err: err}
}

func validationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Message: err.Error(), Err: err}
}

// responseError builds an Error from a non-2xx body. The backend answers
// {"error": "..."} and sometimes a longer "message".
func responseError(op string, status int, body []byte) *Error {
	msg := http.StatusText(status)

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "" && payload.Message != "":
			msg = payload.Error + ": " + payload.Message
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		msg = text
	}

	return &Error{Op: op, Kind: kindForStatus(status), Status: status, Message: msg}
}
