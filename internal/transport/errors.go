package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericErrorMessage is shown when the server gives no detail.
const GenericErrorMessage = "An error occurred"

// ErrSessionExpired marks a call that failed with 401. By the time it is
// returned the credential has been cleared and the application sent to
// the login entry point.
var ErrSessionExpired = errors.New("session expired")

// APIError is a failed call: either a non-2xx response or a transport
// failure (Status 0).
type APIError struct {
	Method string
	Path   string
	Status int
	Detail string
	Err    error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", GenericErrorMessage, e.Err)
	}
	return GenericErrorMessage
}

func (e *APIError) Unwrap() error { return e.Err }

// Message returns the server-provided detail or the generic fallback.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return GenericErrorMessage
}

// sessionExpiredError keeps the original 401 reachable through errors.As
// while matching ErrSessionExpired through errors.Is.
type sessionExpiredError struct {
	cause *APIError
}

func (e *sessionExpiredError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSessionExpired, e.cause.Message())
}

func (e *sessionExpiredError) Is(target error) bool { return target == ErrSessionExpired }

func (e *sessionExpiredError) Unwrap() error { return e.cause }

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// ErrorMessage returns the text a view should show for err.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// parseDetail extracts the "detail" field of an error body. FastAPI sends
// either a string or a list of {loc, msg, type} validation items.
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
