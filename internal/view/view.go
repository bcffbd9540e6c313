// Package view holds the page-level state machines of the client: what a
// screen shows, which calls it issues and how their failures are worded.
// Views never redirect on their own; session expiry is handled by the
// transport pipeline and surfaces here as transport.ErrSessionExpired.
package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kalambet/taxdesk/internal/transport"
)

// Failure is a failed view operation. Message is the text the page shows;
// Err is the underlying cause.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Message
	}
	return fmt.Sprintf("%s: %v", f.Message, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(msg string, err error) error {
	return &Failure{Message: msg, Err: err}
}

// detailOr uses the server detail of err when there is one.
func detailOr(err error, fallback string) string {
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// ValidationError rejects user input before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidationErrors collects every rejected field of a form.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for the named field, or "".
func (v ValidationErrors) Field(name string) string {
	for _, e := range v {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}
