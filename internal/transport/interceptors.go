package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// LoginPath is the login entry point the application is sent to when a
// session expires.
const LoginPath = "/login"

// Metadata keys set by the built-in interceptors.
const (
	MetaFingerprint = "fingerprint"
	MetaRequestID   = "request_id"
)

// Credentials is the view of the token store the pipeline needs.
// Implemented by session.Store.
type Credentials interface {
	Token() (string, bool)
	ClearToken() error
}

// LoadingTracker is implemented by loading.Tracker.
type LoadingTracker interface {
	StartLoading(fingerprint string)
	FinishLoading(fingerprint string)
}

// Navigator moves the whole application to another entry point.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Auth attaches the current credential as a bearer token.
func Auth(creds Credentials) Interceptor {
	return Interceptor{
		Name: "auth",
		Outbound: func(c *Call) error {
			if token, ok := creds.Token(); ok && token != "" {
				c.HTTP.Header.Set("Authorization", "Bearer "+token)
			}
			return nil
		},
	}
}

// Loading marks the call in flight for its whole lifetime. FinishLoading
// runs on both inbound paths.
func Loading(tracker LoadingTracker) Interceptor {
	finish := func(c *Call) {
		if fp, ok := c.Metadata[MetaFingerprint]; ok {
			tracker.FinishLoading(fp)
		}
	}
	return Interceptor{
		Name: "loading",
		Outbound: func(c *Call) error {
			fp := Fingerprint(c.Request)
			tracker.StartLoading(fp)
			c.Metadata[MetaFingerprint] = fp
			return nil
		},
		OnSuccess: func(c *Call, _ *http.Response) { finish(c) },
		OnFailure: func(c *Call, err error) error {
			finish(c)
			return err
		},
	}
}

// SessionExpiry clears the credential and navigates to LoginPath on any
// 401, whichever endpoint produced it. The returned error matches
// ErrSessionExpired.
func SessionExpiry(creds Credentials, nav Navigator, logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return Interceptor{
		Name: "session_expiry",
		OnFailure: func(c *Call, err error) error {
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
				return err
			}
			if clearErr := creds.ClearToken(); clearErr != nil {
				logger.Error("clearing credential after 401", "error", clearErr)
			}
			nav.Navigate(LoginPath)
			return &sessionExpiredError{cause: apiErr}
		},
	}
}

// RequestID tags each call with a fresh X-Request-ID.
func RequestID() Interceptor {
	return Interceptor{
		Name: "request_id",
		Outbound: func(c *Call) error {
			id := uuid.NewString()
			c.HTTP.Header.Set("X-Request-ID", id)
			c.Metadata[MetaRequestID] = id
			return nil
		},
	}
}

// Logging writes one debug line per completed call and a warning per
// failed one.
func Logging(logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return Interceptor{
		Name: "logging",
		OnSuccess: func(c *Call, resp *http.Response) {
			logger.Debug("api call",
				"method", c.Request.Method,
				"path", c.Request.Path,
				"status", resp.StatusCode,
				"duration_ms", time.Since(c.Started).Milliseconds(),
				"request_id", c.Metadata[MetaRequestID],
			)
		},
		OnFailure: func(c *Call, err error) error {
			status := 0
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				status = apiErr.Status
			}
			logger.Warn("api call failed",
				"method", c.Request.Method,
				"path", c.Request.Path,
				"status", status,
				"duration_ms", time.Since(c.Started).Milliseconds(),
				"request_id", c.Metadata[MetaRequestID],
				"error", err,
			)
			return err
		},
	}
}

// Defaults is the standard chain: request id, auth, loading, session
// expiry, logging. Loading precedes session expiry so the tracker is
// settled before the application navigates away.
func Defaults(creds Credentials, tracker LoadingTracker, nav Navigator, logger *slog.Logger) []Interceptor {
	return []Interceptor{
		RequestID(),
		Auth(creds),
		Loading(tracker),
		SessionExpiry(creds, nav, logger),
		Logging(logger),
	}
}
