package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

// ErrNotLoggedIn is returned by Auth.Session when no credential is held.
var ErrNotLoggedIn = errors.New("not logged in")

// AuthService is implemented by *taxapi.AuthClient.
type AuthService interface {
	Login(ctx context.Context, email, password string) (taxapi.Token, error)
	Register(ctx context.Context, email, password string) (taxapi.User, error)
}

// TokenStore is implemented by *session.Store.
type TokenStore interface {
	Token() (string, bool)
	SetToken(value string) error
	ClearToken() error
}

// Auth is the login and registration flow.
type Auth struct {
	svc    AuthService
	tokens TokenStore
}

func NewAuth(svc AuthService, tokens TokenStore) *Auth {
	return &Auth{svc: svc, tokens: tokens}
}

// Login exchanges credentials for a token and stores it.
func (a *Auth) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &ValidationError{Field: "email", Message: "Email and password are required"}
	}
	tok, err := a.svc.Login(ctx, email, password)
	if err != nil {
		return fail(detailOr(err, "Failed to login. Please try again."), err)
	}
	if err := a.tokens.SetToken(tok.AccessToken); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

func (a *Auth) Register(ctx context.Context, email, password string) (taxapi.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return taxapi.User{}, &ValidationError{Field: "email", Message: "Email and password are required"}
	}
	u, err := a.svc.Register(ctx, email, password)
	if err != nil {
		return taxapi.User{}, fail(detailOr(err, "Failed to register. Please try again."), err)
	}
	return u, nil
}

func (a *Auth) Logout() error { return a.tokens.ClearToken() }

func (a *Auth) IsAuthenticated() bool {
	_, ok := a.tokens.Token()
	return ok
}

// SessionInfo describes the held token for display.
type SessionInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token's expiry has passed at now.
func (s SessionInfo) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Session decodes the claims of the held token without verifying its
// signature. The result is for display only; the backend remains the
// authority on whether the token is valid.
func (a *Auth) Session() (SessionInfo, error) {
	token, ok := a.tokens.Token()
	if !ok {
		return SessionInfo{}, ErrNotLoggedIn
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return SessionInfo{}, fmt.Errorf("decoding token: %w", err)
	}
	info := SessionInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
