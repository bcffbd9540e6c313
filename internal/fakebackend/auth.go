package fakebackend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

type accountKey struct{}

func currentUser(ctx context.Context) taxapi.User {
	u, _ := ctx.Value(accountKey{}).(taxapi.User)
	return u
}

// bearerAuth rejects requests without a valid token with 401, the way the
// real backend does.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) {
			unauthorized(w, "Not authenticated")
			return
		}

		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(header[len(prefix):], &claims,
			func(*jwt.Token) (any, error) { return s.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(s.now),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			unauthorized(w, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		acc, ok := s.accounts[claims.Subject]
		s.mu.Unlock()
		if !ok || !acc.user.IsActive {
			unauthorized(w, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey{}, acc.user)))
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	detailError(w, http.StatusUnauthorized, "%s", detail)
}

func (s *Server) issueToken(email string) (string, error) {
	now := s.now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}).SignedString(s.secret)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsActive *bool  `json:"is_active"`
	IsAdmin  bool   `json:"is_admin"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detailError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var issues []fieldIssue
	if req.Email == "" {
		issues = append(issues, missing("body", "email"))
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		issues = append(issues, fieldIssue{Loc: []string{"body", "email"}, Msg: "value is not a valid email address", Type: "value_error.email"})
	}
	if req.Password == "" {
		issues = append(issues, missing("body", "password"))
	}
	if len(issues) > 0 {
		validationError(w, issues...)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		detailError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		detailError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	active := req.IsActive == nil || *req.IsActive
	acc := &account{
		user:         taxapi.User{ID: s.newID(), Email: req.Email, IsActive: active, IsAdmin: req.IsAdmin},
		passwordHash: hash,
	}
	s.accounts[req.Email] = acc
	writeJSON(w, http.StatusCreated, acc.user)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		detailError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if email == "" || password == "" {
		var issues []fieldIssue
		if email == "" {
			issues = append(issues, missing("body", "username"))
		}
		if password == "" {
			issues = append(issues, missing("body", "password"))
		}
		validationError(w, issues...)
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		unauthorized(w, "Incorrect email or password")
		return
	}
	if !acc.user.IsActive {
		detailError(w, http.StatusBadRequest, "Inactive user")
		return
	}

	token, err := s.issueToken(email)
	if err != nil {
		detailError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, taxapi.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r.Context()))
}
