package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// AccessTokenName is the credentials row holding the backend bearer token.
const AccessTokenName = "access_token"

type Credential struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}
