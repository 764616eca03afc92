package auth

import (
	"errors"
	"fmt"

	"github.com/mamadbah2/eggledger/internal/domain/models"
)

var (
	// ErrInvalidCredentials is returned when a password matches no secret.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is wrapped by every AuthorizationError.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidToken is returned for unparseable, tampered or expired session tokens.
	ErrInvalidToken = errors.New("invalid session token")
)

// AuthorizationError reports a role attempting an action it lacks.
type AuthorizationError struct {
	Role   models.Role
	Action Action
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %s may not %s", e.Role, e.Action)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrForbidden
}
