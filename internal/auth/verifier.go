package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/eggledger/internal/domain/models"
)

// Verifier checks a candidate password and returns the role it unlocks.
type Verifier interface {
	Verify(candidate string) (models.Role, bool)
}

// Authenticate resolves a password to a role through v.
func Authenticate(v Verifier, password string) (models.Role, error) {
	if v == nil || password == "" {
		return models.RoleGuest, ErrInvalidCredentials
	}
	role, ok := v.Verify(password)
	if !ok {
		return models.RoleGuest, ErrInvalidCredentials
	}
	return role, nil
}

// PlaintextVerifier compares against secrets stored as-is. Empty secrets never match.
type PlaintextVerifier struct {
	AdminSecret    string
	SubAdminSecret string
}

func (v PlaintextVerifier) Verify(candidate string) (models.Role, bool) {
	if plainEqual(candidate, v.AdminSecret) {
		return models.RoleAdmin, true
	}
	if plainEqual(candidate, v.SubAdminSecret) {
		return models.RoleSubAdmin, true
	}
	return models.RoleGuest, false
}

func plainEqual(candidate, secret string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
}

// BcryptVerifier compares against bcrypt hashes. Empty hashes never match.
type BcryptVerifier struct {
	AdminHash    string
	SubAdminHash string
}

func (v BcryptVerifier) Verify(candidate string) (models.Role, bool) {
	if hashEqual(candidate, v.AdminHash) {
		return models.RoleAdmin, true
	}
	if hashEqual(candidate, v.SubAdminHash) {
		return models.RoleSubAdmin, true
	}
	return models.RoleGuest, false
}

func hashEqual(candidate, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// Scheme decides how secrets are stored and builds the matching Verifier.
type Scheme interface {
	Encode(secret string) (string, error)
	Verifier(adminStored, subAdminStored string) Verifier
}

// PlaintextScheme stores secrets unchanged.
type PlaintextScheme struct{}

func (PlaintextScheme) Encode(secret string) (string, error) { return secret, nil }

func (PlaintextScheme) Verifier(adminStored, subAdminStored string) Verifier {
	return PlaintextVerifier{AdminSecret: adminStored, SubAdminSecret: subAdminStored}
}

// BcryptScheme stores bcrypt hashes.
type BcryptScheme struct {
	Cost int
}

func (s BcryptScheme) Encode(secret string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func (BcryptScheme) Verifier(adminStored, subAdminStored string) Verifier {
	return BcryptVerifier{AdminHash: adminStored, SubAdminHash: subAdminStored}
}

// SchemeByName returns the scheme configured by name.
func SchemeByName(name string) (Scheme, error) {
	switch name {
	case "", "plaintext":
		return PlaintextScheme{}, nil
	case "bcrypt":
		return BcryptScheme{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
}
