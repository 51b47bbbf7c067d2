package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/carebook/clinic-api/pkg/errors"
)

const minPasswordLen = 8

// PasswordHasher hashes account passwords at registration and verifies
// them at login.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt-backed hasher. An out-of-range cost
// falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", apperrors.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", apperrors.Store(fmt.Errorf("failed to hash password: %w", err))
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
