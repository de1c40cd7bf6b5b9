package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
)

// PasswordHasher turns passwords into stored hashes and checks them back.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	// Verify never fails loudly: a malformed hash is simply a mismatch.
	Verify(hash, pw string) bool
	NeedsRehash(hash string) bool
}

// BcryptHasher hashes with bcrypt. Hashes are 60 bytes and carry their own salt.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b BcryptHasher) Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), b.cost())
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password longer than 72 bytes", apperr.ErrValidation)
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares in constant time.
func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NeedsRehash reports whether hash was made with a lower cost than b's.
func (b BcryptHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost < b.cost()
}
