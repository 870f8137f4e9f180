// crypto/credential.go
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatchedCredential is returned when a password does not match the
// stored credential.
var ErrMismatchedCredential = errors.New("crypto: credential does not match")

// BcryptCost is the cost parameter for bcrypt hashing.
type BcryptCost int

const (
	BcryptMinCost     BcryptCost = 4
	BcryptDefaultCost BcryptCost = 10
)

// Hasher derives and checks stored credentials. A credential is bound to
// the username it was created for, so the same password under another
// username never verifies.
type Hasher struct {
	Cost BcryptCost
}

// NewHasher returns a Hasher using cost, or BcryptDefaultCost when cost is 0.
func NewHasher(cost BcryptCost) Hasher {
	if cost == 0 {
		cost = BcryptDefaultCost
	}
	return Hasher{Cost: cost}
}

// Hash returns the bcrypt credential for username and password.
func (h Hasher) Hash(username, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(username, password), int(h.Cost))
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored credential.
func (h Hasher) Verify(username, password, credential string) error {
	err := bcrypt.CompareHashAndPassword([]byte(credential), prehash(username, password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatchedCredential
	}
	return err
}

// prehash keeps the bcrypt input under its 72-byte limit regardless of
// password length.
func prehash(username, password string) []byte {
	sum := sha256.Sum256([]byte(username + "\x00" + password))
	dst := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(dst, sum[:])
	return dst
}
