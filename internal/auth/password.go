package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// VerifyOutcome reports a credential check. Rehashed carries the bcrypt
// replacement for a matched legacy credential and is empty otherwise; the
// caller persists it so the plaintext does not survive another login.
type VerifyOutcome struct {
	Match    bool
	Rehashed string
}

// Verifier checks presented passwords against stored credentials and
// produces hash upgrades for legacy plaintext entries.
type Verifier struct {
	cost int
}

// NewVerifier constructs a Verifier using the default bcrypt cost.
func NewVerifier() *Verifier {
	return &Verifier{cost: bcrypt.DefaultCost}
}

// Verify compares the presented password against the stored credential.
// Verification never mutates state itself; migration is the caller's write.
func (v *Verifier) Verify(presented, stored string) (VerifyOutcome, error) {
	if stored == "" {
		return VerifyOutcome{}, errors.New("stored credential is empty")
	}
	cred := DecodeCredential(stored)
	switch cred.Kind {
	case CredentialHashed:
		err := bcrypt.CompareHashAndPassword([]byte(cred.Value), []byte(presented))
		switch {
		case err == nil:
			return VerifyOutcome{Match: true}, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return VerifyOutcome{}, nil
		default:
			return VerifyOutcome{}, fmt.Errorf("compare hash: %w", err)
		}
	case CredentialLegacy:
		if subtle.ConstantTimeCompare([]byte(cred.Value), []byte(presented)) != 1 {
			return VerifyOutcome{}, nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(presented), v.cost)
		if err != nil {
			return VerifyOutcome{}, fmt.Errorf("hash password: %w", err)
		}
		return VerifyOutcome{Match: true, Rehashed: string(hash)}, nil
	default:
		return VerifyOutcome{}, fmt.Errorf("unknown credential kind %d", cred.Kind)
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
