package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/orris-inc/licensing/internal/shared/id"
)

type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to generate password hash: %w", err)
	}
	return string(hash), nil
}

// HashOrGenerate hashes password, generating a random one first when it is
// blank. The plain password is returned so it can be mailed to the account owner.
func (h *BcryptPasswordHasher) HashOrGenerate(password string) (string, string, error) {
	plain := strings.TrimSpace(password)
	if plain == "" {
		generated, err := id.Generate(id.PasswordLength)
		if err != nil {
			return "", "", fmt.Errorf("failed to generate password: %w", err)
		}
		plain = generated
	}

	hash, err := h.Hash(plain)
	if err != nil {
		return "", "", err
	}
	return plain, hash, nil
}

func (h *BcryptPasswordHasher) Verify(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// one generic error for mismatch and malformed hash alike
		return fmt.Errorf("password verification failed")
	}
	return nil
}
