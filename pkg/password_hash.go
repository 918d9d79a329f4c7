package pkg

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// credentials are stored as: pbkdf2:sha256:<iterations>$<salt>$<hex digest>
const (
	passwordHashMethod     = "pbkdf2"
	passwordHashAlgo       = "sha256"
	passwordHashIterations = 600000
	passwordSaltLength     = 16
)

func HashPassword(password string) (string, error) {
	salt, err := GenerateRandomString(passwordSaltLength)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := pbkdf2.Key([]byte(password), []byte(salt), passwordHashIterations, sha256.Size, sha256.New)
	return fmt.Sprintf(
		"%s:%s:%d$%s$%s",
		passwordHashMethod, passwordHashAlgo, passwordHashIterations,
		salt, hex.EncodeToString(digest),
	), nil
}

// CheckPasswordHash reports whether password matches the stored credential.
// A malformed credential never matches.
func CheckPasswordHash(password, hash string) bool {
	parts := strings.SplitN(hash, "$", 3)
	if len(parts) != 3 || parts[1] == "" {
		return false
	}

	method := strings.Split(parts[0], ":")
	if len(method) != 3 || method[0] != passwordHashMethod || method[1] != passwordHashAlgo {
		return false
	}

	iterations, err := strconv.Atoi(method[2])
	if err != nil || iterations <= 0 {
		return false
	}

	expected, err := hex.DecodeString(parts[2])
	if err != nil || len(expected) != sha256.Size {
		return false
	}

	digest := pbkdf2.Key([]byte(password), []byte(parts[1]), iterations, sha256.Size, sha256.New)
	return subtle.ConstantTimeCompare(digest, expected) == 1
}
