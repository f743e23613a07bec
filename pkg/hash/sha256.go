package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

// SHA256 returns the hex encoded SHA-256 digest of the secret
func SHA256(secret string) (string, error) {
	h := sha256.New()
	if _, err := h.Write([]byte(secret)); err != nil {
		return "", errors.Wrap(err, "sha256.Write")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
