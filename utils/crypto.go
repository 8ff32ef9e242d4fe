package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of data. Device
// fingerprints are persisted only through this function.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashDeviceFingerprint anonymizes a raw client fingerprint.
func HashDeviceFingerprint(fingerprint string) string {
	return SHA256Hex([]byte(fingerprint))
}

// NewID generates an entity identifier.
func NewID() string {
	return uuid.NewString()
}

// HashPassword hashes an admin password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword verifies a password against its bcrypt hash.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
