package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyPrefix marks keys issued to services calling the user API
	APIKeyPrefix = "usvc"
	// APIKeyLength is the length of the random part in bytes
	APIKeyLength = 32
	// BCryptCost is the cost factor for bcrypt hashing
	BCryptCost = 12
)

// GenerateAPIKey generates a new service key with format: usvc_<random_base64>
func GenerateAPIKey() (string, error) {
	randomBytes := make([]byte, APIKeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return fmt.Sprintf("%s_%s", APIKeyPrefix, base64.RawURLEncoding.EncodeToString(randomBytes)), nil
}

// HashAPIKey hashes a service key for storage in configuration
func HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hash), nil
}

// VerifyAPIKey compares a presented key with the configured hash
func VerifyAPIKey(providedKey, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(providedKey)) == nil
}
