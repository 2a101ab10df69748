// Package keyring keeps lifelog secrets (the AI API key and the database
// password) in the OS keyring under the lifelog service.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/losebird/lifelog-ai/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored for a name
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrUnknownSecret is returned for names outside Names
	ErrUnknownSecret = errors.New("unknown secret")
)

// Secret names a stored credential.
type Secret string

const (
	APIKey     Secret = constants.KeyringUserAPIKey
	DBPassword Secret = constants.KeyringUserDBPassword
)

// Names lists every Secret.
var Names = []Secret{APIKey, DBPassword}

// ParseSecret maps a user-facing name to a Secret.
func ParseSecret(name string) (Secret, error) {
	for _, s := range Names {
		if string(s) == strings.TrimSpace(name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w %q, expected one of %s, %s", ErrUnknownSecret, name, APIKey, DBPassword)
}

// Get retrieves a secret. Returns ErrNotFound if nothing is stored.
func Get(s Secret) (string, error) {
	v, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

// Set stores a secret, replacing any previous value.
func Set(s Secret, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	return nil
}

// Delete removes a secret.
func Delete(s Secret) error {
	err := keyring.Delete(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete secret from keyring: %w", err)
	}
	return nil
}

// Lookup returns the secret or "" when it is missing or the keyring cannot
// be reached.
func Lookup(s Secret) string {
	v, err := Get(s)
	if err != nil {
		return ""
	}
	return v
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Mask hides all but the last four characters of a secret.
func Mask(v string) string {
	r := []rune(v)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}
