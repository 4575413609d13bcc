// Package token provides a high-level API for persisting and retrieving the
// MangaDex refresh token from the system keyring, with a plain-file fallback
// for headless environments.
package token

import (
	"strings"

	"github.com/mangasan-dev/mangasan/constant"
	"github.com/mangasan-dev/mangasan/filesystem"
	"github.com/mangasan-dev/mangasan/log"
	"github.com/mangasan-dev/mangasan/where"
	"github.com/zalando/go-keyring"
)

const keyringUser = "refresh-token"

// Save persists the refresh token. Keyring failures degrade to the file fallback.
func Save(refreshToken string) error {
	if err := keyring.Set(constant.Mangasan, keyringUser, refreshToken); err == nil {
		return nil
	} else {
		log.Warnf("keyring unavailable, falling back to file storage: %v", err)
	}

	return filesystem.API().WriteFile(where.RefreshToken(), []byte(refreshToken), 0600)
}

// Load retrieves the persisted refresh token, preferring the keyring.
func Load() (string, error) {
	if tok, err := keyring.Get(constant.Mangasan, keyringUser); err == nil {
		return tok, nil
	}

	raw, err := filesystem.API().ReadFile(where.RefreshToken())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// Delete removes the refresh token from both storage backends.
func Delete() error {
	// The keyring entry may legitimately be absent; the file removal decides.
	_ = keyring.Delete(constant.Mangasan, keyringUser)

	exists, err := filesystem.API().Exists(where.RefreshToken())
	if err != nil || !exists {
		return err
	}
	return filesystem.API().Remove(where.RefreshToken())
}
