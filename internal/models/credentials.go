// Package models holds the credential record shared by every component.
package models

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
	"github.com/prenaissance/steam-desktop-authenticator/internal/totp"
)

// UserCredentials is the stored record for one Steam account. It is created
// by a completed login handshake and mutated only through the account store.
type UserCredentials struct {
	AccountName     string `json:"account_name"`
	AccountPassword string `json:"account_password"`
	SharedSecret    string `json:"shared_secret"`
	IdentitySecret  string `json:"identity_secret"`
	RevocationCode  string `json:"revocation_code,omitempty"`
	Secret1         string `json:"secret_1,omitempty"`
	RefreshToken    string `json:"refresh_token"`
	AccessToken     string `json:"access_token"`
	Cookies         string `json:"cookies,omitempty"`
	SteamID         uint64 `json:"steam_id"`
	DeviceID        string `json:"device_id"`
	AvatarURL       string `json:"avatar_url,omitempty"`
}

// Validate enforces the record invariants: non-empty name and well-formed
// 20-byte secrets.
func (c *UserCredentials) Validate() error {
	if c.AccountName == "" {
		return errors.New("account name must not be empty")
	}
	if err := totp.ValidateSecret(c.SharedSecret); err != nil {
		return fmt.Errorf("shared secret: %w", err)
	}
	if err := totp.ValidateSecret(c.IdentitySecret); err != nil {
		return fmt.Errorf("identity secret: %w", err)
	}
	return nil
}

// GuardAccount converts the record into the protocol-side representation.
// The device id is derived if the record predates the field.
func (c *UserCredentials) GuardAccount() steamapi.GuardAccount {
	deviceID := c.DeviceID
	if deviceID == "" {
		deviceID = DeviceID(c.SteamID)
	}
	return steamapi.GuardAccount{
		SteamID:        c.SteamID,
		AccountName:    c.AccountName,
		DeviceID:       deviceID,
		SharedSecret:   c.SharedSecret,
		IdentitySecret: c.IdentitySecret,
		AccessToken:    c.AccessToken,
	}
}

// DeviceID derives the stable device identity for a steam id: the hex SHA-1
// of its decimal form, grouped like a UUID behind an "android:" prefix.
// Steam keys some server-side behavior off this value staying constant, so
// it must never depend on anything but the steam id.
func DeviceID(steamID uint64) string {
	sum := sha1.Sum([]byte(strconv.FormatUint(steamID, 10)))
	digest := hex.EncodeToString(sum[:])
	return fmt.Sprintf("android:%s-%s-%s-%s-%s",
		digest[0:8], digest[8:12], digest[12:16], digest[16:20], digest[20:32])
}
