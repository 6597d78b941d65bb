package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSharedSecret   = "FSY2y2mThnpJv1h+lXKTVuH+cvQ="
	testIdentitySecret = "tdL6Wy1IeiqkCCb43nDEO1g2uYs="
)

func TestDeviceID(t *testing.T) {
	tests := []struct {
		name    string
		steamID uint64
		want    string
	}{
		{
			name:    "well known id",
			steamID: 76561197960287930,
			want:    "android:6d3f10d9-6369-a1ae-97a0-94df28b95192",
		},
		{
			name:    "recent id",
			steamID: 76561199123456789,
			want:    "android:35e560a7-a853-f540-3427-1839ac92eed6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeviceID(tt.steamID))
		})
	}
}

func TestDeviceIDDeterministic(t *testing.T) {
	assert.Equal(t, DeviceID(42), DeviceID(42))
	assert.NotEqual(t, DeviceID(42), DeviceID(43))
}

func TestValidate(t *testing.T) {
	valid := UserCredentials{
		AccountName:    "alice",
		SharedSecret:   testSharedSecret,
		IdentitySecret: testIdentitySecret,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*UserCredentials)
	}{
		{name: "empty name", mutate: func(c *UserCredentials) { c.AccountName = "" }},
		{name: "bad shared secret", mutate: func(c *UserCredentials) { c.SharedSecret = "c2hvcnQ=" }},
		{name: "bad identity secret", mutate: func(c *UserCredentials) { c.IdentitySecret = "!!!" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := valid
			tt.mutate(&cred)
			assert.Error(t, cred.Validate())
		})
	}
}

func TestGuardAccountDerivesMissingDeviceID(t *testing.T) {
	cred := UserCredentials{
		AccountName:    "alice",
		SteamID:        76561197960287930,
		SharedSecret:   testSharedSecret,
		IdentitySecret: testIdentitySecret,
		AccessToken:    "token",
	}

	account := cred.GuardAccount()
	assert.Equal(t, "android:6d3f10d9-6369-a1ae-97a0-94df28b95192", account.DeviceID)
	assert.Equal(t, cred.SteamID, account.SteamID)
	assert.Equal(t, cred.AccessToken, account.AccessToken)

	cred.DeviceID = "android:custom"
	assert.Equal(t, "android:custom", cred.GuardAccount().DeviceID)
}
