package accounts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/models"
)

const (
	testSharedSecret   = "FSY2y2mThnpJv1h+lXKTVuH+cvQ="
	testIdentitySecret = "tdL6Wy1IeiqkCCb43nDEO1g2uYs="
)

func testCredentials(name string, steamID uint64) models.UserCredentials {
	return models.UserCredentials{
		AccountName:    name,
		SharedSecret:   testSharedSecret,
		IdentitySecret: testIdentitySecret,
		RefreshToken:   "refresh-" + name,
		AccessToken:    "access-" + name,
		SteamID:        steamID,
		DeviceID:       models.DeviceID(steamID),
	}
}

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func TestLoadMissingFile(t *testing.T) {
	store, err := Load(tempStorePath(t))
	require.NoError(t, err)

	accounts, active := store.Snapshot()
	assert.Empty(t, accounts)
	assert.Empty(t, active)
	assert.False(t, store.IsLoggedIn())
}

func TestLoadCorruptFile(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDeserialization))
}

func TestLoadDanglingActiveFallsBack(t *testing.T) {
	path := tempStorePath(t)
	store, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, store.Add(testCredentials("alice", 1)))
	require.NoError(t, store.Add(testCredentials("bob", 2)))

	// Simulate a hand-edited file pointing at a removed account.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var file storeFile
	require.NoError(t, json.Unmarshal(content, &file))
	file.ActiveAccountName = "charlie"
	edited, err := json.Marshal(file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, edited, 0o600))

	reloaded, err := Load(path)
	require.NoError(t, err)
	active, ok := reloaded.Active()
	require.True(t, ok)
	assert.Equal(t, "alice", active.AccountName)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := tempStorePath(t)
	store, err := Load(path)
	require.NoError(t, err)

	cred := testCredentials("alice", 76561197960287930)
	require.NoError(t, store.Add(cred))

	reloaded, err := Load(path)
	require.NoError(t, err)
	active, ok := reloaded.Active()
	require.True(t, ok)
	assert.Equal(t, cred, active)
}

func TestAddFirstAccountBecomesActive(t *testing.T) {
	store, err := Load(tempStorePath(t))
	require.NoError(t, err)

	require.NoError(t, store.Add(testCredentials("alice", 1)))
	require.NoError(t, store.Add(testCredentials("bob", 2)))

	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, "alice", active.AccountName)
}

func TestAddReplacesSameName(t *testing.T) {
	store, err := Load(tempStorePath(t))
	require.NoError(t, err)

	require.NoError(t, store.Add(testCredentials("alice", 1)))
	updated := testCredentials("alice", 1)
	updated.AccessToken = "rotated"
	require.NoError(t, store.Add(updated))

	accounts, _ := store.Snapshot()
	require.Len(t, accounts, 1)
	assert.Equal(t, "rotated", accounts[0].AccessToken)
}

func TestAddRejectsInvalidRecord(t *testing.T) {
	store, err := Load(tempStorePath(t))
	require.NoError(t, err)

	bad := testCredentials("alice", 1)
	bad.SharedSecret = "c2hvcnQ="
	err = store.Add(bad)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAddActiveSwitchesSelection(t *testing.T) {
	store, err := Load(tempStorePath(t))
	require.NoError(t, err)

	require.NoError(t, store.Add(testCredentials("alice", 1)))
	require.NoError(t, store.AddActive(testCredentials("bob", 2)))

	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, "bob", active.AccountName)
}

func TestRemove(t *testing.T) {
	store, err := Load(tempStorePath(t))
	require.NoError(t, err)

	require.NoError(t, store.Add(testCredentials("alice", 1)))
	require.NoError(t, store.Add(testCredentials("bob", 2)))
	require.NoError(t, store.SetActive("bob"))

	require.NoError(t, store.Remove("bob"))
	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, "alice", active.AccountName)

	require.NoError(t, store.Remove("alice"))
	assert.False(t, store.IsLoggedIn())

	err = store.Remove("alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetActiveUnknownAccount(t *testing.T) {
	store, err := Load(tempStorePath(t))
	require.NoError(t, err)

	err = store.SetActive("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAccessToken(t *testing.T) {
	path := tempStorePath(t)
	store, err := Load(path)
	require.NoError(t, err)

	cred := testCredentials("alice", 1)
	require.NoError(t, store.Add(cred))
	require.NoError(t, store.UpdateAccessToken("alice", "fresh"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	active, ok := reloaded.Active()
	require.True(t, ok)
	assert.Equal(t, "fresh", active.AccessToken)
	assert.Equal(t, cred.RefreshToken, active.RefreshToken)

	err = store.UpdateAccessToken("nobody", "fresh")
	assert.ErrorIs(t, err, ErrNotFound)
}
