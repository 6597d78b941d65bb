package confirmations

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prenaissance/steam-desktop-authenticator/internal/accounts"
	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/models"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
)

const (
	testSharedSecret   = "FSY2y2mThnpJv1h+lXKTVuH+cvQ="
	testIdentitySecret = "tdL6Wy1IeiqkCCb43nDEO1g2uYs="
)

type fakeConfirmer struct {
	confirmations []steamapi.Confirmation
	details       string

	listErr    error
	detailsErr error
	singleErr  error
	bulkErr    error
	// perItemErr overrides singleErr for specific ids.
	perItemErr map[string]error

	singleCalls []string
	bulkCalls   int
}

func (f *fakeConfirmer) List(context.Context) ([]steamapi.Confirmation, error) {
	return f.confirmations, f.listErr
}

func (f *fakeConfirmer) GetDetails(context.Context, steamapi.ConfirmationRef) (string, error) {
	return f.details, f.detailsErr
}

func (f *fakeConfirmer) Accept(_ context.Context, ref steamapi.ConfirmationRef) error {
	return f.single(ref)
}

func (f *fakeConfirmer) Deny(_ context.Context, ref steamapi.ConfirmationRef) error {
	return f.single(ref)
}

func (f *fakeConfirmer) single(ref steamapi.ConfirmationRef) error {
	f.singleCalls = append(f.singleCalls, ref.ID)
	if err, ok := f.perItemErr[ref.ID]; ok {
		return err
	}
	return f.singleErr
}

func (f *fakeConfirmer) AcceptBulk(context.Context, []steamapi.ConfirmationRef) error {
	f.bulkCalls++
	return f.bulkErr
}

func (f *fakeConfirmer) DenyBulk(context.Context, []steamapi.ConfirmationRef) error {
	f.bulkCalls++
	return f.bulkErr
}

func validAccessToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "76561197960287930",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func expiredAccessToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "76561197960287930",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func storeWithAccount(t *testing.T, accessToken string) *accounts.Store {
	t.Helper()
	store, err := accounts.Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	require.NoError(t, store.AddActive(models.UserCredentials{
		AccountName:    "alice",
		SteamID:        76561197960287930,
		SharedSecret:   testSharedSecret,
		IdentitySecret: testIdentitySecret,
		AccessToken:    accessToken,
	}))
	return store
}

func emptyStore(t *testing.T) *accounts.Store {
	t.Helper()
	store, err := accounts.Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return store
}

// countingFactory records whether a protocol client was ever built.
func countingFactory(confirmer steamapi.Confirmer, calls *int) ConfirmerFactory {
	return func(steamapi.GuardAccount) steamapi.Confirmer {
		*calls++
		return confirmer
	}
}

func ref(id string) steamapi.ConfirmationRef {
	return steamapi.ConfirmationRef{ID: id, Nonce: "nonce-" + id}
}

func TestListNoActiveAccount(t *testing.T) {
	var factoryCalls int
	dispatcher := NewDispatcher(emptyStore(t), countingFactory(&fakeConfirmer{}, &factoryCalls))

	_, err := dispatcher.List(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	assert.Zero(t, factoryCalls, "no protocol client may be built without an active account")
}

func TestListMissingToken(t *testing.T) {
	var factoryCalls int
	dispatcher := NewDispatcher(storeWithAccount(t, ""), countingFactory(&fakeConfirmer{}, &factoryCalls))

	_, err := dispatcher.List(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	assert.Zero(t, factoryCalls)
}

func TestListExpiredToken(t *testing.T) {
	var factoryCalls int
	dispatcher := NewDispatcher(storeWithAccount(t, expiredAccessToken(t)), countingFactory(&fakeConfirmer{}, &factoryCalls))

	_, err := dispatcher.List(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	assert.Zero(t, factoryCalls)
}

func TestListSuccess(t *testing.T) {
	confirmer := &fakeConfirmer{
		confirmations: []steamapi.Confirmation{
			{ID: "1", Nonce: "n1", WireType: 2, Headline: "Trade with Bob"},
			{ID: "2", Nonce: "n2", WireType: 3, Headline: "Sell item"},
		},
	}
	var factoryCalls int
	dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), countingFactory(confirmer, &factoryCalls))

	listed, err := dispatcher.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, steamapi.ConfirmationTypeTrade, listed[0].Type())
	assert.Equal(t, 1, factoryCalls)
}

func TestListErrorTranslation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{name: "invalid tokens", err: steamapi.ErrInvalidTokens, kind: apperr.KindUnauthorized},
		{name: "network", err: steamapi.ErrNetwork, kind: apperr.KindNetworkFailure},
		{name: "deserialize", err: steamapi.ErrDeserialize, kind: apperr.KindDeserialization},
		{name: "remote", err: steamapi.ErrRemote, kind: apperr.KindAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirmer := &fakeConfirmer{listErr: tt.err}
			dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), func(steamapi.GuardAccount) steamapi.Confirmer {
				return confirmer
			})

			_, err := dispatcher.List(context.Background())
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tt.kind), "got kind %s", apperr.KindOf(err))
		})
	}
}

func TestGetDetails(t *testing.T) {
	confirmer := &fakeConfirmer{details: "<div>detail</div>"}
	dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), func(steamapi.GuardAccount) steamapi.Confirmer {
		return confirmer
	})

	html, err := dispatcher.GetDetails(context.Background(), ref("1"))
	require.NoError(t, err)
	assert.Equal(t, "<div>detail</div>", html)
}

func TestAcceptTranslatesStaleOutcomes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{name: "expired", err: steamapi.ErrExpired, kind: apperr.KindExpired},
		{name: "duplicate", err: steamapi.ErrDuplicateRequest, kind: apperr.KindDuplicateRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirmer := &fakeConfirmer{singleErr: tt.err}
			dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), func(steamapi.GuardAccount) steamapi.Confirmer {
				return confirmer
			})

			err := dispatcher.Accept(context.Background(), ref("1"))
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tt.kind))
		})
	}
}

func TestAcceptBulkEmpty(t *testing.T) {
	confirmer := &fakeConfirmer{}
	dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), func(steamapi.GuardAccount) steamapi.Confirmer {
		return confirmer
	})

	results, err := dispatcher.AcceptBulk(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Zero(t, confirmer.bulkCalls)
}

func TestAcceptBulkAllSucceed(t *testing.T) {
	confirmer := &fakeConfirmer{}
	dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), func(steamapi.GuardAccount) steamapi.Confirmer {
		return confirmer
	})

	refs := []steamapi.ConfirmationRef{ref("1"), ref("2"), ref("3")}
	results, err := dispatcher.AcceptBulk(context.Background(), refs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, refs[i], result.Ref)
		assert.NoError(t, result.Err)
	}
	assert.Equal(t, 1, confirmer.bulkCalls)
	assert.Empty(t, confirmer.singleCalls, "no per-item retries on bulk success")
}

func TestAcceptBulkAuthFailureIsAggregate(t *testing.T) {
	confirmer := &fakeConfirmer{bulkErr: steamapi.ErrInvalidTokens}
	dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), func(steamapi.GuardAccount) steamapi.Confirmer {
		return confirmer
	})

	_, err := dispatcher.AcceptBulk(context.Background(), []steamapi.ConfirmationRef{ref("1"), ref("2")})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	assert.Empty(t, confirmer.singleCalls, "auth failures must not be retried per item")
}

func TestAcceptBulkNetworkFailureIsAggregate(t *testing.T) {
	confirmer := &fakeConfirmer{bulkErr: steamapi.ErrNetwork}
	dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), func(steamapi.GuardAccount) steamapi.Confirmer {
		return confirmer
	})

	_, err := dispatcher.AcceptBulk(context.Background(), []steamapi.ConfirmationRef{ref("1")})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNetworkFailure))
	assert.Empty(t, confirmer.singleCalls)
}

func TestDenyBulkRefusalFallsBackPerItem(t *testing.T) {
	confirmer := &fakeConfirmer{
		bulkErr: steamapi.ErrRemote,
		perItemErr: map[string]error{
			"2": steamapi.ErrExpired,
			"3": steamapi.ErrDuplicateRequest,
		},
	}
	dispatcher := NewDispatcher(storeWithAccount(t, validAccessToken(t)), func(steamapi.GuardAccount) steamapi.Confirmer {
		return confirmer
	})

	refs := []steamapi.ConfirmationRef{ref("1"), ref("2"), ref("3")}
	results, err := dispatcher.DenyBulk(context.Background(), refs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.True(t, apperr.IsKind(results[1].Err, apperr.KindExpired))
	assert.True(t, apperr.IsKind(results[2].Err, apperr.KindDuplicateRequest))
	assert.Equal(t, []string{"1", "2", "3"}, confirmer.singleCalls)
}
