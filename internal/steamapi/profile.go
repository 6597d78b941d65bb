package steamapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// WebProfileClient implements ProfileClient against IPlayerService.
type WebProfileClient struct {
	transport *Transport
}

var _ ProfileClient = (*WebProfileClient)(nil)

// NewProfileClient creates a profile client over the shared transport.
func NewProfileClient(transport *Transport) *WebProfileClient {
	return &WebProfileClient{transport: transport}
}

type linkDetailsResponse struct {
	Response struct {
		Accounts []struct {
			PublicData struct {
				SteamID     string `json:"steamid"`
				PersonaName string `json:"persona_name"`
				ProfileURL  string `json:"profile_url"`
				AvatarURL   string `json:"avatar_full"`
			} `json:"public_data"`
			PrivateData struct {
				AccountName string `json:"account_name"`
			} `json:"private_data"`
		} `json:"accounts"`
	} `json:"response"`
}

// GetPlayerLinkDetails fetches persona and profile data for one account.
func (p *WebProfileClient) GetPlayerLinkDetails(ctx context.Context, accessToken string, steamID uint64) (Profile, error) {
	form := url.Values{"steamids[0]": {strconv.FormatUint(steamID, 10)}}

	var detailsResp linkDetailsResponse
	err := p.transport.apiCall(ctx, resty.MethodGet, "IPlayerService", "GetPlayerLinkDetails", 1,
		form, accessToken, &detailsResp)
	if err != nil {
		return Profile{}, err
	}
	if len(detailsResp.Response.Accounts) == 0 {
		return Profile{}, fmt.Errorf("%w: no account in link details", ErrDeserialize)
	}

	account := detailsResp.Response.Accounts[0]
	resolvedID := steamID
	if parsed, parseErr := strconv.ParseUint(account.PublicData.SteamID, 10, 64); parseErr == nil {
		resolvedID = parsed
	}
	return Profile{
		SteamID:     resolvedID,
		AccountName: account.PrivateData.AccountName,
		PersonaName: account.PublicData.PersonaName,
		ProfileURL:  account.PublicData.ProfileURL,
		AvatarURL:   account.PublicData.AvatarURL,
	}, nil
}
