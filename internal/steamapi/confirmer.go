package steamapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	confirmerTagList    = "list"
	confirmerTagDetails = "details"
	confirmerOpAccept   = "allow"
	confirmerOpDeny     = "cancel"
)

// WebConfirmer implements Confirmer against the mobileconf endpoints for a
// single account.
type WebConfirmer struct {
	transport *Transport
	account   GuardAccount
	now       func() time.Time
	hash      func(identitySecret, tag string, unixTime int64) (string, error)
}

var _ Confirmer = (*WebConfirmer)(nil)

// NewConfirmer creates a confirmer for the given account. hash computes the
// identity-secret confirmation hash (see the totp package).
func NewConfirmer(transport *Transport, account GuardAccount, hash func(identitySecret, tag string, unixTime int64) (string, error)) *WebConfirmer {
	return &WebConfirmer{
		transport: transport,
		account:   account,
		now:       time.Now,
		hash:      hash,
	}
}

// queryParams builds the signed query every mobileconf request carries.
func (c *WebConfirmer) queryParams(tag string) (url.Values, error) {
	atTime := c.now().Unix()
	confirmationHash, err := c.hash(c.account.IdentitySecret, tag, atTime)
	if err != nil {
		return nil, fmt.Errorf("%w: confirmation hash: %v", ErrRemote, err)
	}

	return url.Values{
		"p":   {c.account.DeviceID},
		"a":   {strconv.FormatUint(c.account.SteamID, 10)},
		"k":   {confirmationHash},
		"t":   {strconv.FormatInt(atTime, 10)},
		"m":   {"react"},
		"tag": {tag},
	}, nil
}

type confirmationListResponse struct {
	Success       bool           `json:"success"`
	NeedAuth      bool           `json:"needauth"`
	Message       string         `json:"message"`
	Confirmations []Confirmation `json:"conf"`
}

// List fetches all pending confirmations.
func (c *WebConfirmer) List(ctx context.Context) ([]Confirmation, error) {
	query, err := c.queryParams(confirmerTagList)
	if err != nil {
		return nil, err
	}

	var listResp confirmationListResponse
	if err := c.do(ctx, "/mobileconf/getlist", query, &listResp); err != nil {
		return nil, err
	}
	return listResp.Confirmations, nil
}

type confirmationDetailsResponse struct {
	Success  bool   `json:"success"`
	NeedAuth bool   `json:"needauth"`
	Message  string `json:"message"`
	HTML     string `json:"html"`
}

// GetDetails fetches the rendered detail blob for one confirmation.
func (c *WebConfirmer) GetDetails(ctx context.Context, ref ConfirmationRef) (string, error) {
	query, err := c.queryParams(confirmerTagDetails)
	if err != nil {
		return "", err
	}

	var detailsResp confirmationDetailsResponse
	if err := c.do(ctx, "/mobileconf/details/"+url.PathEscape(ref.ID), query, &detailsResp); err != nil {
		return "", err
	}
	return detailsResp.HTML, nil
}

// Accept approves one confirmation.
func (c *WebConfirmer) Accept(ctx context.Context, ref ConfirmationRef) error {
	return c.sendOp(ctx, confirmerOpAccept, ref)
}

// Deny rejects one confirmation.
func (c *WebConfirmer) Deny(ctx context.Context, ref ConfirmationRef) error {
	return c.sendOp(ctx, confirmerOpDeny, ref)
}

// AcceptBulk approves a batch with a single multiajaxop call.
func (c *WebConfirmer) AcceptBulk(ctx context.Context, refs []ConfirmationRef) error {
	return c.sendBulkOp(ctx, confirmerOpAccept, refs)
}

// DenyBulk rejects a batch with a single multiajaxop call.
func (c *WebConfirmer) DenyBulk(ctx context.Context, refs []ConfirmationRef) error {
	return c.sendBulkOp(ctx, confirmerOpDeny, refs)
}

func (c *WebConfirmer) sendOp(ctx context.Context, op string, ref ConfirmationRef) error {
	query, err := c.queryParams(op)
	if err != nil {
		return err
	}
	query.Set("op", op)
	query.Set("cid", ref.ID)
	query.Set("ck", ref.Nonce)

	var opResp confirmationDetailsResponse
	return c.do(ctx, "/mobileconf/ajaxop", query, &opResp)
}

func (c *WebConfirmer) sendBulkOp(ctx context.Context, op string, refs []ConfirmationRef) error {
	query, err := c.queryParams(op)
	if err != nil {
		return err
	}
	query.Set("op", op)
	for _, ref := range refs {
		query.Add("cid[]", ref.ID)
		query.Add("ck[]", ref.Nonce)
	}

	resp, err := c.transport.communityRequest(ctx).
		SetFormDataFromValues(query).
		Post("/mobileconf/multiajaxop")
	if err != nil {
		return fmt.Errorf("%w: multiajaxop: %v", ErrNetwork, err)
	}

	var opResp confirmationDetailsResponse
	return decodeConfResponse(resp, &opResp)
}

// do performs a GET against a mobileconf endpoint and checks the shared
// success/needauth envelope.
func (c *WebConfirmer) do(ctx context.Context, path string, query url.Values, out confResponse) error {
	resp, err := c.transport.communityRequest(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNetwork, path, err)
	}
	return decodeConfResponse(resp, out)
}

// confResponse is the shared envelope of every mobileconf response.
type confResponse interface {
	status() (success, needAuth bool, message string)
}

func (r *confirmationListResponse) status() (bool, bool, string) {
	return r.Success, r.NeedAuth, r.Message
}

func (r *confirmationDetailsResponse) status() (bool, bool, string) {
	return r.Success, r.NeedAuth, r.Message
}

func decodeConfResponse(resp *resty.Response, out confResponse) error {
	if resp.IsError() {
		if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
			return fmt.Errorf("%w: status %d", ErrInvalidTokens, resp.StatusCode())
		}
		return fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}

	success, needAuth, message := out.status()
	if needAuth {
		return fmt.Errorf("%w: confirmation endpoint requires re-auth", ErrInvalidTokens)
	}
	if !success {
		if message == "" {
			message = "operation refused"
		}
		return fmt.Errorf("%w: %s", ErrRemote, message)
	}
	return nil
}
