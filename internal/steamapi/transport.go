package steamapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	defaultAPIBase       = "https://api.steampowered.com"
	defaultCommunityBase = "https://steamcommunity.com"

	// The mobile confirmation pages only answer to the official app's agent.
	mobileUserAgent = "Dalvik/2.1.0 (Linux; U; Android 9; Valve Steam App Version/3)"
)

// TransportConfig carries the knobs for the shared transport. Zero values
// fall back to production Steam endpoints.
type TransportConfig struct {
	APIBase       string
	CommunityBase string
	Timeout       time.Duration
}

// Transport is the shared HTTP handle for every Steam call. It holds no
// per-account state and is safe to share across concurrent operations.
type Transport struct {
	api       *resty.Client
	community *resty.Client
}

// NewTransport builds a transport against the configured endpoints.
func NewTransport(cfg TransportConfig) *Transport {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.CommunityBase == "" {
		cfg.CommunityBase = defaultCommunityBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Transport{
		api:       newClient(cfg.APIBase, cfg.Timeout),
		community: newClient(cfg.CommunityBase, cfg.Timeout).SetHeader("User-Agent", mobileUserAgent),
	}
}

func newClient(baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		requestID := uuid.NewString()
		req.SetHeader("X-Request-ID", requestID)
		slog.Debug("steam request", "request_id", requestID, "method", req.Method, "url", req.URL)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		slog.Debug("steam response",
			"request_id", resp.Request.Header.Get("X-Request-ID"),
			"status", resp.StatusCode(),
			"eresult", resp.Header().Get("X-eresult"),
			"duration", resp.Time())
		return nil
	})

	return client
}

// apiCall performs one Steam Web API request and decodes the JSON envelope
// into out. The EResult header carries the authoritative outcome.
func (t *Transport) apiCall(ctx context.Context, method, iface, endpoint string, version int, form url.Values, accessToken string, out any) error {
	req := t.api.R().SetContext(ctx)
	path := fmt.Sprintf("/%s/%s/v%d/", iface, endpoint, version)

	if accessToken != "" {
		req.SetQueryParam("access_token", accessToken)
	}

	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case resty.MethodGet:
		for key, values := range form {
			for _, value := range values {
				req.SetQueryParam(key, value)
			}
		}
		resp, err = req.Get(path)
	default:
		req.SetFormDataFromValues(form)
		resp, err = req.Post(path)
	}
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}

	if eresult := resp.Header().Get("X-eresult"); eresult != "" {
		code, parseErr := strconv.Atoi(eresult)
		if parseErr == nil {
			if resultErr := eresultError(code); resultErr != nil {
				return resultErr
			}
		}
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s %s: status %d", ErrRemote, method, path, resp.StatusCode())
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrDeserialize, method, path, err)
		}
	}
	return nil
}

// communityRequest returns a request bound to the community host, used by
// the mobileconf endpoints.
func (t *Transport) communityRequest(ctx context.Context) *resty.Request {
	return t.community.R().SetContext(ctx)
}
