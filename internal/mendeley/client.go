package mendeley

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"
	"github.com/openmined/papersync/internal/docsync"
	"github.com/openmined/papersync/internal/version"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.mendeley.com"

	// allowed page size range is [20, 500]
	pageLimit = "500"
)

type ClientConfig struct {
	BaseURL     string             // BaseURL defaults to DefaultBaseURL
	TokenSource oauth2.TokenSource // TokenSource is required
}

// Client is a thin Mendeley REST API client covering folders, documents and
// attached files.
type Client struct {
	client  *req.Client
	baseURL string
}

func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg.TokenSource == nil {
		return nil, ErrNoTokenSource
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	ts := cfg.TokenSource
	client := req.C().
		SetBaseURL(baseURL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1*time.Second).
		SetUserAgent(version.UserAgent()).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal).
		SetCommonErrorResult(&APIError{}).
		OnBeforeRequest(func(_ *req.Client, r *req.Request) error {
			tok, err := ts.Token()
			if err != nil {
				return fmt.Errorf("%w: %w", docsync.ErrAuth, err)
			}
			r.SetBearerAuthToken(tok.AccessToken)
			return nil
		})

	return &Client{
		client:  client,
		baseURL: baseURL,
	}, nil
}

// getPaged follows `Link: <...>; rel="next"` headers until the last page,
// handing every page to decode.
func (c *Client) getPaged(ctx context.Context, path string, accept string, operation string, decode func(*req.Response) error) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", accept).
		SetQueryParam("limit", pageLimit).
		Get(path)

	for {
		if err := handleAPIError(resp, err, operation); err != nil {
			return err
		}
		if err := decode(resp); err != nil {
			return fmt.Errorf("mendeley: %s: decode: %w", operation, err)
		}

		next := nextLink(resp.Header.Get("Link"))
		if next == "" {
			return nil
		}

		resp, err = c.client.R().
			SetContext(ctx).
			SetHeader("Accept", accept).
			Get(next)
	}
}
