// Package client talks to the Sapio platform web service on behalf of the
// user who triggered a webhook. A Client is scoped to one invocation: it
// carries that user's session token and web service URL.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"

	webhooks "github.com/onetakeda/sapio-webhooks"
	"github.com/onetakeda/sapio-webhooks/config"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

const userAgent = "SapioWebhooks/"

type Client struct {
	baseURL      string
	username     string
	sessionToken string
	inner        *http.Client

	dataTypes *dataTypeCache
}

type Options struct {
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification. Only set
	// through the SapioWebhooksInsecure switch.
	InsecureSkipVerify bool
}

func New(baseURL, username, sessionToken string, opts Options) (*Client, error) {
	if !govalidator.IsURL(baseURL) {
		return nil, errors.Errorf("invalid web service url: %q", baseURL)
	}

	if opts.Timeout == 0 {
		opts.Timeout = webhooks.DefaultClientTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // nolint:gosec
	}

	return &Client{
		baseURL:      baseURL,
		username:     username,
		sessionToken: sessionToken,
		inner: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		dataTypes: newDataTypeCache(),
	}, nil
}

// NewFromContext builds a client for the invocation's user from the served
// configuration.
func NewFromContext(cfg config.ClientConfiguration, wctx *webhook.Context) (*Client, error) {
	return New(wctx.WebServiceURL, wctx.Username, wctx.SessionToken, Options{
		Timeout:            time.Duration(cfg.TimeoutSeconds) * time.Second,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
}

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent+webhooks.GetVersion())
	req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	req.Header.Set("X-Sapio-User", c.username)

	resp, err := c.inner.Do(req)
	if err != nil {
		return errors.Wrap(err, "request to platform failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode platform response")
	}

	return nil
}

func newAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && json.Unmarshal(b, &payload) == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
