// Package synthesis provides key/secret-authenticated access to the
// Synthesis telephony platform's CDR API.
package synthesis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/netfuse/capsule-sync/internal/apierr"
	"github.com/netfuse/capsule-sync/internal/model"
)

const apiVersion = "0.1"

// Client defines the Synthesis API operations used by the sync pipeline.
type Client interface {
	// Login authenticates the key/secret pair. It must succeed before any
	// other call is made.
	Login(ctx context.Context) error
	// GetCalls fetches CDRs, optionally filtered to a single E.164 number.
	// An empty number fetches the whole recent-call window.
	GetCalls(ctx context.Context, number string) ([]model.RawCall, error)
}

// statusEnvelope is the response wrapper every Synthesis endpoint shares.
type statusEnvelope struct {
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Results []model.RawCall `json:"results"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	key     string
	secret  string
	http    *http.Client
}

// NewClient creates a Synthesis API client. The host may be bare
// ("api.netfuse.net") or carry an explicit scheme; bare hosts default to
// http, matching the platform's historical deployment.
func NewClient(host, key, secret string, opts ...Option) Client {
	base := strings.TrimRight(host, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	c := &httpClient{
		baseURL: base,
		key:     key,
		secret:  secret,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Login(ctx context.Context) error {
	q := url.Values{}
	q.Set("key", c.key)
	q.Set("secret", c.secret)

	env, err := c.get(ctx, "/"+apiVersion+"/authenticate?"+q.Encode())
	if err != nil {
		return &apierr.AuthError{Platform: "synthesis", Err: err}
	}
	if env.Status.Code != http.StatusOK {
		return &apierr.AuthError{
			Platform: "synthesis",
			Err:      eris.Errorf("status code %d: %s", env.Status.Code, env.Status.Message),
		}
	}
	return nil
}

func (c *httpClient) GetCalls(ctx context.Context, number string) ([]model.RawCall, error) {
	path := "/" + apiVersion + "/calls"
	if number != "" {
		path += "/?number=" + url.QueryEscape(number)
	}

	env, err := c.get(ctx, path)
	if err != nil {
		return nil, eris.Wrap(err, "synthesis: get calls")
	}
	if env.Status.Code != http.StatusOK {
		return nil, eris.Wrap(
			&apierr.TransportError{
				Err:        eris.Errorf("status code %d: %s", env.Status.Code, env.Status.Message),
				StatusCode: env.Status.Code,
			},
			"synthesis: get calls",
		)
	}
	return env.Results, nil
}

func (c *httpClient) get(ctx context.Context, path string) (*statusEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "synthesis: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apierr.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierr.TransportError{Err: err, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apierr.TransportError{
			Err:        eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &apierr.DecodeError{Err: err}
	}
	return &env, nil
}
