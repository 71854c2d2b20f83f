// Package capsule provides token-authenticated REST access to the Capsule
// CRM API: party search, user lookup and history notes.
package capsule

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/netfuse/capsule-sync/internal/apierr"
)

// Client defines the Capsule API operations used by the sync pipeline.
type Client interface {
	// Login verifies the API token. It must succeed before any other call
	// is made.
	Login(ctx context.Context) error
	// FindParty searches parties by free-text query (here: a national
	// phone number). An empty result is not an error.
	FindParty(ctx context.Context, query string) (PartyMatches, error)
	// FindPartyByID fetches a single party with its contact details.
	FindPartyByID(ctx context.Context, id string) (*PartyDetail, error)
	// Users lists the account's users. Capsule reports the token's owner
	// first.
	Users(ctx context.Context) ([]User, error)
	// GetHistory returns the history entries recorded against a party.
	GetHistory(ctx context.Context, partyID string) ([]HistoryEntry, error)
	// AddNote appends a history note to a party.
	AddNote(ctx context.Context, partyID string, note NotePayload) error
}

// NotePayload is the historyItem body accepted by POST /api/party/{id}/history.
type NotePayload struct {
	Note      string `json:"note"`
	EntryDate string `json:"entryDate"`
}

// HistoryEntry is one stored history item on a party.
type HistoryEntry struct {
	Note      string `json:"note"`
	EntryDate string `json:"entryDate"`
}

// User is a Capsule account user.
type User struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	PartyID  json.Number `json:"partyId"`
}

// Option configures the Capsule client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second rate limit for Capsule API calls. Capsule
// enforces per-minute quotas per token; the limiter wait respects ctx.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Capsule API client for the given account host
// (e.g. "example.capsulecrm.com") and API token. Authentication is HTTP
// basic with the token as username and a literal "x" password.
func NewClient(host, token string, opts ...Option) Client {
	base := strings.TrimRight(host, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	c := &httpClient{
		baseURL: base,
		token:   token,
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

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) Login(ctx context.Context) error {
	if _, status, err := c.do(ctx, http.MethodGet, "/api/users", nil); err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return &apierr.AuthError{Platform: "capsule", Err: err}
		}
		return eris.Wrap(err, "capsule: login")
	}
	return nil
}

func (c *httpClient) Users(ctx context.Context) ([]User, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, eris.Wrap(err, "capsule: list users")
	}

	users, err := decodeUsers(body)
	if err != nil {
		return nil, eris.Wrap(err, "capsule: list users")
	}
	return users, nil
}

func (c *httpClient) FindParty(ctx context.Context, query string) (PartyMatches, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/api/party/?q="+url.QueryEscape(query), nil)
	if err != nil {
		return PartyMatches{}, eris.Wrapf(err, "capsule: find party %q", query)
	}

	matches, err := decodePartyMatches(body)
	if err != nil {
		return PartyMatches{}, eris.Wrapf(err, "capsule: find party %q", query)
	}
	return matches, nil
}

func (c *httpClient) FindPartyByID(ctx context.Context, id string) (*PartyDetail, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/api/party/"+url.PathEscape(id), nil)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, &apierr.NotFoundError{Resource: "capsule party " + id}
		}
		return nil, eris.Wrapf(err, "capsule: find party by id %s", id)
	}

	detail, err := decodePartyDetail(body)
	if err != nil {
		return nil, eris.Wrapf(err, "capsule: find party by id %s", id)
	}
	return detail, nil
}

func (c *httpClient) GetHistory(ctx context.Context, partyID string) ([]HistoryEntry, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/api/party/"+url.PathEscape(partyID)+"/history", nil)
	if err != nil {
		return nil, eris.Wrapf(err, "capsule: get history for party %s", partyID)
	}

	entries, err := decodeHistory(body)
	if err != nil {
		return nil, eris.Wrapf(err, "capsule: get history for party %s", partyID)
	}
	return entries, nil
}

func (c *httpClient) AddNote(ctx context.Context, partyID string, note NotePayload) error {
	payload, err := json.Marshal(map[string]NotePayload{"historyItem": note})
	if err != nil {
		return eris.Wrap(err, "capsule: marshal note")
	}

	if _, _, err := c.do(ctx, http.MethodPost, "/api/party/"+url.PathEscape(partyID)+"/history", payload); err != nil {
		return eris.Wrapf(err, "capsule: add note for party %s", partyID)
	}
	return nil
}

// do issues one authenticated request and returns the body and status code.
// Non-2xx responses come back as a TransportError alongside the status.
func (c *httpClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, 0, eris.Wrap(err, "capsule: rate limit")
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, eris.Wrap(err, "capsule: create request")
	}
	req.SetBasicAuth(c.token, "x")
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &apierr.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &apierr.TransportError{Err: err, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &apierr.TransportError{
			Err:        eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)),
			StatusCode: resp.StatusCode,
		}
	}
	return body, resp.StatusCode, nil
}
