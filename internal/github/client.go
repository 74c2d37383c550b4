// Package github wraps go-github and x/oauth2 with DevPulse pacing, caching and error mapping.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"golang.org/x/time/rate"

	"github.com/devansh054/dev-pulse-sub000/internal/cache"
)

// Sentinel errors surfaced to callers.
var (
	ErrUnauthorized = errors.New("github: unauthorized")
	ErrRateLimited  = errors.New("github: rate limit exceeded")
	ErrNotFound     = errors.New("github: not found")
)

// APIError is a non-success response that does not map to a sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("github: status %d: %s", e.Status, e.Message)
}

const (
	defaultAPIURL   = "https://api.github.com"
	defaultOAuthURL = "https://github.com"
	perPage         = 100
	maxPages        = 10
)

var oauthScopes = []string{"read:user", "user:email", "repo"}

// Config controls endpoints, credentials and request pacing.
type Config struct {
	APIURL            string
	OAuthURL          string
	ClientID          string
	ClientSecret      string
	RedirectURL       string
	RequestsPerSecond float64
	MaxRateLimitWait  time.Duration
	CacheTTL          time.Duration
	Timeout           time.Duration
}

// Observer is notified after every upstream call.
type Observer func(endpoint string, status int)

// Client talks to GitHub on behalf of a user access token passed per call.
type Client struct {
	cfg      Config
	baseURL  *url.URL
	oauth    *oauth2.Config
	base     http.RoundTripper
	http     *http.Client
	limiter  *rate.Limiter
	cache    cache.Store
	observer Observer
	now      func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil && hc.Transport != nil {
			c.base = hc.Transport
		}
	}
}

// WithCache enables response caching.
func WithCache(store cache.Store) Option {
	return func(c *Client) {
		if store != nil {
			c.cache = store
		}
	}
}

// WithObserver registers a per-call hook, typically a metrics counter.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient constructs a Client, filling unset config with GitHub defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = defaultOAuthURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.OAuthURL = strings.TrimRight(cfg.OAuthURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		cfg:     cfg,
		base:    http.DefaultTransport,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache.Noop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	// a malformed APIURL surfaces on the first request
	c.baseURL, _ = url.Parse(cfg.APIURL + "/")
	c.http = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &cachingTransport{
			next:  &pacedTransport{next: &observedTransport{next: c.base, client: c}, client: c},
			store: c.cache,
			ttl:   cfg.CacheTTL,
		},
	}

	endpoint := endpoints.GitHub
	if cfg.OAuthURL != defaultOAuthURL {
		endpoint = oauth2.Endpoint{
			AuthURL:  cfg.OAuthURL + "/login/oauth/authorize",
			TokenURL: cfg.OAuthURL + "/login/oauth/access_token",
		}
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	c.oauth = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       oauthScopes,
		Endpoint:     endpoint,
	}
	return c
}

// AuthorizeURL returns the GitHub consent page URL for the given CSRF state.
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an OAuth callback code for a user access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(withEndpoint(ctx, "oauth_token"), oauth2.HTTPClient, c.http)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieve *oauth2.RetrieveError
		var transport *url.Error
		switch {
		case errors.As(err, &retrieve):
			msg := retrieve.ErrorDescription
			if msg == "" {
				msg = retrieve.ErrorCode
			}
			return "", fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		case errors.As(err, &transport):
			return "", fmt.Errorf("exchange code: %w", err)
		default:
			return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	return tok.AccessToken, nil
}

// api returns a go-github client authenticated as token. Rate-limit state stays per token.
func (c *Client) api(token string) *gh.Client {
	api := gh.NewClient(c.http)
	api.BaseURL = c.baseURL
	api.UserAgent = "devpulse"
	if token != "" {
		api = api.WithAuthToken(token)
	}
	return api
}

// paginate follows NextPage for at most maxPages pages.
func paginate[T any](ctx context.Context, fetch func(ctx context.Context, opts gh.ListOptions) ([]T, *gh.Response, error)) ([]T, error) {
	out := make([]T, 0, perPage)
	opts := gh.ListOptions{PerPage: perPage}
	for page := 0; page < maxPages; page++ {
		batch, resp, err := fetch(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, batch...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// mapError converts go-github errors into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var (
		limited *gh.RateLimitError
		abuse   *gh.AbuseRateLimitError
		resp    *gh.ErrorResponse
	)
	switch {
	case errors.Is(err, ErrRateLimited):
		return err
	case errors.As(err, &limited):
		return fmt.Errorf("%w: resets at %s", ErrRateLimited, limited.Rate.Reset.Time.UTC().Format(time.RFC3339))
	case errors.As(err, &abuse):
		return fmt.Errorf("%w: %s", ErrRateLimited, abuse.Message)
	case errors.As(err, &resp) && resp.Response != nil:
		switch resp.Response.StatusCode {
		case http.StatusUnauthorized:
			return ErrUnauthorized
		case http.StatusNotFound:
			return ErrNotFound
		}
		return &APIError{Status: resp.Response.StatusCode, Message: resp.Message}
	}
	return err
}

func (c *Client) observe(endpoint string, status int) {
	if c.observer != nil {
		c.observer(endpoint, status)
	}
}

type endpointKey struct{}

// withEndpoint labels upstream calls made with ctx for the observer.
func withEndpoint(ctx context.Context, endpoint string) context.Context {
	return context.WithValue(ctx, endpointKey{}, endpoint)
}

func endpointFrom(req *http.Request) string {
	if v, ok := req.Context().Value(endpointKey{}).(string); ok {
		return v
	}
	return strings.TrimPrefix(req.URL.Path, "/")
}
