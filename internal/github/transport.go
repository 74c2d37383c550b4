package github

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/cache"
)

// cachedResponse is what cachingTransport keeps per GET.
type cachedResponse struct {
	Link string          `json:"link,omitempty"`
	Body json.RawMessage `json:"body"`
}

// cachingTransport serves repeated GETs for the same token and URL from the cache.
type cachingTransport struct {
	next  http.RoundTripper
	store cache.Store
	ttl   time.Duration
}

func (t *cachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next.RoundTrip(req)
	}
	ctx := req.Context()
	key := cacheKey(req.Header.Get("Authorization"), req.URL.RequestURI())
	if raw, ok, err := t.store.Get(ctx, key); err == nil && ok {
		var hit cachedResponse
		if err := json.Unmarshal(raw, &hit); err == nil {
			return hit.response(req), nil
		}
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpointFrom(req), err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if raw, err := json.Marshal(cachedResponse{Link: resp.Header.Get("Link"), Body: body}); err == nil {
		_ = t.store.Set(ctx, key, raw, t.ttl)
	}
	return resp, nil
}

func (c cachedResponse) response(req *http.Request) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if c.Link != "" {
		h.Set("Link", c.Link)
	}
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(c.Body)),
		ContentLength: int64(len(c.Body)),
		Request:       req,
	}
}

func cacheKey(authorization, uri string) string {
	sum := sha256.Sum256([]byte(authorization))
	return "github:" + hex.EncodeToString(sum[:8]) + ":" + uri
}

// pacedTransport applies the request limiter and retries a rate-limited GET once
// when the advertised wait fits under MaxRateLimitWait.
type pacedTransport struct {
	next   http.RoundTripper
	client *Client
}

func (t *pacedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := t.client.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
		resp, err := t.next.RoundTrip(req)
		if err != nil || !isRateLimited(resp) {
			return resp, err
		}

		wait := t.client.rateLimitWait(resp.Header)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if attempt > 0 || req.Method != http.MethodGet || wait > t.client.cfg.MaxRateLimitWait {
			return nil, fmt.Errorf("%w: retry in %s", ErrRateLimited, wait.Round(time.Second))
		}
		if err := sleep(req.Context(), wait); err != nil {
			return nil, err
		}
	}
}

// observedTransport reports every upstream status to the client's observer.
type observedTransport struct {
	next   http.RoundTripper
	client *Client
}

func (t *observedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.client.observe(endpointFrom(req), resp.StatusCode)
	return resp, nil
}

func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// rateLimitWait prefers Retry-After, then X-RateLimit-Reset, then one minute.
func (c *Client) rateLimitWait(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Unix(unix, 0).Sub(c.now()); d > 0 {
				return d
			}
			return 0
		}
	}
	return time.Minute
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
