package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pankajraut1/business-card-new/internal/card"
	apperrors "github.com/pankajraut1/business-card-new/internal/errors"
	"github.com/tidwall/gjson"
)

// TransientError wraps an error that is likely temporary and safe to
// retry on the next sync run.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err (or any error in its chain) is a
// TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

const (
	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxResponseBytes caps response body reads so a misbehaving server
	// cannot consume unbounded memory. Card trees are small.
	maxResponseBytes = 4 * 1024 * 1024

	// maxRedirects is the maximum number of HTTP redirects to follow.
	maxRedirects = 10
)

// Client talks to the remote document store over its JSON REST surface.
// Every node is addressable as <base>/<path>.json; GET on an absent
// node returns the JSON literal null.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host, so the auth token never leaks to a
// third-party domain.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// NewClient creates a replica client for the store rooted at baseURL.
// authToken may be empty for emulator or unauthenticated stores. If
// httpClient is nil, a client with a 30-second timeout and same-host
// redirect policy is used.
func NewClient(baseURL, authToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:       httpClientTimeout,
			CheckRedirect: sameHostRedirectPolicy,
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
	}
}

// nodeURL builds the REST URL for a node path under the owner.
func (c *Client) nodeURL(ownerID string, parts ...string) string {
	segs := append([]string{"users", ownerID}, parts...)
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}

	u := c.baseURL + "/" + strings.Join(segs, "/") + ".json"
	if c.authToken != "" {
		u += "?auth=" + url.QueryEscape(c.authToken)
	}

	return u
}

// do issues the request and returns the response body. Connectivity
// failures, timeouts and 5xx responses come back wrapped in
// TransientError; other non-2xx statuses are permanent errors.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("%s %s: %w", method, sanitizeURL(rawURL), err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The store reports failures as {"error": "..."}.
		msg := gjson.GetBytes(data, "error").Str
		if msg == "" {
			msg = sanitizeResponseBody(data)
		}

		err := fmt.Errorf("%s %s: status %d: %s", method, sanitizeURL(rawURL), resp.StatusCode, msg)
		if resp.StatusCode >= 500 {
			return nil, &TransientError{Err: err}
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrPermissionDenied, err)
		}

		return nil, err
	}

	return data, nil
}

// ListCards implements Replica.
func (c *Client) ListCards(ctx context.Context, ownerID string) ([]ListedCard, error) {
	data, err := c.do(ctx, http.MethodGet, c.nodeURL(ownerID, "cards"), nil)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}

	if isNull(data) {
		return nil, nil
	}

	var tree map[string]CardRecord
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding card tree: %w: %w", apperrors.ErrMalformedRecord, err)
	}

	listed := make([]ListedCard, 0, len(tree))
	for key, rec := range tree {
		listed = append(listed, ListedCard{Key: key, Record: rec})
	}

	// Key order, so callers see a stable listing.
	sort.Slice(listed, func(i, j int) bool { return listed[i].Key < listed[j].Key })

	return listed, nil
}

// SetCard implements Replica.
func (c *Client) SetCard(ctx context.Context, ownerID, key string, rec CardRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding card record: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPut, c.nodeURL(ownerID, "cards", key), body); err != nil {
		return fmt.Errorf("writing card %s: %w", key, err)
	}

	return nil
}

// DeleteCard implements Replica.
func (c *Client) DeleteCard(ctx context.Context, ownerID, key string) error {
	if _, err := c.do(ctx, http.MethodDelete, c.nodeURL(ownerID, "cards", key), nil); err != nil {
		return fmt.Errorf("deleting card %s: %w", key, err)
	}

	return nil
}

// GetProfile implements Replica.
func (c *Client) GetProfile(ctx context.Context, ownerID string) (card.Fields, bool, error) {
	data, err := c.do(ctx, http.MethodGet, c.nodeURL(ownerID, "profile"), nil)
	if err != nil {
		return card.Fields{}, false, fmt.Errorf("reading profile: %w", err)
	}

	if isNull(data) {
		return card.Fields{}, false, nil
	}

	var f card.Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return card.Fields{}, false, fmt.Errorf("decoding profile record: %w: %w", apperrors.ErrMalformedRecord, err)
	}

	return f, true, nil
}

// SetProfile implements Replica.
func (c *Client) SetProfile(ctx context.Context, ownerID string, f card.Fields) error {
	body, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding profile record: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPut, c.nodeURL(ownerID, "profile"), body); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}

	return nil
}

// isNull reports whether a response body is the JSON null an absent
// node returns.
func isNull(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// sanitizeURL strips the auth query parameter from a URL before it is
// included in an error message.
func sanitizeURL(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}

	return rawURL
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	sanitized := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}

		return r
	}, strings.ToValidUTF8(string(body), string(utf8.RuneError)))

	return strings.TrimSpace(sanitized)
}
