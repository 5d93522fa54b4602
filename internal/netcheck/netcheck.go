// Package netcheck provides the connectivity oracle the sync engine is
// gated on. The oracle answers a single question, online or offline;
// deciding what to do about it belongs to the caller.
package netcheck

import (
	"context"
	"net/http"
	"time"
)

// probeTimeout bounds a single reachability probe. Sync triggers are
// frequent, so a slow answer is as useless as a negative one.
const probeTimeout = 5 * time.Second

// Oracle reports whether the remote store is reachable right now.
type Oracle interface {
	Online(ctx context.Context) bool
}

// Checker probes the remote store's base URL over HTTP. A HEAD request
// is tried first; servers that reject HEAD get a GET. Any response at
// all, including an error status, counts as online: reachability is the
// question, not authorization.
type Checker struct {
	httpClient *http.Client
	probeURL   string
}

// NewChecker creates a Checker probing the given URL. If httpClient is
// nil, a client with a 5-second timeout is used.
func NewChecker(probeURL string, httpClient *http.Client) *Checker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: probeTimeout}
	}

	return &Checker{httpClient: httpClient, probeURL: probeURL}
}

// Online implements Oracle.
func (c *Checker) Online(ctx context.Context) bool {
	if c.probe(ctx, http.MethodHead) {
		return true
	}

	return c.probe(ctx, http.MethodGet)
}

func (c *Checker) probe(ctx context.Context, method string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}

	resp.Body.Close()

	return true
}

// Always is an Oracle with a fixed answer. Tests and callers that gate
// connectivity elsewhere use Always(true).
type Always bool

// Online implements Oracle.
func (a Always) Online(context.Context) bool { return bool(a) }
