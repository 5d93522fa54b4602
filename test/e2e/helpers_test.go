package e2e_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pankajraut1/business-card-new/internal/card"
	"github.com/pankajraut1/business-card-new/internal/netcheck"
	"github.com/pankajraut1/business-card-new/internal/remote"
	"github.com/pankajraut1/business-card-new/internal/store"
	cardsync "github.com/pankajraut1/business-card-new/internal/sync"
)

const (
	testOwner = "owner-e2e-001"
	testEmail = "account@example.com"
)

// harness runs an in-memory JSON-tree document store behind an HTTP
// server and fabricates devices syncing against it.
type harness struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	nodes    map[string]json.RawMessage
	requests []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		t:     t,
		nodes: make(map[string]json.RawMessage),
	}
	h.srv = httptest.NewServer(h)
	t.Cleanup(h.srv.Close)

	return h
}

// ServeHTTP mimics the remote store's REST surface. GET on a path with
// no stored leaf assembles the subtree from its children; GET on an
// absent path returns null. Paths arrive as /users/<owner>/... with a
// .json suffix.
func (h *harness) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	path := strings.TrimSuffix(r.URL.Path, ".json")
	h.requests = append(h.requests, r.Method+" "+path)

	switch r.Method {
	case http.MethodGet:
		if body, ok := h.nodes[path]; ok {
			w.Write(body)
			return
		}

		subtree := h.assembleLocked(path)
		if subtree == nil {
			w.Write([]byte("null"))
			return
		}

		w.Write(subtree)

	case http.MethodPut:
		var body json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "Invalid data"}`))
			return
		}

		h.nodes[path] = body
		w.Write(body)

	case http.MethodDelete:
		delete(h.nodes, path)
		for p := range h.nodes {
			if strings.HasPrefix(p, path+"/") {
				delete(h.nodes, p)
			}
		}

		w.Write([]byte("null"))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// assembleLocked builds the JSON object of direct children under path,
// or nil when there are none. Callers hold h.mu.
func (h *harness) assembleLocked(path string) json.RawMessage {
	children := make(map[string]json.RawMessage)
	for p, body := range h.nodes {
		rest, ok := strings.CutPrefix(p, path+"/")
		if !ok || strings.Contains(rest, "/") {
			continue
		}

		children[rest] = body
	}

	if len(children) == 0 {
		return nil
	}

	out, err := json.Marshal(children)
	require.NoError(h.t, err)

	return out
}

// seedCard stores a card record at an arbitrary node key, the way old
// clients wrote push-generated keys.
func (h *harness) seedCard(key string, rec remote.CardRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	body, err := json.Marshal(rec)
	require.NoError(h.t, err)
	h.nodes["/users/"+testOwner+"/cards/"+key] = body
}

// cardKeys returns the node keys currently stored under the owner's
// cards subtree.
func (h *harness) cardKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var keys []string
	for p := range h.nodes {
		if rest, ok := strings.CutPrefix(p, "/users/"+testOwner+"/cards/"); ok {
			keys = append(keys, rest)
		}
	}

	return keys
}

// writeCount returns how many PUT and DELETE requests the store has
// served since the given offset into the request log.
func (h *harness) writeCount(since int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	for _, req := range h.requests[since:] {
		if strings.HasPrefix(req, http.MethodPut) || strings.HasPrefix(req, http.MethodDelete) {
			count++
		}
	}

	return count
}

func (h *harness) requestCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.requests)
}

// device is one simulated client: its own local stores plus a syncer
// pointed at the shared harness store.
type device struct {
	cards    *store.CardStore
	profiles *store.ProfileCache
	syncer   *cardsync.Syncer
}

func (h *harness) newDevice(t *testing.T) *device {
	t.Helper()

	dir := t.TempDir()

	cards, err := store.OpenCards(filepath.Join(dir, "cards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cards.Close() })

	profiles, err := store.OpenProfiles(filepath.Join(dir, "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { profiles.Close() })

	return h.newDeviceWith(t, cards, profiles, netcheck.Always(true))
}

func (h *harness) newDeviceWith(t *testing.T, cards *store.CardStore, profiles *store.ProfileCache, oracle netcheck.Oracle) *device {
	t.Helper()

	syncer := cardsync.New(cardsync.Config{
		Cards:        cards,
		Profiles:     profiles,
		Replica:      remote.NewClient(h.srv.URL, "", nil),
		Oracle:       oracle,
		AccountEmail: testEmail,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &device{cards: cards, profiles: profiles, syncer: syncer}
}

func janeFields() card.Fields {
	return card.Fields{
		Name:       "jane doe",
		Occupation: "designer",
		Email:      "jane@x.com",
		Phone:      "1234567890",
	}
}

func bobFields() card.Fields {
	return card.Fields{
		Name:  "bob lee",
		Email: "bob@y.com",
		Phone: "5550001111",
	}
}
