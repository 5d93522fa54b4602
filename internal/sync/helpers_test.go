package sync

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/pankajraut1/business-card-new/internal/card"
	"github.com/pankajraut1/business-card-new/internal/netcheck"
	"github.com/pankajraut1/business-card-new/internal/remote"
	"github.com/pankajraut1/business-card-new/internal/store"
	"github.com/stretchr/testify/require"
)

const testOwner = "owner-test-001"

// fakeReplica is an in-memory Replica that counts mutating calls, so
// tests can assert idempotence (zero writes and deletes on a second
// run) without a network.
type fakeReplica struct {
	mu    sync.Mutex
	cards map[string]map[string]remote.CardRecord // owner -> key -> record
	prof  map[string]card.Fields

	listCalls   int
	setCalls    int
	deleteCalls int

	// listGate, when set, blocks ListCards until closed. Used by the
	// single-flight test to hold a run open.
	listGate chan struct{}
}

func newFakeReplica() *fakeReplica {
	return &fakeReplica{
		cards: make(map[string]map[string]remote.CardRecord),
		prof:  make(map[string]card.Fields),
	}
}

func (f *fakeReplica) ListCards(ctx context.Context, ownerID string) ([]remote.ListedCard, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var listed []remote.ListedCard
	for key, rec := range f.cards[ownerID] {
		listed = append(listed, remote.ListedCard{Key: key, Record: rec})
	}

	sort.Slice(listed, func(i, j int) bool { return listed[i].Key < listed[j].Key })

	return listed, nil
}

func (f *fakeReplica) SetCard(ctx context.Context, ownerID, key string, rec remote.CardRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.setCalls++

	if f.cards[ownerID] == nil {
		f.cards[ownerID] = make(map[string]remote.CardRecord)
	}

	f.cards[ownerID][key] = rec

	return nil
}

func (f *fakeReplica) DeleteCard(ctx context.Context, ownerID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls++
	delete(f.cards[ownerID], key)

	return nil
}

func (f *fakeReplica) GetProfile(ctx context.Context, ownerID string) (card.Fields, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields, ok := f.prof[ownerID]

	return fields, ok, nil
}

func (f *fakeReplica) SetProfile(ctx context.Context, ownerID string, fields card.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prof[ownerID] = fields

	return nil
}

func (f *fakeReplica) ownerCards(ownerID string) map[string]remote.CardRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]remote.CardRecord, len(f.cards[ownerID]))
	for k, v := range f.cards[ownerID] {
		out[k] = v
	}

	return out
}

func (f *fakeReplica) resetCounters() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls, f.setCalls, f.deleteCalls = 0, 0, 0
}

// newTestSyncer wires a Syncer to temp-dir stores and the given replica.
func newTestSyncer(t *testing.T, replica remote.Replica) (*Syncer, *store.CardStore, *store.ProfileCache) {
	t.Helper()

	dir := t.TempDir()

	cards, err := store.OpenCards(filepath.Join(dir, "cards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cards.Close() })

	profiles, err := store.OpenProfiles(filepath.Join(dir, "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { profiles.Close() })

	s := New(Config{
		Cards:        cards,
		Profiles:     profiles,
		Replica:      replica,
		Oracle:       netcheck.Always(true),
		AccountEmail: "account@x.com",
	}, slog.Default())

	return s, cards, profiles
}
