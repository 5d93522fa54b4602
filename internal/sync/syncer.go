// Package sync implements the convergence engine between the local card
// store and the remote replica.
//
// Cards converge by content identity: every run first collapses remote
// duplicate records onto their fingerprint keys, then unions local-only
// and remote-only cards in both directions. The profile converges by a
// dirty-flag rule: a dirty local cache overwrites the remote record, a
// clean one is overwritten by it. Every pass is idempotent, so a run
// aborted by connectivity failure is simply resumed by the next trigger.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pankajraut1/business-card-new/internal/card"
	"github.com/pankajraut1/business-card-new/internal/netcheck"
	"github.com/pankajraut1/business-card-new/internal/remote"
	"github.com/pankajraut1/business-card-new/internal/store"
	"golang.org/x/sync/singleflight"
)

// Syncer reconciles one owner's cards and profile between the local
// store and the remote replica. It is stateless between runs; all
// durable state lives in the two stores. Safe for concurrent use:
// overlapping triggers for the same owner share a single run.
type Syncer struct {
	cards    *store.CardStore
	profiles *store.ProfileCache
	replica  remote.Replica
	oracle   netcheck.Oracle
	logger   *slog.Logger

	// accountEmail is the authenticated account's email, used when a
	// profile record has no email of its own.
	accountEmail string

	// flight collapses concurrently triggered runs per owner. Without
	// it overlapping runs are still safe (fingerprint writes and
	// Exists-guarded inserts are idempotent) but waste network calls.
	flight singleflight.Group
}

// Config holds the collaborators a Syncer needs.
type Config struct {
	Cards        *store.CardStore
	Profiles     *store.ProfileCache
	Replica      remote.Replica
	Oracle       netcheck.Oracle
	AccountEmail string
}

// New creates a Syncer from the given config.
func New(cfg Config, logger *slog.Logger) *Syncer {
	return &Syncer{
		cards:        cfg.Cards,
		profiles:     cfg.Profiles,
		replica:      cfg.Replica,
		oracle:       cfg.Oracle,
		accountEmail: cfg.AccountEmail,
		logger:       logger,
	}
}

// SyncAll runs a full sync pass for the owner: profile first, then
// cards. Each phase's error is logged and swallowed so a failure in one
// never blocks the other, and no error ever reaches the triggering
// caller; the next trigger retries from wherever this run stopped.
// Concurrent calls for the same owner join the in-flight run instead of
// starting another.
func (s *Syncer) SyncAll(ctx context.Context, ownerID string) {
	s.flight.Do(ownerID, func() (any, error) { //nolint:errcheck // the run never returns an error
		if !s.oracle.Online(ctx) {
			s.logger.Info("offline, skipping sync", slog.String("owner_id", ownerID))
			return nil, nil
		}

		if err := s.SyncProfile(ctx, ownerID); err != nil {
			s.logger.Warn("profile sync failed",
				slog.String("owner_id", ownerID),
				slog.String("error", err.Error()),
			)
		}

		if err := s.SyncCards(ctx, ownerID); err != nil {
			s.logger.Warn("card sync failed",
				slog.String("owner_id", ownerID),
				slog.String("error", err.Error()),
			)
		}

		return nil, nil
	})
}

// SyncProfile resolves the profile by the dirty flag. Dirty means the
// local cache has unsynced authority: push it whole and clear dirty. A
// failed push leaves dirty set, so the next run retries; that
// re-invocation is the engine's only retry mechanism. Clean means the
// remote record is authoritative: pull it whole into the cache, leaving
// dirty untouched.
func (s *Syncer) SyncProfile(ctx context.Context, ownerID string) error {
	dirty, err := s.profiles.IsDirty(ownerID)
	if err != nil {
		return fmt.Errorf("reading profile dirty flag: %w", err)
	}

	if dirty {
		prof, _, err := s.profiles.Get(ownerID)
		if err != nil {
			return fmt.Errorf("reading profile cache: %w", err)
		}

		fields := prof.Fields
		if strings.TrimSpace(fields.Email) == "" {
			fields.Email = s.accountEmail
		}

		if err := s.replica.SetProfile(ctx, ownerID, fields); err != nil {
			// Dirty stays set; the next run pushes again.
			return fmt.Errorf("pushing profile: %w", err)
		}

		if err := s.profiles.ClearDirty(ownerID); err != nil {
			return fmt.Errorf("clearing profile dirty flag: %w", err)
		}

		s.logger.Info("local profile pushed to remote", slog.String("owner_id", ownerID))

		return nil
	}

	fields, _, err := s.replica.GetProfile(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("pulling profile: %w", err)
	}

	if strings.TrimSpace(fields.Email) == "" {
		fields.Email = s.accountEmail
	}

	// Put preserves the dirty flag, which stays false here.
	if err := s.profiles.Put(ownerID, fields); err != nil {
		return fmt.Errorf("caching remote profile: %w", err)
	}

	s.logger.Info("remote profile cached locally", slog.String("owner_id", ownerID))

	return nil
}

// SyncCards converges the owner's card set in six strictly sequential
// steps: list remote records, group them by content key, collapse each
// group onto its fingerprint key, recompute the remote key set, push
// local-only cards, and pull remote-only cards. With no external
// mutation between runs, a second run performs zero remote writes and
// deletes and zero local inserts.
func (s *Syncer) SyncCards(ctx context.Context, ownerID string) error {
	listed, err := s.replica.ListCards(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("listing remote cards: %w", err)
	}

	groups := groupByContentKey(listed)

	var stats runStats

	// cloudSet is every content key present remotely once
	// canonicalization finishes.
	cloudSet := make(map[string]struct{}, len(groups))
	canonical := make([]remote.CardRecord, 0, len(groups))

	for key, members := range groups {
		rec, err := s.canonicalizeGroup(ctx, ownerID, key, members, &stats)
		if err != nil {
			// A partial group (canonical written, some duplicates left)
			// is regrouped and retried by the next run.
			return fmt.Errorf("canonicalizing remote duplicates: %w", err)
		}

		cloudSet[key] = struct{}{}
		canonical = append(canonical, rec)
	}

	if err := s.pushLocalOnly(ctx, ownerID, cloudSet, &stats); err != nil {
		return err
	}

	if err := s.pullRemoteOnly(ctx, ownerID, canonical, &stats); err != nil {
		return err
	}

	s.logger.Info("card sync complete",
		slog.String("owner_id", ownerID),
		slog.Int("remote_records", len(listed)),
		slog.Int("canonicalized", stats.canonicalized),
		slog.Int("deleted_duplicates", stats.deleted),
		slog.Int("pushed", stats.pushed),
		slog.Int("pulled", stats.pulled),
	)

	return nil
}

type runStats struct {
	canonicalized int
	deleted       int
	pushed        int
	pulled        int
}

// groupByContentKey buckets remote records sharing one logical identity.
// A group larger than one means duplicate remote records, typically
// legacy nodes keyed before the fingerprint scheme existed.
func groupByContentKey(listed []remote.ListedCard) map[string][]remote.ListedCard {
	groups := make(map[string][]remote.ListedCard)

	for _, lc := range listed {
		key := lc.Record.ContentKey()
		groups[key] = append(groups[key], lc)
	}

	return groups
}

// canonicalizeGroup leaves exactly one record for the group's content
// key, stored under the fingerprint key, and returns it. The content
// source is the member with the earliest createdAt; members without a
// timestamp sort last, and ties break on the smallest node key, so the
// choice is reproducible across runs. An already-canonical singleton is
// left untouched.
func (s *Syncer) canonicalizeGroup(ctx context.Context, ownerID, key string, members []remote.ListedCard, stats *runStats) (remote.CardRecord, error) {
	fingerprint := card.FingerprintKey(key)

	if len(members) == 1 && members[0].Key == fingerprint {
		return members[0].Record, nil
	}

	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if (a.Record.CreatedAt == "") != (b.Record.CreatedAt == "") {
			return a.Record.CreatedAt != ""
		}

		if a.Record.CreatedAt != b.Record.CreatedAt {
			return a.Record.CreatedAt < b.Record.CreatedAt
		}

		return a.Key < b.Key
	})

	source := members[0]

	rec := source.Record
	if rec.Source == "" {
		rec.Source = card.SourceLocalSync
	}

	if rec.CreatedAt == "" {
		rec.CreatedAt = card.Timestamp(time.Now())
	}

	// The source's own payload is preserved verbatim when it already
	// sits at the fingerprint key; otherwise write the canonical node.
	if source.Key != fingerprint || rec != source.Record {
		if err := s.replica.SetCard(ctx, ownerID, fingerprint, rec); err != nil {
			return remote.CardRecord{}, fmt.Errorf("writing canonical record %s: %w", fingerprint, err)
		}

		stats.canonicalized++
	}

	for _, m := range members {
		if m.Key == fingerprint {
			continue
		}

		if err := s.replica.DeleteCard(ctx, ownerID, m.Key); err != nil {
			return remote.CardRecord{}, fmt.Errorf("deleting duplicate record %s: %w", m.Key, err)
		}

		stats.deleted++
	}

	return rec, nil
}

// pushLocalOnly uploads every local card whose content key is absent
// remotely, keyed by its fingerprint. Each pushed key enters cloudSet
// immediately so a duplicate local row cannot push twice in one run.
func (s *Syncer) pushLocalOnly(ctx context.Context, ownerID string, cloudSet map[string]struct{}, stats *runStats) error {
	local, err := s.cards.List(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("listing local cards: %w", err)
	}

	for _, c := range local {
		key := c.Fields.ContentKey()
		if _, ok := cloudSet[key]; ok {
			continue
		}

		rec := remote.CardRecord{
			Fields:    c.Fields,
			Source:    card.SourceLocalSync,
			CreatedAt: card.Timestamp(time.Now()),
		}
		if err := s.replica.SetCard(ctx, ownerID, card.FingerprintKey(key), rec); err != nil {
			return fmt.Errorf("pushing local card: %w", err)
		}

		cloudSet[key] = struct{}{}
		stats.pushed++
	}

	return nil
}

// pullRemoteOnly inserts every canonical remote card whose exact field
// tuple is not already present locally. The Exists guard keeps repeated
// pulls from duplicating rows.
func (s *Syncer) pullRemoteOnly(ctx context.Context, ownerID string, canonical []remote.CardRecord, stats *runStats) error {
	for _, rec := range canonical {
		exists, err := s.cards.Exists(ctx, ownerID, rec.Fields)
		if err != nil {
			return fmt.Errorf("checking local card existence: %w", err)
		}

		if exists {
			continue
		}

		if _, err := s.cards.InsertWithSource(ctx, ownerID, rec.Fields, card.SourceLocalSync); err != nil {
			return fmt.Errorf("inserting pulled card: %w", err)
		}

		stats.pulled++
	}

	return nil
}
