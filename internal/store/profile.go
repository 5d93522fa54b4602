package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pankajraut1/business-card-new/internal/card"
	bolt "go.etcd.io/bbolt"
)

const (
	// cacheDirPerm is the permission mode for the profile cache directory.
	cacheDirPerm = fs.FileMode(0o700)

	// cacheFilePerm is the permission mode for the profile cache file.
	cacheFilePerm = fs.FileMode(0o600)

	// cacheOpenTimeout is the maximum time to wait for the bolt file lock.
	cacheOpenTimeout = 5 * time.Second
)

var profileKey = []byte("profile")

func ownerBucket(ownerID string) []byte {
	return []byte("owner:" + ownerID)
}

// ProfileCache stores the single cached profile record per owner, plus
// the last-synced-at timestamp and the dirty flag that drives profile
// conflict resolution. Dirty is the single source of truth: true means
// the local copy has unsynced authority, false means the remote record
// is authoritative.
type ProfileCache struct {
	db *bolt.DB
}

// OpenProfiles opens the profile cache at path, creating it if needed.
func OpenProfiles(path string) (*ProfileCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), cacheDirPerm); err != nil {
		return nil, fmt.Errorf("creating profile cache directory: %w", err)
	}

	db, err := bolt.Open(path, cacheFilePerm, &bolt.Options{Timeout: cacheOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening profile cache: %w", err)
	}

	return &ProfileCache{db: db}, nil
}

// Close closes the cache.
func (p *ProfileCache) Close() error {
	return p.db.Close()
}

// Get returns the cached profile for the owner. The second return is
// false when no profile has ever been saved.
func (p *ProfileCache) Get(ownerID string) (card.Profile, bool, error) {
	var (
		prof  card.Profile
		found bool
	)

	err := p.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ownerBucket(ownerID))
		if b == nil {
			return nil
		}

		v := b.Get(profileKey)
		if v == nil {
			return nil
		}

		if err := json.Unmarshal(v, &prof); err != nil {
			return fmt.Errorf("decoding profile record: %w", err)
		}

		found = true

		return nil
	})
	if err != nil {
		return card.Profile{}, false, fmt.Errorf("reading profile: %w", err)
	}

	return prof, found, nil
}

// Put overwrites the cached fields and stamps the last-synced-at time.
// The dirty flag is left exactly as it was: reconciliation pulls call
// Put without claiming local authority, and user edits set dirty
// explicitly via MarkDirty.
func (p *ProfileCache) Put(ownerID string, f card.Fields) error {
	return p.update(ownerID, func(prof *card.Profile) {
		prof.Fields = f
		prof.SyncedAt = time.Now().UTC()
	})
}

// MarkDirty records that the local profile has unsynced edits.
func (p *ProfileCache) MarkDirty(ownerID string) error {
	return p.update(ownerID, func(prof *card.Profile) {
		prof.Dirty = true
	})
}

// ClearDirty records that the local profile has been pushed.
func (p *ProfileCache) ClearDirty(ownerID string) error {
	return p.update(ownerID, func(prof *card.Profile) {
		prof.Dirty = false
	})
}

// IsDirty reports whether the local profile has unsynced authority.
// A missing profile is clean.
func (p *ProfileCache) IsDirty(ownerID string) (bool, error) {
	prof, _, err := p.Get(ownerID)
	if err != nil {
		return false, err
	}

	return prof.Dirty, nil
}

// Has reports whether a profile has ever been saved for the owner.
func (p *ProfileCache) Has(ownerID string) (bool, error) {
	_, found, err := p.Get(ownerID)
	return found, err
}

// LastSyncedAt returns when the cache was last written by Put, or the
// zero time if never.
func (p *ProfileCache) LastSyncedAt(ownerID string) (time.Time, error) {
	prof, _, err := p.Get(ownerID)
	if err != nil {
		return time.Time{}, err
	}

	return prof.SyncedAt, nil
}

// update applies fn to the stored record (zero value if absent) and
// writes it back in one transaction.
func (p *ProfileCache) update(ownerID string, fn func(*card.Profile)) error {
	err := p.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(ownerBucket(ownerID))
		if err != nil {
			return err
		}

		var prof card.Profile

		if v := b.Get(profileKey); v != nil {
			if err := json.Unmarshal(v, &prof); err != nil {
				return fmt.Errorf("decoding profile record: %w", err)
			}
		}

		fn(&prof)

		data, err := json.Marshal(prof)
		if err != nil {
			return fmt.Errorf("encoding profile record: %w", err)
		}

		return b.Put(profileKey, data)
	})
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}

	return nil
}
