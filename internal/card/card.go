// Package card holds the domain types for the contact-card manager and
// the content-key identity scheme shared by the local store, the remote
// replica, and the reconciler.
//
// A card has no stable cross-replica identifier. Two cards are the same
// logical card iff their content keys are equal: the seven fields trimmed,
// email lower-cased, joined with "|". The SHA-256 hex digest of that key
// (the fingerprint) is the remote record key, which makes remote writes
// naturally idempotent.
package card

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Source tags recording how a card entered the system. Manually entered
// cards carry no tag.
const (
	SourceScan      = "scan"
	SourceLocalSync = "local_sync"
)

// keyDelimiter joins the seven fields into a content key. Not expected
// in free text.
const keyDelimiter = "|"

// timestampLayout is the UTC ISO-8601 layout stamped on cards. It is
// human-readable and sorts lexicographically.
const timestampLayout = "2006-01-02T15:04:05Z"

// Fields is the tuple of free-text card fields. All fields are optional
// individually; in practice at least one is non-empty.
type Fields struct {
	Name       string `json:"Name"`
	Occupation string `json:"Occupation"`
	Email      string `json:"Email"`
	Phone      string `json:"Phone"`
	Instagram  string `json:"Instagram"`
	Website    string `json:"Website"`
	Address    string `json:"Address"`
}

// Card is a saved contact card. RowID is the local autoincrement id and
// has no meaning remotely. CreatedAt is UTC ISO-8601, assigned at
// insertion time.
type Card struct {
	RowID     int64
	OwnerID   string
	Fields    Fields
	CreatedAt string
	Source    string
}

// Profile is the owner's single editable record plus its local sync
// metadata. Dirty means the local copy has unsynced authority over the
// remote record.
type Profile struct {
	Fields   Fields    `json:"fields"`
	SyncedAt time.Time `json:"synced_at"`
	Dirty    bool      `json:"dirty"`
}

// ContentKey returns the canonical identity string for the fields: each
// field trimmed of surrounding whitespace, email additionally
// lower-cased, all seven joined with "|". Only email is case-folded;
// case differences in any other field yield a different key.
func (f Fields) ContentKey() string {
	return strings.Join([]string{
		strings.TrimSpace(f.Name),
		strings.TrimSpace(f.Occupation),
		strings.TrimSpace(strings.ToLower(f.Email)),
		strings.TrimSpace(f.Phone),
		strings.TrimSpace(f.Instagram),
		strings.TrimSpace(f.Website),
		strings.TrimSpace(f.Address),
	}, keyDelimiter)
}

// Fingerprint returns the lowercase hex SHA-256 of the content key.
// Used as the remote record key.
func (f Fields) Fingerprint() string {
	return FingerprintKey(f.ContentKey())
}

// FingerprintKey hashes an already-derived content key.
func FingerprintKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// IsEmpty reports whether every field is blank after trimming.
func (f Fields) IsEmpty() bool {
	return strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Occupation) == "" &&
		strings.TrimSpace(f.Email) == "" &&
		strings.TrimSpace(f.Phone) == "" &&
		strings.TrimSpace(f.Instagram) == "" &&
		strings.TrimSpace(f.Website) == "" &&
		strings.TrimSpace(f.Address) == ""
}

// Timestamp formats t as the UTC ISO-8601 string stamped on card records.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
