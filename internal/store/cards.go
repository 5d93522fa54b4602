// Package store provides the on-device persistence for the card manager:
// an append-only SQLite table of cards per owner and a bbolt-backed
// profile cache with a dirty flag.
//
// The card table is the local replica the reconciler converges against.
// It enforces no uniqueness itself; the reconciler dedups via Exists
// before every insert it performs. Manual entry paths may insert
// duplicates, which the remote canonicalization pass later collapses.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pankajraut1/business-card-new/internal/card"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	// busyTimeoutMs is how long SQLite waits on a locked database before
	// returning SQLITE_BUSY. Concurrent sync triggers can overlap briefly.
	busyTimeoutMs = 5000

	// dbDirPerm is the permission mode for the database directory.
	dbDirPerm = 0o700
)

const createCardsTable = `
CREATE TABLE IF NOT EXISTS cards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id TEXT NOT NULL,
	name TEXT,
	occupation TEXT,
	email TEXT,
	phone TEXT,
	instagram TEXT,
	website TEXT,
	address TEXT,
	source TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_cards_owner ON cards(owner_id);
`

// CardStore is the SQLite-backed local card table.
type CardStore struct {
	db *sql.DB
}

// OpenCards opens (creating if needed) the card database at path and
// ensures the schema exists. The caller must Close it.
func OpenCards(path string) (*CardStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dbDirPerm); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening card database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging card database: %w", err)
	}

	// WAL keeps list queries readable while a sync run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(createCardsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cards schema: %w", err)
	}

	return &CardStore{db: db}, nil
}

// Close closes the underlying database.
func (s *CardStore) Close() error {
	return s.db.Close()
}

// Insert appends a card with no source tag (manual entry). Returns the
// new row id. Callers wanting dedup must check Exists first.
func (s *CardStore) Insert(ctx context.Context, ownerID string, f card.Fields) (int64, error) {
	return s.InsertWithSource(ctx, ownerID, f, "")
}

// InsertWithSource appends a card with a source tag (card.SourceScan or
// card.SourceLocalSync). The creation timestamp is stamped here, in UTC.
func (s *CardStore) InsertWithSource(ctx context.Context, ownerID string, f card.Fields, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (owner_id, name, occupation, email, phone, instagram, website, address, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerID, f.Name, f.Occupation, f.Email, f.Phone, f.Instagram, f.Website, f.Address,
		source, card.Timestamp(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting card: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted row id: %w", err)
	}

	return id, nil
}

// Exists reports whether a row with exactly these field values (case
// sensitive, no trimming) exists for the owner. This is the dedup guard
// the reconciler uses before pulling a remote card into the table.
func (s *CardStore) Exists(ctx context.Context, ownerID string, f card.Fields) (bool, error) {
	var one int

	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM cards
		 WHERE owner_id = ? AND name = ? AND occupation = ? AND email = ? AND phone = ? AND instagram = ? AND website = ? AND address = ?
		 LIMIT 1`,
		ownerID, f.Name, f.Occupation, f.Email, f.Phone, f.Instagram, f.Website, f.Address,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("checking card existence: %w", err)
	}

	return true, nil
}

// List returns the owner's cards newest-first by creation timestamp.
// Databases created before the created_at column existed make the
// ordered query fail; those fall back once to an unordered query so an
// old install still syncs.
func (s *CardStore) List(ctx context.Context, ownerID string) ([]card.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, occupation, email, phone, instagram, website, address, source, created_at
		 FROM cards WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return s.listLegacy(ctx, ownerID)
	}
	defer rows.Close()

	return scanCards(rows)
}

// listLegacy is the schema-tolerant fallback for List: only the columns
// every historical schema version has, in insertion order.
func (s *CardStore) listLegacy(ctx context.Context, ownerID string) ([]card.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, occupation, email, phone, instagram, website, address
		 FROM cards WHERE owner_id = ?`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	var cards []card.Card

	for rows.Next() {
		var c card.Card
		if err := rows.Scan(&c.RowID, &c.OwnerID,
			&c.Fields.Name, &c.Fields.Occupation, &c.Fields.Email, &c.Fields.Phone,
			&c.Fields.Instagram, &c.Fields.Website, &c.Fields.Address,
		); err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}

		cards = append(cards, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}

	return cards, nil
}

func scanCards(rows *sql.Rows) ([]card.Card, error) {
	var cards []card.Card

	for rows.Next() {
		var (
			c         card.Card
			source    sql.NullString
			createdAt sql.NullString
		)

		if err := rows.Scan(&c.RowID, &c.OwnerID,
			&c.Fields.Name, &c.Fields.Occupation, &c.Fields.Email, &c.Fields.Phone,
			&c.Fields.Instagram, &c.Fields.Website, &c.Fields.Address,
			&source, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}

		c.Source = source.String
		c.CreatedAt = createdAt.String
		cards = append(cards, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}

	return cards, nil
}

// DeleteByID removes a single row. Returns whether a row was deleted.
func (s *CardStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting card %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}

	return n > 0, nil
}

// DeleteByContent removes every row of the owner matching the exact
// field values and returns the count. Used when the user deletes a card
// that may exist more than once from manual entry.
func (s *CardStore) DeleteByContent(ctx context.Context, ownerID string, f card.Fields) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cards
		 WHERE owner_id = ? AND name = ? AND occupation = ? AND email = ? AND phone = ? AND instagram = ? AND website = ? AND address = ?`,
		ownerID, f.Name, f.Occupation, f.Email, f.Phone, f.Instagram, f.Website, f.Address,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting cards by content: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}

	return n, nil
}

// ClearOwner removes all of an owner's cards. Used on sign-out.
func (s *CardStore) ClearOwner(ctx context.Context, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("clearing cards for owner: %w", err)
	}

	return nil
}
