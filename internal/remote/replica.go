// Package remote reads and writes the shared remote document store: a
// JSON tree with one profile record and a set of card records per owner.
//
// Layout per owner:
//
//	users/<ownerID>/profile                     seven profile fields
//	users/<ownerID>/cards/<key>                 seven fields + source + createdAt
//
// Card keys are content fingerprints when canonical; legacy records may
// sit under arbitrary keys until a sync run migrates them.
package remote

import (
	"context"

	"github.com/pankajraut1/business-card-new/internal/card"
)

//go:generate mockgen -source=replica.go -destination=replica_mock.go -package=remote

// CardRecord is one card node in the remote tree.
type CardRecord struct {
	card.Fields
	Source    string `json:"source,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ListedCard pairs a card record with the node key it was found under.
type ListedCard struct {
	Key    string
	Record CardRecord
}

// Replica is the remote store surface the reconciler depends on. All
// calls are fallible network operations; no ordering is guaranteed
// between concurrent calls, and retries belong to re-invocation of the
// sync run, not to the implementation.
type Replica interface {
	// ListCards returns every card node under the owner, in key order.
	// An absent tree yields an empty slice.
	ListCards(ctx context.Context, ownerID string) ([]ListedCard, error)

	// SetCard writes (or overwrites) the card node at key.
	SetCard(ctx context.Context, ownerID, key string, rec CardRecord) error

	// DeleteCard removes the card node at key. Removing an absent node
	// is not an error.
	DeleteCard(ctx context.Context, ownerID, key string) error

	// GetProfile returns the owner's profile fields. The second return
	// is false when no profile record exists.
	GetProfile(ctx context.Context, ownerID string) (card.Fields, bool, error)

	// SetProfile replaces the owner's profile record whole; no field
	// merge happens remotely.
	SetProfile(ctx context.Context, ownerID string, f card.Fields) error
}
