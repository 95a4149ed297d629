// Package board persists the guild's active bounty list. The whole list is
// one JSON document, read and replaced atomically, stored either in a local
// file or a remote JSON-bin endpoint.
package board

import (
	"context"
	"errors"
	"time"
)

// Bounty is one entry on the board.
type Bounty struct {
	ID        string    `json:"id"`
	BossID    string    `json:"bossId"`
	BossName  string    `json:"bossName"`
	Reward    string    `json:"reward"`
	Status    string    `json:"status"` // open | claimed | completed
	ClaimedBy string    `json:"claimedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrNotFound reports a patch against an id the document does not contain.
var ErrNotFound = errors.New("bounty not found")

// Store is the document contract: list everything, replace everything, or
// patch one entry in place.
type Store interface {
	List(ctx context.Context) ([]Bounty, error)
	Replace(ctx context.Context, bounties []Bounty) error
	Patch(ctx context.Context, id string, fn func(*Bounty)) (Bounty, error)
}

// patch implements read-modify-write over List/Replace; both backends share
// it since neither has per-entry addressing.
func patch(ctx context.Context, s Store, id string, fn func(*Bounty)) (Bounty, error) {
	bounties, err := s.List(ctx)
	if err != nil {
		return Bounty{}, err
	}

	for i := range bounties {
		if bounties[i].ID != id {
			continue
		}
		fn(&bounties[i])
		bounties[i].UpdatedAt = time.Now()
		if err := s.Replace(ctx, bounties); err != nil {
			return Bounty{}, err
		}
		return bounties[i], nil
	}

	return Bounty{}, ErrNotFound
}
