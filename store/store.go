package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/flashbots/arcpoll/tally"
	"github.com/gagliardetto/solana-go"
)

// ErrRevealNotFound is returned when no reveal is archived under a signature.
var ErrRevealNotFound = errors.New("reveal not found")

// Reveal is a decoded reveal outcome for one poll.
type Reveal struct {
	Signature  solana.Signature `json:"signature"`
	Authority  solana.PublicKey `json:"authority"`
	PollID     uint32           `json:"pollId"`
	Tally      tally.Tally      `json:"tally"`
	Strategy   string           `json:"strategy"`
	RecordedAt time.Time        `json:"recordedAt"`
}

// RevealStore archives decoded reveal outcomes keyed by transaction signature.
type RevealStore interface {
	SaveReveal(ctx context.Context, r *Reveal) error
	LoadReveal(ctx context.Context, sig solana.Signature) (*Reveal, error)
	ListReveals(ctx context.Context, authority solana.PublicKey, pollID uint32) ([]*Reveal, error)
	Close() error
}

// InMemoryStore implements RevealStore for testing without a database.
type InMemoryStore struct {
	mu      sync.RWMutex
	reveals map[solana.Signature]*Reveal
}

// NewInMemoryStore creates an in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		reveals: make(map[solana.Signature]*Reveal),
	}
}

// SaveReveal stores a reveal, replacing any previous one for the signature.
func (s *InMemoryStore) SaveReveal(ctx context.Context, r *Reveal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	if cp.RecordedAt.IsZero() {
		cp.RecordedAt = time.Now().UTC()
	}
	s.reveals[r.Signature] = &cp
	return nil
}

// LoadReveal returns the reveal recorded for sig.
func (s *InMemoryStore) LoadReveal(ctx context.Context, sig solana.Signature) (*Reveal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reveals[sig]
	if !ok {
		return nil, ErrRevealNotFound
	}
	cp := *r
	return &cp, nil
}

// ListReveals returns the reveals of one poll, oldest first.
func (s *InMemoryStore) ListReveals(ctx context.Context, authority solana.PublicKey, pollID uint32) ([]*Reveal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*Reveal{}
	for _, r := range s.reveals {
		if r.Authority.Equals(authority) && r.PollID == pollID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].Signature.String() < out[j].Signature.String()
		}
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out, nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}
