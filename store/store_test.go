package store

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/flashbots/arcpoll/tally"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s RevealStore) {
	ctx := context.Background()
	authority := solana.NewWallet().PublicKey()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &Reveal{
		Signature:  solana.Signature{1, 2, 3},
		Authority:  authority,
		PollID:     4,
		Tally:      tally.Tally{Yes: 7, No: 3, Maybe: 2},
		Strategy:   "event:RevealResultEvent",
		RecordedAt: base,
	}
	second := &Reveal{
		Signature:  solana.Signature{4, 5, 6},
		Authority:  authority,
		PollID:     4,
		Tally:      tally.Tally{Yes: 1 << 60},
		Strategy:   "relaxed counters at 8",
		RecordedAt: base.Add(time.Minute),
	}
	other := &Reveal{
		Signature:  solana.Signature{7},
		Authority:  authority,
		PollID:     5,
		RecordedAt: base,
	}
	for _, r := range []*Reveal{second, first, other} {
		require.NoError(t, s.SaveReveal(ctx, r))
	}

	got, err := s.LoadReveal(ctx, first.Signature)
	require.NoError(t, err)
	require.Equal(t, first.Tally, got.Tally)
	require.Equal(t, first.Authority, got.Authority)
	require.True(t, first.RecordedAt.Equal(got.RecordedAt))

	_, err = s.LoadReveal(ctx, solana.Signature{9})
	require.ErrorIs(t, err, ErrRevealNotFound)

	list, err := s.ListReveals(ctx, authority, 4)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.Signature, list[0].Signature)
	require.Equal(t, second.Tally, list[1].Tally)

	empty, err := s.ListReveals(ctx, solana.NewWallet().PublicKey(), 4)
	require.NoError(t, err)
	require.Empty(t, empty)

	// Saving again replaces the outcome.
	first.Tally = tally.Tally{Yes: 8, No: 3, Maybe: 2}
	require.NoError(t, s.SaveReveal(ctx, first))
	got, err = s.LoadReveal(ctx, first.Signature)
	require.NoError(t, err)
	require.Equal(t, uint64(8), got.Tally.Yes)
}

func TestInMemoryStore(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestInMemoryStoreCopies(t *testing.T) {
	s := NewInMemoryStore()
	r := &Reveal{Signature: solana.Signature{1}, Tally: tally.Tally{Yes: 1}}
	require.NoError(t, s.SaveReveal(context.Background(), r))
	r.Tally.Yes = 100

	got, err := s.LoadReveal(context.Background(), r.Signature)
	require.NoError(t, err)
	require.Equal(t, uint64(1), got.Tally.Yes)
	require.False(t, got.RecordedAt.IsZero())
}

func TestPostgresConnectionString(t *testing.T) {
	c := &PostgresConfig{Host: "db", Port: 5432, User: "poll", Password: "pw", Database: "reveals"}
	require.Equal(t, "host=db port=5432 user=poll password=pw dbname=reveals sslmode=disable", c.ConnectionString())

	c.SSLMode = "require"
	require.Contains(t, c.ConnectionString(), "sslmode=require")
}

// TestPostgresStore runs against a live database when ARCPOLL_TEST_POSTGRES_HOST is set.
func TestPostgresStore(t *testing.T) {
	host := os.Getenv("ARCPOLL_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("ARCPOLL_TEST_POSTGRES_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("ARCPOLL_TEST_POSTGRES_PORT"))
	if port == 0 {
		port = 5432
	}

	s, err := NewPostgresStore(&PostgresConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("ARCPOLL_TEST_POSTGRES_USER"),
		Password: os.Getenv("ARCPOLL_TEST_POSTGRES_PASSWORD"),
		Database: os.Getenv("ARCPOLL_TEST_POSTGRES_DB"),
	})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec("TRUNCATE poll_reveals")
	require.NoError(t, err)
	exerciseStore(t, s)
}
