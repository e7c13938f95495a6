package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flashbots/arcpoll/tally"
	"github.com/gagliardetto/solana-go"
	_ "github.com/lib/pq"
)

// PostgresStore implements RevealStore with PostgreSQL persistence.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS poll_reveals (
		signature VARCHAR(128) PRIMARY KEY,
		authority VARCHAR(64) NOT NULL,
		poll_id BIGINT NOT NULL,
		yes_votes NUMERIC(20) NOT NULL,
		no_votes NUMERIC(20) NOT NULL,
		maybe_votes NUMERIC(20) NOT NULL,
		strategy VARCHAR(128) NOT NULL,
		recorded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_reveals_poll ON poll_reveals(authority, poll_id);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveReveal upserts a reveal outcome.
func (s *PostgresStore) SaveReveal(ctx context.Context, r *Reveal) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	recordedAt := r.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO poll_reveals
		(signature, authority, poll_id, yes_votes, no_votes, maybe_votes, strategy, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (signature) DO UPDATE SET
		authority = EXCLUDED.authority,
		poll_id = EXCLUDED.poll_id,
		yes_votes = EXCLUDED.yes_votes,
		no_votes = EXCLUDED.no_votes,
		maybe_votes = EXCLUDED.maybe_votes,
		strategy = EXCLUDED.strategy
	`

	_, err := s.db.ExecContext(ctx, query,
		r.Signature.String(),
		r.Authority.String(),
		int64(r.PollID),
		fmt.Sprint(r.Tally.Yes),
		fmt.Sprint(r.Tally.No),
		fmt.Sprint(r.Tally.Maybe),
		r.Strategy,
		recordedAt,
	)
	return err
}

const selectReveal = `
	SELECT signature, authority, poll_id, yes_votes::TEXT, no_votes::TEXT, maybe_votes::TEXT, strategy, recorded_at
	FROM poll_reveals
`

// LoadReveal retrieves the reveal recorded for sig.
func (s *PostgresStore) LoadReveal(ctx context.Context, sig solana.Signature) (*Reveal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, selectReveal+" WHERE signature = $1", sig.String())
	r, err := scanReveal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRevealNotFound
	}
	return r, err
}

// ListReveals retrieves the reveals of one poll, oldest first.
func (s *PostgresStore) ListReveals(ctx context.Context, authority solana.PublicKey, pollID uint32) ([]*Reveal, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		selectReveal+" WHERE authority = $1 AND poll_id = $2 ORDER BY recorded_at, signature",
		authority.String(), int64(pollID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Reveal{}
	for rows.Next() {
		r, err := scanReveal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReveal(row scanner) (*Reveal, error) {
	var (
		sig, authority, strategy string
		pollID                   int64
		yes, no, maybe           string
		recordedAt               time.Time
	)
	if err := row.Scan(&sig, &authority, &pollID, &yes, &no, &maybe, &strategy, &recordedAt); err != nil {
		return nil, err
	}

	r := &Reveal{PollID: uint32(pollID), Strategy: strategy, RecordedAt: recordedAt}
	var err error
	if r.Signature, err = solana.SignatureFromBase58(sig); err != nil {
		return nil, fmt.Errorf("stored signature: %w", err)
	}
	if r.Authority, err = solana.PublicKeyFromBase58(authority); err != nil {
		return nil, fmt.Errorf("stored authority: %w", err)
	}
	if r.Tally, err = parseTally(yes, no, maybe); err != nil {
		return nil, err
	}
	return r, nil
}

func parseTally(yes, no, maybe string) (tally.Tally, error) {
	var t tally.Tally
	for _, f := range []struct {
		dst *uint64
		src string
	}{{&t.Yes, yes}, {&t.No, no}, {&t.Maybe, maybe}} {
		if _, err := fmt.Sscan(f.src, f.dst); err != nil {
			return tally.Tally{}, fmt.Errorf("stored counter %q: %w", f.src, err)
		}
	}
	return t, nil
}
