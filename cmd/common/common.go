// Package common provides shared utilities for the poll binaries.
//
//   - YAML configuration with defaults
//   - structured logger setup
//   - factories for the ledger transport, coordinator key source and reveal archive
package common

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/flashbots/arcpoll/confidential"
	"github.com/flashbots/arcpoll/ledger"
	"github.com/flashbots/arcpoll/protocol"
	"github.com/flashbots/arcpoll/store"
)

// NewLogger returns a text or JSON slog logger at level.
func NewLogger(level string, json bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// NewKeySource builds the coordinator key source described by cfg.
// It returns nil when no source is configured, which makes every ballot a
// fallback ballot.
func NewKeySource(cfg EncryptionConfig, program *protocol.ProgramConfig, transport ledger.Transport) (confidential.KeySource, error) {
	switch {
	case cfg.StaticKey != "":
		src, err := confidential.NewStaticKeySource(cfg.StaticKey)
		if err != nil {
			return nil, fmt.Errorf("static coordinator key: %w", err)
		}
		return src, nil
	case cfg.KeyURL != "":
		return confidential.NewRemoteKeySource(cfg.KeyURL), nil
	case cfg.KeyFromMXE:
		deriver := protocol.NewBuilder(program, nil).Deriver()
		mxe, err := deriver.MXEAccount()
		if err != nil {
			return nil, fmt.Errorf("deriving MXE account: %w", err)
		}
		return confidential.NewAccountKeySource(transport, mxe, cfg.KeyOffset), nil
	}
	return nil, nil
}

// NewEncryptor wires a key source into an encryptor with the configured retry policy.
func NewEncryptor(cfg EncryptionConfig, keys confidential.KeySource, log *slog.Logger) *confidential.Encryptor {
	retry := confidential.DefaultRetryPolicy()
	if cfg.RetryAttempts > 0 {
		retry.Attempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		retry.Delay = cfg.RetryDelay
	}
	return confidential.NewEncryptor(keys,
		confidential.WithRetryPolicy(retry),
		confidential.WithLogger(log))
}

// NewRevealStore opens PostgreSQL when configured, otherwise an in-memory store.
func NewRevealStore(pg *store.PostgresConfig) (store.RevealStore, error) {
	if pg == nil || pg.Host == "" {
		return store.NewInMemoryStore(), nil
	}
	return store.NewPostgresStore(pg)
}
