package confidential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/flashbots/arcpoll/crypto"
	"github.com/flashbots/arcpoll/ledger"
	"github.com/gagliardetto/solana-go"
)

// ErrKeyUnavailable is returned when a source has no usable key.
var ErrKeyUnavailable = errors.New("remote public key unavailable")

// KeySource provides the coordinator's X25519 public key.
type KeySource interface {
	FetchKey(ctx context.Context) (crypto.KemPublicKey, error)
}

// StaticKeySource serves a preconfigured key.
type StaticKeySource struct {
	Key crypto.KemPublicKey
}

// NewStaticKeySource parses a hex-encoded key.
func NewStaticKeySource(hexKey string) (*StaticKeySource, error) {
	key, err := crypto.KemPublicKeyFromHex(hexKey)
	if err != nil {
		return nil, err
	}
	return &StaticKeySource{Key: key}, nil
}

func (s *StaticKeySource) FetchKey(ctx context.Context) (crypto.KemPublicKey, error) {
	if s.Key.IsZero() {
		return crypto.KemPublicKey{}, ErrKeyUnavailable
	}
	return s.Key, nil
}

// AccountKeySource reads the key out of a ledger account at a fixed byte offset.
type AccountKeySource struct {
	Transport ledger.Transport
	Account   solana.PublicKey
	Offset    int
}

// NewAccountKeySource reads 32 bytes at offset from account.
func NewAccountKeySource(transport ledger.Transport, account solana.PublicKey, offset int) *AccountKeySource {
	return &AccountKeySource{Transport: transport, Account: account, Offset: offset}
}

func (s *AccountKeySource) FetchKey(ctx context.Context) (crypto.KemPublicKey, error) {
	data, err := s.Transport.AccountData(ctx, s.Account)
	if err != nil {
		return crypto.KemPublicKey{}, err
	}
	if s.Offset < 0 || s.Offset+32 > len(data) {
		return crypto.KemPublicKey{}, fmt.Errorf("%w: account %s has %d bytes, key at offset %d", ErrKeyUnavailable, s.Account, len(data), s.Offset)
	}
	key, err := crypto.KemPublicKeyFromBytes(data[s.Offset : s.Offset+32])
	if err != nil {
		return crypto.KemPublicKey{}, err
	}
	if key.IsZero() {
		return crypto.KemPublicKey{}, fmt.Errorf("%w: key not yet set in %s", ErrKeyUnavailable, s.Account)
	}
	return key, nil
}

// RemoteKeySource fetches the key from a URL serving {"publicKey": "<hex>"}
// and caches it.
type RemoteKeySource struct {
	URL        string
	HTTPClient *http.Client
	CacheTTL   time.Duration

	mu           sync.Mutex
	cacheTimeout time.Time
	cached       crypto.KemPublicKey
}

// NewRemoteKeySource creates a source that fetches from a URL.
func NewRemoteKeySource(url string) *RemoteKeySource {
	return &RemoteKeySource{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		CacheTTL:   time.Hour,
	}
}

func (r *RemoteKeySource) FetchKey(ctx context.Context) (crypto.KemPublicKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.cached.IsZero() && time.Now().Before(r.cacheTimeout) {
		return r.cached, nil
	}

	key, err := r.fetch(ctx)
	if err != nil {
		return crypto.KemPublicKey{}, err
	}
	r.cached = key
	r.cacheTimeout = time.Now().Add(r.CacheTTL)
	return key, nil
}

func (r *RemoteKeySource) fetch(ctx context.Context) (crypto.KemPublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return crypto.KemPublicKey{}, err
	}
	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return crypto.KemPublicKey{}, fmt.Errorf("fetching public key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return crypto.KemPublicKey{}, fmt.Errorf("public key endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc struct {
		PublicKey string `json:"publicKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return crypto.KemPublicKey{}, fmt.Errorf("decoding public key: %w", err)
	}
	return crypto.KemPublicKeyFromHex(doc.PublicKey)
}
