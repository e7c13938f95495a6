package services

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/flashbots/arcpoll/confidential"
	"github.com/flashbots/arcpoll/ledger"
	"github.com/flashbots/arcpoll/protocol"
	"github.com/flashbots/arcpoll/store"
	"github.com/flashbots/arcpoll/tally"
	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
)

// errUpstream marks failures of the ledger transport.
var errUpstream = errors.New("ledger request failed")

// badRequest is an input error that is not tied to instruction encoding.
type badRequest struct {
	field  string
	reason string
}

func (e *badRequest) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.field, e.reason)
}

// PollServiceConfig wires the poll API to its collaborators.
type PollServiceConfig struct {
	Program   *protocol.ProgramConfig
	Transport ledger.Transport
	Encryptor *confidential.Encryptor
	// Store archives decoded reveals. Nil uses an in-memory store.
	Store store.RevealStore
	// IDs overrides the correlation source. Nil uses crypto/rand.
	IDs protocol.CorrelationSource
	Log *slog.Logger
}

// PollService exposes the poll program operations over HTTP. It holds no
// mutable state of its own; every request builds from scratch.
type PollService struct {
	builder   *protocol.Builder
	transport ledger.Transport
	encryptor *confidential.Encryptor
	decoder   *tally.Decoder
	reader    *tally.Reader
	store     store.RevealStore
	names     []string
	log       *slog.Logger
	now       func() time.Time
}

// NewPollService validates config and returns a ready service.
func NewPollService(config *PollServiceConfig) (*PollService, error) {
	if config.Program == nil {
		return nil, errors.New("missing program config")
	}
	if err := config.Program.Validate(); err != nil {
		return nil, err
	}
	if config.Transport == nil {
		return nil, errors.New("missing ledger transport")
	}

	log := config.Log
	if log == nil {
		log = slog.Default()
	}
	encryptor := config.Encryptor
	if encryptor == nil {
		encryptor = confidential.NewEncryptor(nil, confidential.WithLogger(log))
	}
	reveals := config.Store
	if reveals == nil {
		reveals = store.NewInMemoryStore()
	}

	decoder := tally.NewDecoder(config.Program.Namespace)
	return &PollService{
		builder:   protocol.NewBuilder(config.Program, config.IDs),
		transport: config.Transport,
		encryptor: encryptor,
		decoder:   decoder,
		reader:    tally.NewReader(config.Transport, decoder),
		store:     reveals,
		names:     tally.DefaultEventNames(config.Program.Namespace),
		log:       log,
		now:       time.Now,
	}, nil
}

// RegisterRoutes registers the poll API routes.
func (s *PollService) RegisterRoutes(r chi.Router) {
	r.Post("/create-poll", s.handleCreatePoll)
	r.Post("/vote", s.handleVote)
	r.Post("/reveal-result", s.handleRevealResult)
	r.Post("/encrypt-vote", s.handleEncryptVote)
	r.Get("/poll-results", s.handlePollResults)
	r.Get("/reveal-logs", s.handleRevealLogs)

	r.Post("/reveals", s.handleArchiveReveal)
	r.Get("/reveals", s.handleListReveals)
	r.Get("/reveals/{signature}", s.handleGetReveal)
}

func (s *PollService) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, &badRequest{field: "body", reason: err.Error()})
		return
	}
	payer, err := parsePublicKey("publicKey", req.PublicKey)
	if err != nil {
		s.fail(w, err)
		return
	}

	ix, err := s.builder.CreateNewPoll(protocol.CreatePollParams{
		Payer:    payer,
		PollID:   req.PollID,
		Question: req.Question,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respondTransaction(r.Context(), w, payer, ix)
}

func (s *PollService) handleVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, &badRequest{field: "body", reason: err.Error()})
		return
	}
	payer, err := parsePublicKey("publicKey", req.PublicKey)
	if err != nil {
		s.fail(w, err)
		return
	}
	authority, err := parsePublicKey("authority", req.Authority)
	if err != nil {
		s.fail(w, err)
		return
	}
	ciphertext, err := parseBase64("vote", req.Vote)
	if err != nil {
		s.fail(w, err)
		return
	}
	senderKey, err := parseBase64("voteEncryptionPubkey", req.VoteEncryptionPubkey)
	if err != nil {
		s.fail(w, err)
		return
	}
	nonce, err := parseBase64("voteNonce", req.VoteNonce)
	if err != nil {
		s.fail(w, err)
		return
	}

	ix, err := s.builder.Vote(protocol.VoteParams{
		Payer:           payer,
		Authority:       authority,
		PollID:          req.PollID,
		Ciphertext:      ciphertext,
		SenderPublicKey: senderKey,
		Nonce:           nonce,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respondTransaction(r.Context(), w, payer, ix)
}

func (s *PollService) handleRevealResult(w http.ResponseWriter, r *http.Request) {
	var req RevealResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, &badRequest{field: "body", reason: err.Error()})
		return
	}
	authority, err := parsePublicKey("publicKey", req.PublicKey)
	if err != nil {
		s.fail(w, err)
		return
	}

	ix, err := s.builder.RevealResult(protocol.RevealParams{Payer: authority, PollID: req.PollID})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respondTransaction(r.Context(), w, authority, ix)
}

func (s *PollService) respondTransaction(ctx context.Context, w http.ResponseWriter, payer solana.PublicKey, ix *protocol.Instruction) {
	tx, err := ledger.UnsignedTransaction(ctx, s.transport, payer, ix.Solana())
	if err != nil {
		s.fail(w, upstream(err))
		return
	}
	encoded, err := ledger.EncodeTransaction(tx)
	if err != nil {
		s.fail(w, err)
		return
	}

	s.log.Info("built transaction",
		"operation", ix.Operation.String(),
		"payer", payer.String(),
		"computationOffset", ix.ComputationOffset)

	writeJSON(w, http.StatusOK, &TransactionResponse{
		Transaction:       encoded,
		ComputationOffset: ix.ComputationOffset,
	})
}

func (s *PollService) handleEncryptVote(w http.ResponseWriter, r *http.Request) {
	var req EncryptVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, &badRequest{field: "body", reason: err.Error()})
		return
	}
	if _, err := parsePublicKey("publicKey", req.PublicKey); err != nil {
		s.fail(w, err)
		return
	}
	if req.Vote == "" {
		s.fail(w, &badRequest{field: "vote", reason: "missing"})
		return
	}

	payload, err := s.encryptor.EncryptVote(r.Context(), req.Vote)
	if err != nil {
		s.fail(w, err)
		return
	}

	encrypted, senderKey, nonce := payload.Base64Fields()
	writeJSON(w, http.StatusOK, &EncryptVoteResponse{EncryptedVote: &EncryptedVote{
		Ciphertext:      payload.Ciphertext,
		Nonce:           nonce,
		X25519PublicKey: senderKey,
		VoteIndex:       payload.OptionIndex,
		Mode:            payload.Mode,
		Timestamp:       s.now().UnixMilli(),
		Encrypted:       encrypted,
	}})
}

func (s *PollService) handlePollResults(w http.ResponseWriter, r *http.Request) {
	authority, pollID, err := pollQuery(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	poll, err := s.builder.Deriver().PollAccount(authority, pollID)
	if err != nil {
		s.fail(w, err)
		return
	}

	data, err := s.transport.AccountData(r.Context(), poll)
	if err != nil {
		s.fail(w, upstream(err))
		return
	}
	t, err := tally.FromPollAccount(data)
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := &PollResultsResponse{Tally: t}
	if t.Sum() == 0 {
		resp.Hint = "all counters are zero; the poll may not be revealed yet"
	}
	if r.URL.Query().Get("debug") == "1" {
		tail := data[max(0, len(data)-32):]
		resp.Debug = &AccountDebug{DataLength: len(data), Last32BytesHex: hex.EncodeToString(tail)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *PollService) handleRevealLogs(w http.ResponseWriter, r *http.Request) {
	sig, err := parseSignature(r.URL.Query().Get("signature"))
	if err != nil {
		s.fail(w, err)
		return
	}

	lines, err := s.reader.Logs(r.Context(), sig)
	if err != nil {
		s.fail(w, upstream(err))
		return
	}

	resp := &RevealLogsResponse{
		Inspection: tally.Inspect(lines, s.names),
		FullLogs:   lines,
	}
	if reading, err := s.decoder.Best(lines); err == nil {
		resp.Reading = &reading
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *PollService) handleArchiveReveal(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, &badRequest{field: "body", reason: err.Error()})
		return
	}
	sig, err := parseSignature(req.Signature)
	if err != nil {
		s.fail(w, err)
		return
	}
	authority, err := parsePublicKey("authority", req.Authority)
	if err != nil {
		s.fail(w, err)
		return
	}

	lines, err := s.reader.Logs(r.Context(), sig)
	if err != nil {
		s.fail(w, upstream(err))
		return
	}
	reading, err := s.decoder.Best(lines)
	if err != nil {
		s.fail(w, err)
		return
	}

	reveal := &store.Reveal{
		Signature:  sig,
		Authority:  authority,
		PollID:     req.PollID,
		Tally:      reading.Tally,
		Strategy:   reading.Strategy,
		RecordedAt: s.now().UTC(),
	}
	if err := s.store.SaveReveal(r.Context(), reveal); err != nil {
		s.fail(w, err)
		return
	}

	s.log.Info("archived reveal",
		"signature", sig.String(),
		"pollId", req.PollID,
		"strategy", reading.Strategy,
		"tally", reading.Tally.String())

	writeJSON(w, http.StatusCreated, reveal)
}

func (s *PollService) handleListReveals(w http.ResponseWriter, r *http.Request) {
	authority, pollID, err := pollQuery(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	reveals, err := s.store.ListReveals(r.Context(), authority, pollID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if reveals == nil {
		reveals = []*store.Reveal{}
	}
	writeJSON(w, http.StatusOK, reveals)
}

func (s *PollService) handleGetReveal(w http.ResponseWriter, r *http.Request) {
	sig, err := parseSignature(chi.URLParam(r, "signature"))
	if err != nil {
		s.fail(w, err)
		return
	}
	reveal, err := s.store.LoadReveal(r.Context(), sig)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reveal)
}

// fail maps err onto a status code and writes it as JSON.
func (s *PollService) fail(w http.ResponseWriter, err error) {
	resp := &ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var validation *protocol.ValidationError
	var bad *badRequest
	switch {
	case errors.As(err, &validation):
		status, resp.Field = http.StatusBadRequest, validation.Field
	case errors.As(err, &bad):
		status, resp.Field = http.StatusBadRequest, bad.field
	case errors.Is(err, confidential.ErrUnknownOption):
		status, resp.Field = http.StatusBadRequest, "vote"
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, store.ErrRevealNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tally.ErrNoTally):
		status = http.StatusNotFound
		resp.Hint = "no reveal event found in the transaction logs"
	case errors.Is(err, tally.ErrLegacyPollAccount):
		status = http.StatusConflict
		resp.Hint = "this poll was created before revealed counters were stored; create a new poll"
	case errors.Is(err, errUpstream):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, resp)
}

func upstream(err error) error {
	if errors.Is(err, ledger.ErrAccountNotFound) || errors.Is(err, ledger.ErrTransactionNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", errUpstream, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parsePublicKey(field, s string) (solana.PublicKey, error) {
	if s == "" {
		return solana.PublicKey{}, &badRequest{field: field, reason: "missing"}
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, &badRequest{field: field, reason: err.Error()}
	}
	return pk, nil
}

func parseSignature(s string) (solana.Signature, error) {
	if s == "" {
		return solana.Signature{}, &badRequest{field: "signature", reason: "missing"}
	}
	sig, err := solana.SignatureFromBase58(s)
	if err != nil {
		return solana.Signature{}, &badRequest{field: "signature", reason: err.Error()}
	}
	return sig, nil
}

func parseBase64(field, s string) ([]byte, error) {
	if s == "" {
		return nil, &badRequest{field: field, reason: "missing"}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &badRequest{field: field, reason: "not base64"}
	}
	return b, nil
}

// pollQuery reads ?authority= and ?pollId=. A missing pollId means poll 0.
func pollQuery(r *http.Request) (solana.PublicKey, uint32, error) {
	q := r.URL.Query()
	authority, err := parsePublicKey("authority", q.Get("authority"))
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	raw := q.Get("pollId")
	if raw == "" {
		return authority, 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return solana.PublicKey{}, 0, &badRequest{field: "pollId", reason: "not a u32"}
	}
	return authority, uint32(id), nil
}
