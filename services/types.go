package services

import (
	"github.com/flashbots/arcpoll/confidential"
	"github.com/flashbots/arcpoll/crypto"
	"github.com/flashbots/arcpoll/tally"
)

// CreatePollRequest asks for an unsigned create_new_poll transaction.
type CreatePollRequest struct {
	PublicKey string `json:"publicKey"`
	PollID    uint32 `json:"pollId"`
	Question  string `json:"question"`
}

// VoteRequest asks for an unsigned vote transaction. Vote, VoteEncryptionPubkey
// and VoteNonce are base64, as returned by /encrypt-vote.
type VoteRequest struct {
	PublicKey            string `json:"publicKey"`
	Authority            string `json:"authority"`
	PollID               uint32 `json:"pollId"`
	Vote                 string `json:"vote"`
	VoteEncryptionPubkey string `json:"voteEncryptionPubkey"`
	VoteNonce            string `json:"voteNonce"`
}

// RevealResultRequest asks for an unsigned reveal_result transaction. The
// public key is the poll authority.
type RevealResultRequest struct {
	PublicKey string `json:"publicKey"`
	PollID    uint32 `json:"pollId"`
}

// TransactionResponse carries a base64 serialized transaction with empty
// signature slots, ready for wallet signing.
type TransactionResponse struct {
	Transaction string `json:"transaction"`
	// ComputationOffset identifies the queued computation.
	ComputationOffset uint64 `json:"computationOffset,string"`
}

// EncryptVoteRequest asks for an encrypted ballot.
type EncryptVoteRequest struct {
	PublicKey string `json:"publicKey"`
	Vote      string `json:"vote"`
}

// EncryptedVote is the wire form of an encrypted ballot.
type EncryptedVote struct {
	Ciphertext      [][crypto.BlockSize]byte `json:"ciphertext"`
	Nonce           string                   `json:"nonce"`
	X25519PublicKey string                   `json:"x25519PublicKey"`
	VoteIndex       uint64                   `json:"voteIndex"`
	Mode            confidential.Mode        `json:"mode"`
	Timestamp       int64                    `json:"timestamp"`
	// Encrypted is the first ciphertext block, the form the vote instruction takes.
	Encrypted string `json:"encrypted"`
}

// EncryptVoteResponse wraps an encrypted ballot.
type EncryptVoteResponse struct {
	EncryptedVote *EncryptedVote `json:"encryptedVote"`
}

// PollResultsResponse is a tally read from a poll account.
type PollResultsResponse struct {
	tally.Tally
	Hint  string        `json:"hint,omitempty"`
	Debug *AccountDebug `json:"debug,omitempty"`
}

// AccountDebug exposes the raw tail of a poll account.
type AccountDebug struct {
	DataLength     int    `json:"dataLength"`
	Last32BytesHex string `json:"last32BytesHex"`
}

// RevealLogsResponse is a log inspection plus the decoded reading, if any.
type RevealLogsResponse struct {
	*tally.Inspection
	Reading  *tally.Reading `json:"reading,omitempty"`
	FullLogs []string       `json:"fullLogs"`
}

// ArchiveRevealRequest asks the service to decode and archive a reveal transaction.
type ArchiveRevealRequest struct {
	Signature string `json:"signature"`
	Authority string `json:"authority"`
	PollID    uint32 `json:"pollId"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Hint  string `json:"hint,omitempty"`
}
