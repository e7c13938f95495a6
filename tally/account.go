package tally

import (
	"fmt"

	"github.com/flashbots/arcpoll/codec"
)

// MinRevealedPollAccountSize is the smallest poll account that carries the
// revealed counters as its last 24 bytes.
const MinRevealedPollAccountSize = 235

// FromPollAccount reads the revealed counters stored at the end of a poll
// account. Unrevealed polls read as zeros; callers that need to tell the two
// apart use the transaction logs.
func FromPollAccount(data []byte) (Tally, error) {
	if len(data) < MinRevealedPollAccountSize {
		return Tally{}, fmt.Errorf("%w: %d bytes, need %d", ErrLegacyPollAccount, len(data), MinRevealedPollAccountSize)
	}
	v, err := codec.ReadU64TripleAt(data, len(data)-24)
	if err != nil {
		return Tally{}, err
	}
	return Tally{Yes: v[0], No: v[1], Maybe: v[2]}, nil
}
