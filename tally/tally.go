package tally

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTally means no reading could be recovered. It is distinct from a
	// revealed tally of zero votes.
	ErrNoTally = errors.New("tally not yet available")

	// ErrLegacyPollAccount is returned for poll accounts created before the
	// program stored revealed counters.
	ErrLegacyPollAccount = errors.New("poll account predates revealed counters")
)

// Tally is a revealed three-way vote count.
type Tally struct {
	Yes   uint64 `json:"yes"`
	No    uint64 `json:"no"`
	Maybe uint64 `json:"maybe"`
}

// Sum returns the total number of votes.
func (t Tally) Sum() uint64 {
	return t.Yes + t.No + t.Maybe
}

// Within reports whether every counter is at most bound.
func (t Tally) Within(bound uint64) bool {
	return t.Yes <= bound && t.No <= bound && t.Maybe <= bound
}

func (t Tally) String() string {
	return fmt.Sprintf("yes=%d no=%d maybe=%d", t.Yes, t.No, t.Maybe)
}
