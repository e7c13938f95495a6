package tally

import (
	"github.com/flashbots/arcpoll/codec"
	"github.com/flashbots/arcpoll/protocol"
)

const (
	// StrictBound is the largest plausible counter.
	StrictBound uint64 = 1_000_000_000
	// RelaxedBound admits larger readings from exactly-48-byte blobs.
	RelaxedBound uint64 = 1_000_000_000_000_000

	minBlobSize   = 24
	eventBlobSize = 32
	relaxedSize   = 48
)

// Class orders how much a reading is trusted.
type Class int

const (
	// Authoritative readings come from a recognized event and end decoding.
	Authoritative Class = iota
	// Strict readings pass StrictBound; the first one found wins.
	Strict
	// Relaxed readings pass RelaxedBound; the smallest sum wins.
	Relaxed
)

func (c Class) String() string {
	switch c {
	case Authoritative:
		return "authoritative"
	case Strict:
		return "strict"
	case Relaxed:
		return "relaxed"
	}
	return "unknown"
}

// Strategy pairs a blob matcher with a counter extractor.
type Strategy struct {
	Name    string
	Class   Class
	Match   func(blob []byte) bool
	Extract func(blob []byte) (Tally, bool)
}

// DefaultEventNames returns the candidate reveal event names in priority
// order, qualified with namespace where the program may do so.
func DefaultEventNames(namespace string) []string {
	return []string{
		"event:RevealResultEvent",
		"event:reveal_result_event",
		"event:" + namespace + "::RevealResultEvent",
		"event:" + namespace + "::reveal_result_event",
		"RevealResultEvent",
		"event:RevealResult",
		"event:reveal_result",
		"RevealResult",
		"event:RevealVotingResult",
		"event:reveal_voting_result",
	}
}

// DefaultStrategies returns the event strategies for names followed by the
// offset heuristics.
func DefaultStrategies(names []string) []Strategy {
	strategies := make([]Strategy, 0, len(names)+5)
	for _, name := range names {
		disc := protocol.HashDiscriminator(name)
		strategies = append(strategies, Strategy{
			Name:  name,
			Class: Authoritative,
			Match: func(b []byte) bool {
				return len(b) >= eventBlobSize && disc.Matches(b)
			},
			Extract: readAt(8, 0),
		})
	}
	return append(strategies,
		Strategy{
			Name:    "short blob at 0",
			Class:   Strict,
			Match:   func(b []byte) bool { return len(b) >= minBlobSize && len(b) < eventBlobSize },
			Extract: readAt(0, StrictBound),
		},
		Strategy{
			Name:    "counters at 8",
			Class:   Strict,
			Match:   minLen(eventBlobSize),
			Extract: readAt(8, StrictBound),
		},
		Strategy{
			Name:    "counters at 16",
			Class:   Strict,
			Match:   minLen(40),
			Extract: readAt(16, StrictBound),
		},
		Strategy{
			Name:    "relaxed counters at 8",
			Class:   Relaxed,
			Match:   exactLen(relaxedSize),
			Extract: readAt(8, RelaxedBound),
		},
		Strategy{
			Name:    "relaxed counters at 16",
			Class:   Relaxed,
			Match:   exactLen(relaxedSize),
			Extract: readAt(16, RelaxedBound),
		},
	)
}

func minLen(n int) func([]byte) bool {
	return func(b []byte) bool { return len(b) >= n }
}

func exactLen(n int) func([]byte) bool {
	return func(b []byte) bool { return len(b) == n }
}

// readAt reads three counters at offset. A zero bound disables the check.
func readAt(offset int, bound uint64) func([]byte) (Tally, bool) {
	return func(b []byte) (Tally, bool) {
		v, err := codec.ReadU64TripleAt(b, offset)
		if err != nil {
			return Tally{}, false
		}
		t := Tally{Yes: v[0], No: v[1], Maybe: v[2]}
		if bound != 0 && !t.Within(bound) {
			return Tally{}, false
		}
		return t, true
	}
}
