// Package tally recovers revealed vote counts.
//
// The reveal callback is expected to emit an event carrying three
// little-endian u64 counters, but its exact name and whether it appears at
// all are not guaranteed. Decoder therefore runs an ordered list of
// strategies over every "Program data:" blob: known event discriminators
// first, then plausibility-bounded readings at fixed offsets. Absence of any
// reading is ErrNoTally, never a zero tally.
package tally
