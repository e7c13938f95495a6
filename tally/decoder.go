package tally

import (
	"encoding/hex"
	"sort"

	"github.com/flashbots/arcpoll/codec"
	"github.com/flashbots/arcpoll/protocol"
)

// Reading is a tally together with where it was found.
type Reading struct {
	Tally    Tally  `json:"tally"`
	Class    Class  `json:"-"`
	Strategy string `json:"strategy"`
	Line     int    `json:"line"`
}

// Decoder recovers reveal tallies from transaction logs by evaluating an
// ordered list of strategies against every blob.
type Decoder struct {
	Strategies []Strategy
}

// NewDecoder returns a decoder for the default event names under namespace.
func NewDecoder(namespace string) *Decoder {
	return &Decoder{Strategies: DefaultStrategies(DefaultEventNames(namespace))}
}

// Decode returns the tally recovered from lines, or ErrNoTally.
func (d *Decoder) Decode(lines []string) (Tally, error) {
	r, err := d.Best(lines)
	if err != nil {
		return Tally{}, err
	}
	return r.Tally, nil
}

// Best returns the winning reading. An authoritative reading ends the scan.
// Otherwise the first strict reading wins, then the relaxed reading with the
// smallest sum. Relaxed strategies only run on blobs with no strict reading.
func (d *Decoder) Best(lines []string) (Reading, error) {
	var strict, relaxed []Reading

	for _, blob := range ExtractBlobs(lines) {
		if len(blob.Data) < minBlobSize {
			continue
		}

		blobStrict := false
		var blobRelaxed []Reading
		for _, s := range d.Strategies {
			if !s.Match(blob.Data) {
				continue
			}
			t, ok := s.Extract(blob.Data)
			if !ok {
				continue
			}
			r := Reading{Tally: t, Class: s.Class, Strategy: s.Name, Line: blob.Line}
			switch s.Class {
			case Authoritative:
				return r, nil
			case Strict:
				strict = append(strict, r)
				blobStrict = true
			case Relaxed:
				blobRelaxed = append(blobRelaxed, r)
			}
		}
		if !blobStrict {
			relaxed = append(relaxed, blobRelaxed...)
		}
	}

	if len(strict) > 0 {
		return strict[0], nil
	}
	if len(relaxed) > 0 {
		sort.SliceStable(relaxed, func(i, j int) bool {
			return relaxed[i].Tally.Sum() < relaxed[j].Tally.Sum()
		})
		return relaxed[0], nil
	}
	return Reading{}, ErrNoTally
}

// BlobReport describes one log blob for diagnostics.
type BlobReport struct {
	Line       int        `json:"line"`
	Marker     string     `json:"marker"`
	Length     int        `json:"length"`
	First8Hex  string     `json:"first8Hex"`
	CountsAt8  *[3]uint64 `json:"countsAt8,omitempty"`
	CountsAt16 *[3]uint64 `json:"countsAt16,omitempty"`
	Matches    []string   `json:"matches,omitempty"`
}

// Inspection summarizes every blob in a log set.
type Inspection struct {
	LogLineCount int               `json:"logLineCount"`
	Blobs        []BlobReport      `json:"blobs"`
	Expected     map[string]string `json:"expectedDiscriminators"`
	MatchedNames []string          `json:"matchedNames"`
	// CoordinatorDataOnly is set when every blob reads as values far above
	// any vote count, which is what coordinator bookkeeping looks like.
	CoordinatorDataOnly bool `json:"coordinatorDataOnly"`
}

// Inspect reports every blob in lines along with which candidate event
// names match it.
func Inspect(lines []string, names []string) *Inspection {
	expected := make(map[string]string, len(names))
	discs := make([]protocol.Discriminator, len(names))
	for i, name := range names {
		discs[i] = protocol.HashDiscriminator(name)
		expected[name] = discs[i].String()
	}

	out := &Inspection{
		LogLineCount: len(lines),
		Blobs:        []BlobReport{},
		Expected:     expected,
		MatchedNames: []string{},
	}
	matched := make(map[string]bool)
	allHuge := true

	for _, blob := range ExtractBlobs(lines) {
		head := blob.Data
		if len(head) > 8 {
			head = head[:8]
		}
		report := BlobReport{
			Line:      blob.Line,
			Marker:    blob.Marker,
			Length:    len(blob.Data),
			First8Hex: hex.EncodeToString(head),
		}
		if v, err := codec.ReadU64TripleAt(blob.Data, 8); err == nil {
			report.CountsAt8 = &v
			if !(v[0] > RelaxedBound && v[1] > RelaxedBound && v[2] > RelaxedBound) {
				allHuge = false
			}
		} else {
			allHuge = false
		}
		if v, err := codec.ReadU64TripleAt(blob.Data, 16); err == nil {
			report.CountsAt16 = &v
		}
		for i, disc := range discs {
			if disc.Matches(blob.Data) {
				report.Matches = append(report.Matches, names[i])
				matched[names[i]] = true
			}
		}
		out.Blobs = append(out.Blobs, report)
	}

	for _, name := range names {
		if matched[name] {
			out.MatchedNames = append(out.MatchedNames, name)
		}
	}
	out.CoordinatorDataOnly = allHuge && len(out.Blobs) > 0
	return out
}
