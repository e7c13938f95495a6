package confidential

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VoteOptions are the ballot labels in plaintext index order.
var VoteOptions = []string{
	"Yes, absolutely",
	"No, not really",
	"I'm not sure yet",
}

var optionAliases = map[string]uint64{
	"yes":   0,
	"no":    1,
	"maybe": 2,
	"y":     0,
	"n":     1,
	"m":     2,
}

// ErrUnknownOption is returned for selections that name no ballot option.
var ErrUnknownOption = errors.New("unknown vote option")

// ParseSelection maps a ballot label, an alias (yes, no, maybe, y, n, m) or a
// decimal index to the option index.
func ParseSelection(selection string) (uint64, error) {
	s := strings.TrimSpace(selection)
	for i, label := range VoteOptions {
		if s == label {
			return uint64(i), nil
		}
	}
	if i, ok := optionAliases[strings.ToLower(s)]; ok {
		return i, nil
	}
	if i, err := strconv.ParseUint(s, 10, 64); err == nil && i < uint64(len(VoteOptions)) {
		return i, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOption, selection)
}
