package protocol

import (
	"crypto/sha256"
	"encoding/hex"
)

// Discriminator is the 8-byte tag prefixing instruction and event payloads.
type Discriminator [8]byte

var (
	CreateNewPollDiscriminator = Discriminator{18, 23, 205, 123, 193, 24, 162, 162}
	VoteDiscriminator          = Discriminator{227, 110, 155, 23, 136, 126, 172, 25}
	RevealResultDiscriminator  = InstructionDiscriminator("reveal_result")
)

// InstructionDiscriminator hashes "global:" + name.
func InstructionDiscriminator(name string) Discriminator {
	return HashDiscriminator("global:" + name)
}

// HashDiscriminator returns the first 8 bytes of sha256(name). Event names
// are hashed verbatim, including any "event:" prefix.
func HashDiscriminator(name string) Discriminator {
	sum := sha256.Sum256([]byte(name))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

// Matches reports whether b starts with d.
func (d Discriminator) Matches(b []byte) bool {
	return len(b) >= len(d) && [8]byte(b[:8]) == [8]byte(d)
}

func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}
