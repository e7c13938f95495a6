package address

import (
	"crypto/sha256"

	"github.com/flashbots/arcpoll/codec"
	"github.com/gagliardetto/solana-go"
)

// Seed tags. Each semantic purpose has its own tag so no two purposes share
// a scheme under the same owner.
const (
	SignerTag      = "ArciumSignerAccount"
	PollTag        = "poll"
	VoteReceiptTag = "vote_receipt"

	CompDefTag     = "ComputationDefinitionAccount"
	MXETag         = "MXEAccount"
	MempoolTag     = "Mempool"
	ExecpoolTag    = "Execpool"
	ComputationTag = "ComputationAccount"
	ClusterTag     = "Cluster"
)

// Scheme is an ordered list of seed segments bound to an owner kind.
type Scheme struct {
	Name  string
	Owner Owner
	Seeds [][]byte
}

// SignerScheme is the program's confidential-signer account.
func SignerScheme() Scheme {
	return Scheme{
		Name:  "signer",
		Owner: OwnerProgram,
		Seeds: [][]byte{[]byte(SignerTag)},
	}
}

// PollScheme is "poll" + creator + u32 LE poll id.
func PollScheme(creator solana.PublicKey, pollID uint32) Scheme {
	return Scheme{
		Name:  "poll",
		Owner: OwnerProgram,
		Seeds: [][]byte{[]byte(PollTag), creator.Bytes(), codec.EncodeU32LE(pollID)},
	}
}

// VoteReceiptScheme is "vote_receipt" + poll + voter.
func VoteReceiptScheme(poll, voter solana.PublicKey) Scheme {
	return Scheme{
		Name:  "vote receipt",
		Owner: OwnerProgram,
		Seeds: [][]byte{[]byte(VoteReceiptTag), poll.Bytes(), voter.Bytes()},
	}
}

// CompDefOffset returns the 4-byte offset identifying a circuit's
// computation definition: the first four bytes of sha256(circuit).
func CompDefOffset(circuit string) [4]byte {
	sum := sha256.Sum256([]byte(circuit))
	var out [4]byte
	copy(out[:], sum[:4])
	return out
}

// CompDefOffsetU32 is CompDefOffset read as a little-endian integer.
func CompDefOffsetU32(circuit string) uint32 {
	off := CompDefOffset(circuit)
	return uint32(off[0]) | uint32(off[1])<<8 | uint32(off[2])<<16 | uint32(off[3])<<24
}

// CompDefScheme is the computation definition account of a circuit owned by
// program, derived under the coordinator.
func CompDefScheme(program solana.PublicKey, circuit string) Scheme {
	off := CompDefOffset(circuit)
	return Scheme{
		Name:  "comp def " + circuit,
		Owner: OwnerCoordinator,
		Seeds: [][]byte{[]byte(CompDefTag), program.Bytes(), off[:]},
	}
}

// MXEScheme is the compute-environment account of program.
func MXEScheme(program solana.PublicKey) Scheme {
	return Scheme{
		Name:  "mxe",
		Owner: OwnerCoordinator,
		Seeds: [][]byte{[]byte(MXETag), program.Bytes()},
	}
}

// MempoolScheme is the mempool account of a cluster.
func MempoolScheme(clusterOffset uint32) Scheme {
	return Scheme{
		Name:  "mempool",
		Owner: OwnerCoordinator,
		Seeds: [][]byte{[]byte(MempoolTag), codec.EncodeU32LE(clusterOffset)},
	}
}

// ExecpoolScheme is the executing-pool account of a cluster.
func ExecpoolScheme(clusterOffset uint32) Scheme {
	return Scheme{
		Name:  "execpool",
		Owner: OwnerCoordinator,
		Seeds: [][]byte{[]byte(ExecpoolTag), codec.EncodeU32LE(clusterOffset)},
	}
}

// ComputationScheme is the account of a single queued computation.
func ComputationScheme(clusterOffset uint32, computationOffset uint64) Scheme {
	return Scheme{
		Name:  "computation",
		Owner: OwnerCoordinator,
		Seeds: [][]byte{
			[]byte(ComputationTag),
			codec.EncodeU32LE(clusterOffset),
			codec.EncodeU64LE(computationOffset),
		},
	}
}

// ClusterScheme is the cluster account.
func ClusterScheme(clusterOffset uint32) Scheme {
	return Scheme{
		Name:  "cluster",
		Owner: OwnerCoordinator,
		Seeds: [][]byte{[]byte(ClusterTag), codec.EncodeU32LE(clusterOffset)},
	}
}
