package address

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	// MaxSeeds is the seed limit including the trailing bump byte.
	MaxSeeds = 16
	// MaxSeedLength is the per-seed byte limit.
	MaxSeedLength = 32
)

var (
	// ErrNoValidDerivation is returned when no bump in 255..0 yields an
	// off-curve address. It is not expected in practice and is never retried.
	ErrNoValidDerivation = errors.New("no valid program address derivation")

	// ErrInvalidSeeds is returned for seed lists the ledger would reject.
	ErrInvalidSeeds = errors.New("invalid seeds")
)

// createProgramAddress is swapped out in tests to exhaust the bump search.
var createProgramAddress = solana.CreateProgramAddress

// Derive finds the program address for seeds under owner, searching bump
// values from 255 downwards and returning the first off-curve result together
// with its bump. Identical inputs always produce identical output.
func Derive(seeds [][]byte, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	if len(seeds) > MaxSeeds-1 {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %d seeds, at most %d allowed", ErrInvalidSeeds, len(seeds), MaxSeeds-1)
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return solana.PublicKey{}, 0, fmt.Errorf("%w: seed %d is %d bytes, limit %d", ErrInvalidSeeds, i, len(s), MaxSeedLength)
		}
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := createProgramAddress(withBump, owner)
		if err == nil {
			return addr, uint8(bump), nil
		}
	}
	return solana.PublicKey{}, 0, ErrNoValidDerivation
}

// Derived is a program address with the bump that produced it.
type Derived struct {
	Address solana.PublicKey
	Bump    uint8
}

// Owner selects which program owns a derived address.
type Owner int

const (
	// OwnerProgram is the voting program itself.
	OwnerProgram Owner = iota
	// OwnerCoordinator is the confidential-compute coordinator program.
	OwnerCoordinator
)

func (o Owner) String() string {
	switch o {
	case OwnerProgram:
		return "program"
	case OwnerCoordinator:
		return "coordinator"
	}
	return fmt.Sprintf("owner(%d)", int(o))
}

// Deriver binds the two owning identifiers and the coordinator cluster so
// that every seed scheme resolves against an explicit owner.
type Deriver struct {
	Program       solana.PublicKey
	Coordinator   solana.PublicKey
	ClusterOffset uint32
}

// NewDeriver returns a Deriver for the given voting program, coordinator
// program and coordinator cluster.
func NewDeriver(program, coordinator solana.PublicKey, clusterOffset uint32) *Deriver {
	return &Deriver{
		Program:       program,
		Coordinator:   coordinator,
		ClusterOffset: clusterOffset,
	}
}

// OwnerKey returns the public key for an owner kind.
func (d *Deriver) OwnerKey(o Owner) (solana.PublicKey, error) {
	switch o {
	case OwnerProgram:
		return d.Program, nil
	case OwnerCoordinator:
		return d.Coordinator, nil
	}
	return solana.PublicKey{}, fmt.Errorf("unknown owner %s", o)
}

// Resolve derives the address for a seed scheme under the scheme's owner.
func (d *Deriver) Resolve(s Scheme) (Derived, error) {
	owner, err := d.OwnerKey(s.Owner)
	if err != nil {
		return Derived{}, err
	}
	addr, bump, err := Derive(s.Seeds, owner)
	if err != nil {
		return Derived{}, fmt.Errorf("%s address: %w", s.Name, err)
	}
	return Derived{Address: addr, Bump: bump}, nil
}

func (d *Deriver) resolveKey(s Scheme) (solana.PublicKey, error) {
	derived, err := d.Resolve(s)
	return derived.Address, err
}

// SignerAccount returns the program's confidential-signer account.
func (d *Deriver) SignerAccount() (solana.PublicKey, error) {
	return d.resolveKey(SignerScheme())
}

// PollAccount returns the account of poll pollID created by creator.
func (d *Deriver) PollAccount(creator solana.PublicKey, pollID uint32) (solana.PublicKey, error) {
	return d.resolveKey(PollScheme(creator, pollID))
}

// VoteReceipt returns the account recording that voter voted in poll.
func (d *Deriver) VoteReceipt(poll, voter solana.PublicKey) (solana.PublicKey, error) {
	return d.resolveKey(VoteReceiptScheme(poll, voter))
}

// CompDefAccount returns the computation definition account of a circuit.
func (d *Deriver) CompDefAccount(circuit string) (solana.PublicKey, error) {
	return d.resolveKey(CompDefScheme(d.Program, circuit))
}

// MXEAccount returns the program's compute-environment account.
func (d *Deriver) MXEAccount() (solana.PublicKey, error) {
	return d.resolveKey(MXEScheme(d.Program))
}

// MempoolAccount returns the cluster mempool account.
func (d *Deriver) MempoolAccount() (solana.PublicKey, error) {
	return d.resolveKey(MempoolScheme(d.ClusterOffset))
}

// ExecutingPool returns the cluster execution-pool account.
func (d *Deriver) ExecutingPool() (solana.PublicKey, error) {
	return d.resolveKey(ExecpoolScheme(d.ClusterOffset))
}

// ComputationAccount returns the per-call computation account.
func (d *Deriver) ComputationAccount(computationOffset uint64) (solana.PublicKey, error) {
	return d.resolveKey(ComputationScheme(d.ClusterOffset, computationOffset))
}

// ClusterAccount returns the coordinator cluster account.
func (d *Deriver) ClusterAccount() (solana.PublicKey, error) {
	return d.resolveKey(ClusterScheme(d.ClusterOffset))
}
