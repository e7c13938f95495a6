package protocol

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	// DefaultClusterOffset is the coordinator cluster the program is deployed against.
	DefaultClusterOffset uint32 = 456

	// DefaultNamespace is the program's event namespace.
	DefaultNamespace = "arcium_hello"

	// MaxQuestionBytes bounds the encoded poll question.
	MaxQuestionBytes = 200
)

var (
	DefaultProgramID     = solana.MustPublicKeyFromBase58("CFbzcvAxXg8kX52gWeDKjWqSMV5v8aMg9csB75KgQYvK")
	DefaultCoordinatorID = solana.MustPublicKeyFromBase58("Arcj82pX7HxYKLR92qvgZUAd7vGS1k4hQvAFcPATFdEQ")
	DefaultPoolAccount   = solana.MustPublicKeyFromBase58("G2sRWJvi3xoyh5k2gY49eG9L8YhAEWQPtNb1zb1GXTtC")
	DefaultClockAccount  = solana.MustPublicKeyFromBase58("7EbMUTLo5DjdzbN7s8BXeZwXzEwNQb1hScfRvWg8a6ot")
)

// ProgramConfig identifies the deployed voting program and the coordinator
// cluster it queues computations on.
type ProgramConfig struct {
	// ProgramID owns poll, vote receipt and signer accounts.
	ProgramID solana.PublicKey `yaml:"program_id" json:"program_id"`

	// CoordinatorID owns computation definition, MXE, pool and cluster accounts.
	CoordinatorID solana.PublicKey `yaml:"coordinator_id" json:"coordinator_id"`

	// ClusterOffset selects the coordinator cluster.
	ClusterOffset uint32 `yaml:"cluster_offset" json:"cluster_offset"`

	// PoolAccount and ClockAccount are fixed coordinator accounts.
	PoolAccount  solana.PublicKey `yaml:"pool_account" json:"pool_account"`
	ClockAccount solana.PublicKey `yaml:"clock_account" json:"clock_account"`

	// Namespace qualifies the program's event names.
	Namespace string `yaml:"namespace" json:"namespace"`
}

// DefaultProgramConfig returns the devnet deployment.
func DefaultProgramConfig() *ProgramConfig {
	return &ProgramConfig{
		ProgramID:     DefaultProgramID,
		CoordinatorID: DefaultCoordinatorID,
		ClusterOffset: DefaultClusterOffset,
		PoolAccount:   DefaultPoolAccount,
		ClockAccount:  DefaultClockAccount,
		Namespace:     DefaultNamespace,
	}
}

// Validate reports the first unset identifier.
func (c *ProgramConfig) Validate() error {
	for name, key := range map[string]solana.PublicKey{
		"program_id":     c.ProgramID,
		"coordinator_id": c.CoordinatorID,
		"pool_account":   c.PoolAccount,
		"clock_account":  c.ClockAccount,
	} {
		if key.IsZero() {
			return fmt.Errorf("program config: %s is not set", name)
		}
	}
	if c.ProgramID.Equals(c.CoordinatorID) {
		return errors.New("program config: program and coordinator must differ")
	}
	return nil
}
