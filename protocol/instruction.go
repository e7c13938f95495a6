package protocol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Operation names one of the program instructions this package builds.
type Operation int

const (
	OpCreateNewPoll Operation = iota
	OpVote
	OpRevealResult
)

func (op Operation) String() string {
	if spec, ok := operations[op]; ok {
		return spec.Name
	}
	return fmt.Sprintf("operation(%d)", int(op))
}

// Instruction is a fully resolved program instruction: discriminator,
// encoded arguments and the ordered account list.
type Instruction struct {
	Operation     Operation
	ProgramID     solana.PublicKey
	Discriminator Discriminator
	Args          []byte
	Accounts      solana.AccountMetaSlice

	// ComputationOffset correlates the instruction with its queued computation.
	ComputationOffset uint64
}

// Data returns discriminator || args.
func (ix *Instruction) Data() []byte {
	data := make([]byte, 0, len(ix.Discriminator)+len(ix.Args))
	data = append(data, ix.Discriminator[:]...)
	return append(data, ix.Args...)
}

// Solana converts the descriptor into a solana-go instruction.
func (ix *Instruction) Solana() solana.Instruction {
	return solana.NewInstruction(ix.ProgramID, ix.Accounts, ix.Data())
}
