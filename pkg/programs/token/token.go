// Package token implements the fungible-asset program used to hold and move
// player stakes. It supports creating mints, initializing holding accounts,
// minting, and transferring between accounts of the same mint.
package token

import (
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// TokenProgram implements the fungible-asset program.
type TokenProgram struct {
	ProgramID types.Pubkey
}

// New creates a new TokenProgram instance.
func New() *TokenProgram {
	return &TokenProgram{
		ProgramID: types.TokenProgramID,
	}
}

// Execute executes a Token Program instruction.
// The instruction format is a single discriminator byte followed by
// instruction-specific data.
func (p *TokenProgram) Execute(ctx *runtime.ExecutionContext, instruction *types.Instruction) error {
	if len(instruction.Data) < 1 {
		return fmt.Errorf("%w: instruction data too short", ErrInvalidInstructionData)
	}

	discriminator := instruction.Data[0]
	var instructionData []byte
	if len(instruction.Data) > 1 {
		instructionData = instruction.Data[1:]
	}

	switch discriminator {
	case InstructionInitializeMint:
		var inst InitializeMintInstruction
		if err := inst.Decode(instructionData); err != nil {
			return err
		}
		return handleInitializeMint(ctx, &inst)

	case InstructionInitializeAccount:
		var inst InitializeAccountInstruction
		if err := inst.Decode(instructionData); err != nil {
			return err
		}
		return handleInitializeAccount(ctx)

	case InstructionTransfer:
		var inst TransferInstruction
		if err := inst.Decode(instructionData); err != nil {
			return err
		}
		return handleTransfer(ctx, &inst)

	case InstructionMintTo:
		var inst MintToInstruction
		if err := inst.Decode(instructionData); err != nil {
			return err
		}
		return handleMintTo(ctx, &inst)

	default:
		return fmt.Errorf("%w: unknown instruction %d", ErrInvalidInstruction, discriminator)
	}
}

// GetProgramID returns the Token Program's public key.
func (p *TokenProgram) GetProgramID() types.Pubkey {
	return p.ProgramID
}
