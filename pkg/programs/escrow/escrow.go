// Package escrow implements the two-party price-prediction escrow program.
//
// Two players stake an identical amount of a fungible asset on opposite
// directions of the ETH/USDC price. The program records the game in a
// dedicated account, verifies a declarative account contract for every
// opcode before touching state, and pays the pooled stake to the winner at
// settlement.
package escrow

import (
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// EscrowProgram is the price-prediction escrow native program.
type EscrowProgram struct {
	ProgramID types.Pubkey
}

// New creates the escrow program bound to its well-known program ID.
func New() *EscrowProgram {
	return &EscrowProgram{ProgramID: types.EscrowProgramID}
}

// Execute dispatches one escrow instruction. The account contract for the
// opcode is enforced before any handler logic, so a failed call never
// observes partially validated accounts.
func (p *EscrowProgram) Execute(ctx *runtime.ExecutionContext, instruction *types.Instruction) error {
	data := instruction.Data
	if len(data) < 1 {
		return fmt.Errorf("%w: missing opcode byte", ErrInvalidInstructionData)
	}

	opcode := data[0]
	if err := checkAccountContract(opcode, ctx.Accounts); err != nil {
		return err
	}

	switch opcode {
	case OpCreateGame:
		inst := &CreateGameInstruction{}
		if err := inst.Decode(data[1:]); err != nil {
			return err
		}
		return handleCreateGame(ctx, inst)

	case OpQueryOraclePrice:
		return handleQueryOraclePrice(ctx)

	case OpJoinGame:
		inst := &JoinGameInstruction{}
		if err := inst.Decode(data[1:]); err != nil {
			return err
		}
		return handleJoinGame(ctx, inst)

	case OpSettleGame:
		inst := &SettleGameInstruction{}
		if err := inst.Decode(data[1:]); err != nil {
			return err
		}
		return handleSettleGame(ctx, inst)

	case OpWithdraw:
		return handleWithdraw(ctx)

	case OpCloseGame:
		return handleCloseGame(ctx)

	default:
		return fmt.Errorf("%w: %d", ErrUnknownOpcode, opcode)
	}
}

// GetProgramID returns the escrow program's public key.
func (p *EscrowProgram) GetProgramID() types.Pubkey {
	return p.ProgramID
}
