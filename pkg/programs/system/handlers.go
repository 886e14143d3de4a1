package system

import (
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// MaxAccountDataSize is the maximum data size an account may be created with.
const MaxAccountDataSize = 10 * 1024 * 1024 // 10 MB

// handleCreateAccount handles the CreateAccount instruction.
// Account layout:
//
//	[0] funding account (signer, writable)
//	[1] new account (signer, writable)
func handleCreateAccount(ctx *runtime.ExecutionContext, inst *CreateAccountInstruction) error {
	if ctx.AccountCount() < 2 {
		return fmt.Errorf("%w: CreateAccount requires 2 accounts", ErrInvalidInstructionData)
	}

	fundingAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	newAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}

	return CreateProgramAccount(fundingAcc, newAcc, inst.Lamports, inst.Space, inst.Owner)
}

// CreateProgramAccount funds and allocates a new account owned by the given
// program. Both the payer and the new account must be signers: the new
// account signs to prove ownership of its key. Used directly by programs
// that allocate their own state accounts.
func CreateProgramAccount(payer, newAcc *runtime.AccountInfo, lamports, space uint64, owner types.Pubkey) error {
	if !payer.IsSigner {
		return fmt.Errorf("%w: funding account", ErrAccountNotSigner)
	}
	if !payer.IsWritable {
		return fmt.Errorf("%w: funding account", ErrAccountNotWritable)
	}
	if !newAcc.IsSigner {
		return fmt.Errorf("%w: new account", ErrAccountNotSigner)
	}
	if !newAcc.IsWritable {
		return fmt.Errorf("%w: new account", ErrAccountNotWritable)
	}

	if *newAcc.Lamports > 0 || len(newAcc.Data) > 0 {
		return ErrAccountAlreadyExists
	}

	if space > MaxAccountDataSize {
		return ErrAccountDataTooLarge
	}

	rentExemptMinimum := types.RentExemptMinimum(space)
	if lamports < uint64(rentExemptMinimum) {
		return fmt.Errorf("%w: need %d lamports for rent exemption", ErrAccountNotRentExempt, rentExemptMinimum)
	}

	if *payer.Lamports < lamports {
		return fmt.Errorf("%w: need %d lamports, have %d", ErrInsufficientFunds, lamports, *payer.Lamports)
	}

	*payer.Lamports -= lamports
	*newAcc.Lamports += lamports
	newAcc.Data = make([]byte, space)
	newAcc.Owner = owner

	return nil
}

// ReclaimAccount drains an account and clears its data so the host removes
// it after commit. The reserved storage lamports go to the recipient.
func ReclaimAccount(target, recipient *runtime.AccountInfo) error {
	if !target.IsWritable {
		return fmt.Errorf("%w: account to reclaim", ErrAccountNotWritable)
	}
	if !recipient.IsWritable {
		return fmt.Errorf("%w: recipient account", ErrAccountNotWritable)
	}

	*recipient.Lamports += *target.Lamports
	*target.Lamports = 0
	target.Data = nil
	target.Owner = types.SystemProgramID

	return nil
}

// handleAssign handles the Assign instruction.
// Account layout:
//
//	[0] account to assign (signer, writable)
func handleAssign(ctx *runtime.ExecutionContext, inst *AssignInstruction) error {
	if ctx.AccountCount() < 1 {
		return fmt.Errorf("%w: Assign requires 1 account", ErrInvalidInstructionData)
	}

	acc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !acc.IsSigner {
		return fmt.Errorf("%w: account to assign", ErrAccountNotSigner)
	}
	if !acc.IsWritable {
		return fmt.Errorf("%w: account to assign", ErrAccountNotWritable)
	}

	// Only accounts still owned by the System Program can be reassigned
	if acc.Owner != types.SystemProgramID {
		return fmt.Errorf("%w: account must be owned by System Program", ErrInvalidAccountOwner)
	}

	acc.Owner = inst.Owner
	return nil
}

// handleTransfer handles the Transfer instruction.
// Account layout:
//
//	[0] source account (signer, writable)
//	[1] destination account (writable)
func handleTransfer(ctx *runtime.ExecutionContext, inst *TransferInstruction) error {
	if ctx.AccountCount() < 2 {
		return fmt.Errorf("%w: Transfer requires 2 accounts", ErrInvalidInstructionData)
	}

	sourceAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !sourceAcc.IsSigner {
		return fmt.Errorf("%w: source account", ErrAccountNotSigner)
	}
	if !sourceAcc.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}

	destAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}

	return ctx.TransferLamports(sourceAcc.Pubkey, destAcc.Pubkey, inst.Lamports)
}
