package token

import (
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
)

// handleInitializeMint handles the InitializeMint instruction.
// Account layout:
//
//	[0] mint (writable) - The mint to initialize
func handleInitializeMint(ctx *runtime.ExecutionContext, inst *InitializeMintInstruction) error {
	if ctx.AccountCount() < 1 {
		return fmt.Errorf("%w: InitializeMint requires 1 account, got %d",
			ErrInvalidNumberOfAccounts, ctx.AccountCount())
	}

	mintAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !mintAcc.IsWritable {
		return fmt.Errorf("%w: mint account", ErrAccountNotWritable)
	}

	if len(mintAcc.Data) < MintSize {
		return fmt.Errorf("%w: mint account data too small, expected %d bytes",
			ErrInvalidAccountData, MintSize)
	}

	if existing, err := DeserializeMint(mintAcc.Data); err == nil && existing.IsInitialized {
		return ErrAlreadyInitialized
	}

	mint := NewMint(inst.Decimals, inst.MintAuthority)
	copy(mintAcc.Data, mint.Serialize())

	return nil
}

// handleInitializeAccount handles the InitializeAccount instruction.
// Account layout:
//
//	[0] account (writable) - The account to initialize
//	[1] mint - The mint for this account
//	[2] owner - The owner of the new account
func handleInitializeAccount(ctx *runtime.ExecutionContext) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: InitializeAccount requires 3 accounts, got %d",
			ErrInvalidNumberOfAccounts, ctx.AccountCount())
	}

	tokenAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !tokenAcc.IsWritable {
		return fmt.Errorf("%w: token account", ErrAccountNotWritable)
	}

	mintAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	ownerAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}

	if len(tokenAcc.Data) < TokenAccountSize {
		return fmt.Errorf("%w: token account data too small, expected %d bytes",
			ErrInvalidAccountData, TokenAccountSize)
	}

	if existing, err := DeserializeTokenAccount(tokenAcc.Data); err == nil && existing.IsInitializedAccount() {
		return ErrAlreadyInitialized
	}

	mint, err := DeserializeMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMint, err)
	}
	if !mint.IsInitialized {
		return fmt.Errorf("%w: mint not initialized", ErrInvalidMint)
	}

	account := NewTokenAccount(mintAcc.Pubkey, ownerAcc.Pubkey)
	copy(tokenAcc.Data, account.Serialize())

	return nil
}

// handleTransfer handles the Transfer instruction.
// Account layout:
//
//	[0] source (writable) - The source token account
//	[1] destination (writable) - The destination token account
//	[2] authority (signer) - The source account owner
func handleTransfer(ctx *runtime.ExecutionContext, inst *TransferInstruction) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: Transfer requires 3 accounts, got %d",
			ErrInvalidNumberOfAccounts, ctx.AccountCount())
	}

	sourceAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	destAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}

	return Transfer(sourceAcc, destAcc, authorityAcc, inst.Amount)
}

// Transfer moves tokens between two accounts of the same mint. The authority
// must have signed and must own the source account. This is the value
// transfer entry point used by programs that custody token accounts.
func Transfer(source, dest, authority *runtime.AccountInfo, amount uint64) error {
	if !source.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}
	if !dest.IsWritable {
		return fmt.Errorf("%w: destination account", ErrAccountNotWritable)
	}
	if !authority.IsSigner {
		return fmt.Errorf("%w: authority", ErrAccountNotSigner)
	}

	sourceState, err := DeserializeTokenAccount(source.Data)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	destState, err := DeserializeTokenAccount(dest.Data)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	if !sourceState.IsInitializedAccount() {
		return fmt.Errorf("source: %w", ErrNotInitialized)
	}
	if !destState.IsInitializedAccount() {
		return fmt.Errorf("destination: %w", ErrNotInitialized)
	}

	if sourceState.Mint != destState.Mint {
		return ErrMintMismatch
	}

	if sourceState.Owner != authority.Pubkey {
		return ErrOwnerMismatch
	}

	if amount > sourceState.Amount {
		return ErrInsufficientFunds
	}
	if destState.Amount+amount < destState.Amount {
		return ErrOverflow
	}

	sourceState.Amount -= amount
	destState.Amount += amount

	copy(source.Data, sourceState.Serialize())
	copy(dest.Data, destState.Serialize())

	return nil
}

// handleMintTo handles the MintTo instruction.
// Account layout:
//
//	[0] mint (writable) - The mint
//	[1] destination (writable) - The account to mint to
//	[2] mint_authority (signer) - The mint authority
func handleMintTo(ctx *runtime.ExecutionContext, inst *MintToInstruction) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: MintTo requires 3 accounts, got %d",
			ErrInvalidNumberOfAccounts, ctx.AccountCount())
	}

	mintAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !mintAcc.IsWritable {
		return fmt.Errorf("%w: mint account", ErrAccountNotWritable)
	}

	destAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	if !destAcc.IsWritable {
		return fmt.Errorf("%w: destination account", ErrAccountNotWritable)
	}

	authorityAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	if !authorityAcc.IsSigner {
		return fmt.Errorf("%w: mint authority", ErrAccountNotSigner)
	}

	mint, err := DeserializeMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMint, err)
	}
	if !mint.IsInitialized {
		return fmt.Errorf("%w: mint not initialized", ErrInvalidMint)
	}
	if mint.MintAuthority.IsZero() {
		return ErrFixedSupply
	}
	if mint.MintAuthority != authorityAcc.Pubkey {
		return ErrAuthorityMismatch
	}

	destState, err := DeserializeTokenAccount(destAcc.Data)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if !destState.IsInitializedAccount() {
		return fmt.Errorf("destination: %w", ErrNotInitialized)
	}
	if destState.Mint != mintAcc.Pubkey {
		return ErrMintMismatch
	}

	if mint.Supply+inst.Amount < mint.Supply {
		return ErrOverflow
	}
	if destState.Amount+inst.Amount < destState.Amount {
		return ErrOverflow
	}

	mint.Supply += inst.Amount
	destState.Amount += inst.Amount

	copy(mintAcc.Data, mint.Serialize())
	copy(destAcc.Data, destState.Serialize())

	return nil
}
