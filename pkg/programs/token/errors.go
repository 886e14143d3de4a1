package token

import "errors"

// Token Program errors
var (
	// ErrInsufficientFunds indicates insufficient token balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidMint indicates the mint account is invalid.
	ErrInvalidMint = errors.New("invalid mint")

	// ErrMintMismatch indicates the two accounts hold different asset types.
	ErrMintMismatch = errors.New("mint mismatch")

	// ErrOwnerMismatch indicates the transfer authority does not own the source.
	ErrOwnerMismatch = errors.New("owner mismatch")

	// ErrAlreadyInitialized indicates the account is already initialized.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrNotInitialized indicates the account is not initialized.
	ErrNotInitialized = errors.New("not initialized")

	// ErrInvalidAccountData indicates the account data is malformed.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrInvalidInstruction indicates an unknown instruction discriminator.
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrInvalidInstructionData indicates the instruction data is malformed.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrAccountNotSigner indicates a required signer is missing.
	ErrAccountNotSigner = errors.New("account is not a signer")

	// ErrAccountNotWritable indicates a required writable account is not writable.
	ErrAccountNotWritable = errors.New("account is not writable")

	// ErrInvalidNumberOfAccounts indicates an incorrect number of accounts.
	ErrInvalidNumberOfAccounts = errors.New("invalid number of accounts")

	// ErrFixedSupply indicates the mint has no mint authority.
	ErrFixedSupply = errors.New("fixed supply")

	// ErrAuthorityMismatch indicates the authority doesn't match.
	ErrAuthorityMismatch = errors.New("authority mismatch")

	// ErrOverflow indicates an arithmetic overflow.
	ErrOverflow = errors.New("overflow")
)
