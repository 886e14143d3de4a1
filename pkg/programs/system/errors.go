package system

import "errors"

// System Program errors
var (
	// ErrInvalidInstruction indicates an unknown instruction discriminator.
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrInvalidInstructionData indicates the instruction data is malformed.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrAccountAlreadyExists indicates the new account already exists.
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrAccountDataTooLarge indicates the requested space exceeds the limit.
	ErrAccountDataTooLarge = errors.New("account data too large")

	// ErrAccountNotRentExempt indicates insufficient lamports for rent exemption.
	ErrAccountNotRentExempt = errors.New("account not rent exempt")

	// ErrInsufficientFunds indicates the funding account balance is too low.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotSigner indicates a required signer is missing.
	ErrAccountNotSigner = errors.New("account is not a signer")

	// ErrAccountNotWritable indicates a required writable account is not writable.
	ErrAccountNotWritable = errors.New("account is not writable")

	// ErrInvalidAccountOwner indicates the account has the wrong owner.
	ErrInvalidAccountOwner = errors.New("invalid account owner")
)
