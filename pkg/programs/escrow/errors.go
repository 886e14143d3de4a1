package escrow

import "errors"

// Escrow program errors
var (
	// ErrUnknownOpcode indicates an opcode outside the 0-5 range.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrInvalidInstructionData indicates the instruction payload is malformed.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrAccountContractViolation indicates the declared account set does not
	// match the opcode's required count, order, signer or writable flags.
	ErrAccountContractViolation = errors.New("account contract violation")

	// ErrInvalidGameAccount indicates the game account is not a record owned
	// by the escrow program.
	ErrInvalidGameAccount = errors.New("invalid game account")

	// ErrGameInactive indicates the game has already been settled or withdrawn.
	ErrGameInactive = errors.New("game is inactive")

	// ErrNoSecondPlayer indicates no second player has joined yet.
	ErrNoSecondPlayer = errors.New("no second player")

	// ErrSecondPlayerAlreadyJoined indicates the second seat is already taken.
	ErrSecondPlayerAlreadyJoined = errors.New("second player already joined")

	// ErrPriceFluctuationExceeded indicates the price moved more than the
	// join tolerance since the game was created.
	ErrPriceFluctuationExceeded = errors.New("price fluctuation exceeded")

	// ErrGameStillActive indicates the game has not been settled yet.
	ErrGameStillActive = errors.New("game is still active")

	// ErrNoWinner indicates the game has no decisive winner.
	ErrNoWinner = errors.New("no winner")
)
