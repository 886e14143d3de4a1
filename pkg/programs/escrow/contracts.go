package escrow

import (
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
)

// accountSpec declares the required privileges of one position in an
// opcode's account set.
type accountSpec struct {
	name     string
	signer   bool
	writable bool
}

// accountContracts is the declarative per-opcode account contract. The
// dispatcher verifies count, order, signer and writable flags against this
// table before any handler logic runs, so a malformed call never touches
// state. Adding an opcode without a contract entry makes it unreachable.
var accountContracts = map[uint8][]accountSpec{
	OpCreateGame: {
		{"creator", true, true},
		{"game", true, true},
		{"escrow", false, true},
		{"creator funds", false, true},
		{"transfer authority", false, false},
		{"oracle feed", false, false},
		{"allocator", false, false},
	},
	OpQueryOraclePrice: {
		{"oracle feed", false, false},
		{"game", false, true},
	},
	OpJoinGame: {
		{"player2", true, true},
		{"game", false, true},
		{"escrow", false, true},
		{"player2 funds", false, true},
		{"transfer authority", false, false},
		{"oracle feed", false, false},
		{"allocator", false, false},
	},
	OpSettleGame: {
		{"player1", true, true},
		{"player2", true, true},
		{"game", false, true},
		{"escrow authority", true, true},
		{"escrow", false, true},
		{"player1 funds", false, true},
		{"player2 funds", false, true},
		{"transfer authority", false, false},
		{"oracle feed", false, false},
		{"allocator", false, false},
	},
	OpWithdraw: {
		{"player1", true, true},
		{"game", false, true},
		{"escrow authority", true, true},
		{"escrow", false, true},
		{"player1 funds", false, true},
		{"transfer authority", false, false},
		{"allocator", false, false},
	},
	OpCloseGame: {
		{"player1", true, true},
		{"player2", true, true},
		{"game", false, true},
		{"escrow authority", true, true},
		{"escrow", false, true},
		{"player1 funds", false, true},
		{"player2 funds", false, true},
		{"transfer authority", false, false},
		{"oracle feed", false, false},
		{"allocator", false, false},
	},
}

// checkAccountContract validates the supplied account set against the
// opcode's contract.
func checkAccountContract(opcode uint8, accounts []*runtime.AccountInfo) error {
	contract, ok := accountContracts[opcode]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownOpcode, opcode)
	}

	if len(accounts) != len(contract) {
		return fmt.Errorf("%w: opcode %d requires %d accounts, got %d",
			ErrAccountContractViolation, opcode, len(contract), len(accounts))
	}

	for i, spec := range contract {
		acc := accounts[i]
		if spec.signer && !acc.IsSigner {
			return fmt.Errorf("%w: %s account must sign", ErrAccountContractViolation, spec.name)
		}
		if spec.writable && !acc.IsWritable {
			return fmt.Errorf("%w: %s account must be writable", ErrAccountContractViolation, spec.name)
		}
	}

	return nil
}
