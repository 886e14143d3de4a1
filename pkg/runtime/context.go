// Package runtime provides the per-instruction execution context shared by
// all native programs. An ExecutionContext is built from the instruction's
// declared account set; programs read and mutate account views through it and
// append diagnostic log lines that the host surfaces to callers.
package runtime

import (
	"errors"
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// Context errors
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountNotWritable  = errors.New("account is not writable")
	ErrAccountNotSigner    = errors.New("account is not a signer")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAccountIndex = errors.New("invalid account index")
	ErrMaxLogsExceeded     = errors.New("maximum log entries exceeded")
)

// Execution limits
const (
	MaxLogMessages      = 64
	MaxLogMessageLength = 10000
	MaxAccountDataSize  = 10 * 1024 * 1024 // 10MB
)

// AccountInfo is the view of one account available to a program during an
// instruction. Mutations are only visible to the host if the whole
// instruction succeeds.
type AccountInfo struct {
	Pubkey     types.Pubkey
	Lamports   *uint64
	Data       []byte
	Owner      types.Pubkey
	Executable bool
	IsSigner   bool
	IsWritable bool
}

// Clone creates a deep copy of AccountInfo.
func (a *AccountInfo) Clone() *AccountInfo {
	if a == nil {
		return nil
	}
	lamports := *a.Lamports
	clone := &AccountInfo{
		Pubkey:     a.Pubkey,
		Lamports:   &lamports,
		Owner:      a.Owner,
		Executable: a.Executable,
		IsSigner:   a.IsSigner,
		IsWritable: a.IsWritable,
	}
	if a.Data != nil {
		clone.Data = make([]byte, len(a.Data))
		copy(clone.Data, a.Data)
	}
	return clone
}

// ExecutionContext holds the execution state for one instruction.
type ExecutionContext struct {
	// ProgramID is the program being executed.
	ProgramID types.Pubkey

	// Accounts is the instruction's ordered account set.
	Accounts []*AccountInfo

	// InstructionData is the raw instruction payload, opcode byte included.
	InstructionData []byte

	// Slot is the host slot at execution time, used for oracle freshness.
	Slot types.Slot

	// UnixTimestamp is the host clock at execution time.
	UnixTimestamp int64

	accountIndex map[types.Pubkey]int
	logs         []string
}

// NewExecutionContext creates an execution context for an instruction.
func NewExecutionContext(programID types.Pubkey, accounts []*AccountInfo, instructionData []byte) *ExecutionContext {
	ctx := &ExecutionContext{
		ProgramID:       programID,
		Accounts:        accounts,
		InstructionData: instructionData,
		accountIndex:    make(map[types.Pubkey]int, len(accounts)),
		logs:            make([]string, 0, 8),
	}
	for i, acc := range accounts {
		ctx.accountIndex[acc.Pubkey] = i
	}
	return ctx
}

// AddLog appends a diagnostic line to the instruction's program log.
func (ctx *ExecutionContext) AddLog(message string) error {
	if len(ctx.logs) >= MaxLogMessages {
		return ErrMaxLogsExceeded
	}
	if len(message) > MaxLogMessageLength {
		message = message[:MaxLogMessageLength]
	}
	ctx.logs = append(ctx.logs, message)
	return nil
}

// Logf formats and appends a diagnostic line.
func (ctx *ExecutionContext) Logf(format string, args ...interface{}) {
	_ = ctx.AddLog(fmt.Sprintf(format, args...))
}

// Logs returns a copy of all log messages.
func (ctx *ExecutionContext) Logs() []string {
	logs := make([]string, len(ctx.logs))
	copy(logs, ctx.logs)
	return logs
}

// GetAccount returns an account by pubkey.
func (ctx *ExecutionContext) GetAccount(pubkey types.Pubkey) (*AccountInfo, error) {
	idx, ok := ctx.accountIndex[pubkey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey.String())
	}
	return ctx.Accounts[idx], nil
}

// GetAccountByIndex returns an account by its position in the declared set.
func (ctx *ExecutionContext) GetAccountByIndex(index int) (*AccountInfo, error) {
	if index < 0 || index >= len(ctx.Accounts) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAccountIndex, index)
	}
	return ctx.Accounts[index], nil
}

// AccountCount returns the number of accounts in the declared set.
func (ctx *ExecutionContext) AccountCount() int {
	return len(ctx.Accounts)
}

// TransferLamports moves lamports between two accounts in the set.
func (ctx *ExecutionContext) TransferLamports(from, to types.Pubkey, amount uint64) error {
	fromAcc, err := ctx.GetAccount(from)
	if err != nil {
		return err
	}
	toAcc, err := ctx.GetAccount(to)
	if err != nil {
		return err
	}
	if !fromAcc.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, from.String())
	}
	if !toAcc.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, to.String())
	}
	if *fromAcc.Lamports < amount {
		return ErrInsufficientFunds
	}
	*fromAcc.Lamports -= amount
	*toAcc.Lamports += amount
	return nil
}

// IsProgramOwned checks if an account is owned by the executing program.
func (ctx *ExecutionContext) IsProgramOwned(pubkey types.Pubkey) bool {
	acc, err := ctx.GetAccount(pubkey)
	if err != nil {
		return false
	}
	return acc.Owner == ctx.ProgramID
}
