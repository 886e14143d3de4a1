// Package executor runs instructions against the account store with
// commit-or-discard semantics. Each instruction executes on cloned account
// views; only a fully successful instruction writes anything back, so a
// failed call leaves the ledger exactly as it found it.
package executor

import (
	"github.com/dariusjvc/solana-escrow-gambling/pkg/accounts"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// Result describes one executed instruction.
type Result struct {
	// Slot is the host slot the instruction executed at.
	Slot types.Slot

	// Logs are the program's diagnostic log lines, in emission order. Logs
	// are returned for failed instructions too.
	Logs []string

	// Err is the program error, nil on success.
	Err error
}

// Executor executes instructions against an AccountsDB.
type Executor struct {
	db       accounts.AccountsDB
	registry *ProgramRegistry

	slot      types.Slot
	timestamp int64
}

// New creates an executor over the given store and program registry.
func New(db accounts.AccountsDB, registry *ProgramRegistry) *Executor {
	return &Executor{
		db:       db,
		registry: registry,
	}
}

// SetSlot sets the host slot used for subsequent instructions.
func (e *Executor) SetSlot(slot types.Slot) {
	e.slot = slot
}

// Slot returns the current host slot.
func (e *Executor) Slot() types.Slot {
	return e.slot
}

// SetTimestamp sets the host clock used for subsequent instructions.
func (e *Executor) SetTimestamp(unix int64) {
	e.timestamp = unix
}

// Execute runs one instruction. Account mutations are committed only if the
// program returns nil; on a program error the store is left untouched and the
// error is reported through both the Result and the return value.
//
// An account referenced by the instruction but absent from the store is
// presented to the program as a fresh, unallocated account owned by the
// allocator; it is persisted only if the instruction funds it.
func (e *Executor) Execute(instruction *types.Instruction) (*Result, error) {
	result := &Result{Slot: e.slot}

	program, err := e.registry.Get(instruction.ProgramID)
	if err != nil {
		result.Err = err
		return result, err
	}

	// One view per distinct pubkey: an account listed twice shares state,
	// with signer/writable privileges merged across mentions.
	views := make(map[types.Pubkey]*runtime.AccountInfo, len(instruction.Accounts))
	infos := make([]*runtime.AccountInfo, 0, len(instruction.Accounts))
	for _, meta := range instruction.Accounts {
		if view, ok := views[meta.Pubkey]; ok {
			view.IsSigner = view.IsSigner || meta.IsSigner
			view.IsWritable = view.IsWritable || meta.IsWritable
			infos = append(infos, view)
			continue
		}

		stored, err := e.db.GetAccount(meta.Pubkey)
		if err != nil {
			result.Err = err
			return result, err
		}

		view := &runtime.AccountInfo{
			Pubkey:     meta.Pubkey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		}
		if stored != nil {
			lamports := uint64(stored.Lamports)
			view.Lamports = &lamports
			view.Owner = stored.Owner
			view.Executable = stored.Executable
			if stored.Data != nil {
				view.Data = make([]byte, len(stored.Data))
				copy(view.Data, stored.Data)
			}
		} else {
			lamports := uint64(0)
			view.Lamports = &lamports
			view.Owner = types.SystemProgramID
		}

		views[meta.Pubkey] = view
		infos = append(infos, view)
	}

	ctx := runtime.NewExecutionContext(instruction.ProgramID, infos, instruction.Data)
	ctx.Slot = e.slot
	ctx.UnixTimestamp = e.timestamp

	execErr := program.Execute(ctx, instruction)
	result.Logs = ctx.Logs()
	if execErr != nil {
		result.Err = execErr
		return result, execErr
	}

	for pubkey, view := range views {
		if !view.IsWritable {
			continue
		}
		if err := e.commitAccount(pubkey, view); err != nil {
			result.Err = err
			return result, err
		}
	}

	return result, nil
}

// commitAccount writes one mutated view back to the store. A drained account
// (no lamports, no data) is removed entirely, matching reclamation semantics.
func (e *Executor) commitAccount(pubkey types.Pubkey, view *runtime.AccountInfo) error {
	account := &types.Account{
		Lamports:   types.Lamports(*view.Lamports),
		Owner:      view.Owner,
		Executable: view.Executable,
	}
	if view.Data != nil {
		account.Data = make([]byte, len(view.Data))
		copy(account.Data, view.Data)
	}

	if account.IsEmpty() {
		if e.db.HasAccount(pubkey) {
			return e.db.DeleteAccount(pubkey)
		}
		return nil
	}

	return e.db.SetAccount(pubkey, account)
}
