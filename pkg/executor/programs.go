package executor

import (
	"errors"
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// ErrProgramNotFound indicates the instruction targets an unregistered program.
var ErrProgramNotFound = errors.New("program not found")

// Program is a native program executable by the host.
type Program interface {
	// Execute runs one instruction against the prepared context.
	Execute(ctx *runtime.ExecutionContext, instruction *types.Instruction) error

	// GetProgramID returns the program's well-known public key.
	GetProgramID() types.Pubkey
}

// ProgramRegistry maps program IDs to their native implementations.
type ProgramRegistry struct {
	programs map[types.Pubkey]Program
}

// NewProgramRegistry creates an empty registry.
func NewProgramRegistry() *ProgramRegistry {
	return &ProgramRegistry{
		programs: make(map[types.Pubkey]Program),
	}
}

// Register adds a program to the registry, replacing any previous entry for
// the same ID.
func (r *ProgramRegistry) Register(program Program) {
	r.programs[program.GetProgramID()] = program
}

// Get returns the program registered under the given ID.
func (r *ProgramRegistry) Get(programID types.Pubkey) (Program, error) {
	program, ok := r.programs[programID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, programID.String())
	}
	return program, nil
}
