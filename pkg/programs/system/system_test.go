package system

import (
	"errors"
	"testing"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

var (
	testPayer   = types.PubkeyFromSeed("system-test:payer")
	testNewAcc  = types.PubkeyFromSeed("system-test:new-account")
	testDest    = types.PubkeyFromSeed("system-test:dest")
	testProgram = types.PubkeyFromSeed("system-test:program")
)

func walletInfo(pk types.Pubkey, lamports uint64, signer, writable bool) *runtime.AccountInfo {
	l := lamports
	return &runtime.AccountInfo{
		Pubkey:     pk,
		Lamports:   &l,
		Owner:      types.SystemProgramID,
		IsSigner:   signer,
		IsWritable: writable,
	}
}

func executeSystem(t *testing.T, accounts []*runtime.AccountInfo, data []byte) error {
	t.Helper()
	ctx := runtime.NewExecutionContext(types.SystemProgramID, accounts, data)
	return New().Execute(ctx, &types.Instruction{ProgramID: types.SystemProgramID, Data: data})
}

func TestCreateAccount(t *testing.T) {
	const space = 64
	rent := uint64(types.RentExemptMinimum(space))

	payer := walletInfo(testPayer, rent*2, true, true)
	newAcc := walletInfo(testNewAcc, 0, true, true)

	inst := &CreateAccountInstruction{Lamports: rent, Space: space, Owner: testProgram}
	if err := executeSystem(t, []*runtime.AccountInfo{payer, newAcc}, inst.Encode()); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if *newAcc.Lamports != rent {
		t.Errorf("new account lamports = %d, want %d", *newAcc.Lamports, rent)
	}
	if len(newAcc.Data) != space {
		t.Errorf("new account space = %d, want %d", len(newAcc.Data), space)
	}
	if newAcc.Owner != testProgram {
		t.Errorf("new account owner = %s, want program", newAcc.Owner.String())
	}
	if *payer.Lamports != rent {
		t.Errorf("payer lamports = %d, want %d", *payer.Lamports, rent)
	}
}

func TestCreateAccountBelowRentExemption(t *testing.T) {
	const space = 64
	rent := uint64(types.RentExemptMinimum(space))

	payer := walletInfo(testPayer, rent*2, true, true)
	newAcc := walletInfo(testNewAcc, 0, true, true)

	inst := &CreateAccountInstruction{Lamports: rent - 1, Space: space, Owner: testProgram}
	err := executeSystem(t, []*runtime.AccountInfo{payer, newAcc}, inst.Encode())
	if !errors.Is(err, ErrAccountNotRentExempt) {
		t.Fatalf("expected rent exemption error, got %v", err)
	}
}

func TestCreateAccountAlreadyExists(t *testing.T) {
	payer := walletInfo(testPayer, 1_000_000_000, true, true)
	existing := walletInfo(testNewAcc, 5, true, true)

	inst := &CreateAccountInstruction{
		Lamports: uint64(types.RentExemptMinimum(0)),
		Owner:    testProgram,
	}
	err := executeSystem(t, []*runtime.AccountInfo{payer, existing}, inst.Encode())
	if !errors.Is(err, ErrAccountAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestCreateAccountRequiresBothSigners(t *testing.T) {
	payer := walletInfo(testPayer, 1_000_000_000, true, true)
	newAcc := walletInfo(testNewAcc, 0, false, true)

	inst := &CreateAccountInstruction{
		Lamports: uint64(types.RentExemptMinimum(0)),
		Owner:    testProgram,
	}
	err := executeSystem(t, []*runtime.AccountInfo{payer, newAcc}, inst.Encode())
	if !errors.Is(err, ErrAccountNotSigner) {
		t.Fatalf("expected not signer, got %v", err)
	}
}

func TestAssign(t *testing.T) {
	acc := walletInfo(testNewAcc, 100, true, true)

	inst := &AssignInstruction{Owner: testProgram}
	if err := executeSystem(t, []*runtime.AccountInfo{acc}, inst.Encode()); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if acc.Owner != testProgram {
		t.Errorf("owner = %s, want program", acc.Owner.String())
	}

	// Reassigning an account no longer owned by the allocator must fail.
	err := executeSystem(t, []*runtime.AccountInfo{acc}, inst.Encode())
	if !errors.Is(err, ErrInvalidAccountOwner) {
		t.Fatalf("expected invalid owner, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	source := walletInfo(testPayer, 1000, true, true)
	dest := walletInfo(testDest, 0, false, true)

	inst := &TransferInstruction{Lamports: 400}
	if err := executeSystem(t, []*runtime.AccountInfo{source, dest}, inst.Encode()); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if *source.Lamports != 600 || *dest.Lamports != 400 {
		t.Errorf("balances = %d/%d, want 600/400", *source.Lamports, *dest.Lamports)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	source := walletInfo(testPayer, 100, true, true)
	dest := walletInfo(testDest, 0, false, true)

	inst := &TransferInstruction{Lamports: 101}
	err := executeSystem(t, []*runtime.AccountInfo{source, dest}, inst.Encode())
	if !errors.Is(err, runtime.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if *source.Lamports != 100 || *dest.Lamports != 0 {
		t.Errorf("balances mutated on failed transfer: %d/%d", *source.Lamports, *dest.Lamports)
	}
}

func TestTransferRequiresWritableDestination(t *testing.T) {
	source := walletInfo(testPayer, 1000, true, true)
	dest := walletInfo(testDest, 0, false, false)

	inst := &TransferInstruction{Lamports: 1}
	err := executeSystem(t, []*runtime.AccountInfo{source, dest}, inst.Encode())
	if !errors.Is(err, runtime.ErrAccountNotWritable) {
		t.Fatalf("expected not writable, got %v", err)
	}
}

func TestReclaimAccount(t *testing.T) {
	target := walletInfo(testNewAcc, 500, false, true)
	target.Owner = testProgram
	target.Data = make([]byte, 32)
	recipient := walletInfo(testDest, 100, false, true)

	if err := ReclaimAccount(target, recipient); err != nil {
		t.Fatalf("ReclaimAccount failed: %v", err)
	}

	if *target.Lamports != 0 || target.Data != nil {
		t.Errorf("target not drained: %d lamports, %d bytes", *target.Lamports, len(target.Data))
	}
	if target.Owner != types.SystemProgramID {
		t.Errorf("target owner = %s, want allocator", target.Owner.String())
	}
	if *recipient.Lamports != 600 {
		t.Errorf("recipient lamports = %d, want 600", *recipient.Lamports)
	}
}

func TestExecuteRejectsShortData(t *testing.T) {
	err := executeSystem(t, nil, []byte{1, 2})
	if !errors.Is(err, ErrInvalidInstructionData) {
		t.Fatalf("expected invalid instruction data, got %v", err)
	}
}

func TestExecuteRejectsUnknownDiscriminator(t *testing.T) {
	err := executeSystem(t, nil, []byte{0xff, 0xff, 0xff, 0xff})
	if !errors.Is(err, ErrInvalidInstruction) {
		t.Fatalf("expected invalid instruction, got %v", err)
	}
}
