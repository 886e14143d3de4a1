package executor

import (
	"errors"
	"testing"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/accounts"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/oracle"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/programs/escrow"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/programs/system"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/programs/token"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

const testSlot types.Slot = 100

var (
	testPlayer1         = types.PubkeyFromSeed("exec:player1")
	testPlayer2         = types.PubkeyFromSeed("exec:player2")
	testEscrowAuthority = types.PubkeyFromSeed("exec:escrow-authority")
	testMint            = types.PubkeyFromSeed("exec:mint")
	testPlayer1Funds    = types.PubkeyFromSeed("exec:player1-funds")
	testPlayer2Funds    = types.PubkeyFromSeed("exec:player2-funds")
	testEscrowFunds     = types.PubkeyFromSeed("exec:escrow-funds")
	testGame            = types.PubkeyFromSeed("exec:game")
)

func newTestExecutor(t *testing.T) (*Executor, accounts.AccountsDB) {
	t.Helper()
	db := accounts.NewMemoryDB()
	t.Cleanup(func() { db.Close() })

	registry := NewProgramRegistry()
	registry.Register(system.New())
	registry.Register(token.New())
	registry.Register(escrow.New())

	exec := New(db, registry)
	exec.SetSlot(testSlot)
	return exec, db
}

func setWallet(t *testing.T, db accounts.AccountsDB, pk types.Pubkey, lamports types.Lamports) {
	t.Helper()
	if err := db.SetAccount(pk, types.NewAccount(lamports, types.SystemProgramID)); err != nil {
		t.Fatalf("SetAccount failed: %v", err)
	}
}

func setTokenAccount(t *testing.T, db accounts.AccountsDB, pk, owner types.Pubkey, amount uint64) {
	t.Helper()
	acc := token.NewTokenAccount(testMint, owner)
	acc.Amount = amount
	err := db.SetAccount(pk, types.NewAccountWithData(
		types.RentExemptMinimum(token.TokenAccountSize), acc.Serialize(), types.TokenProgramID))
	if err != nil {
		t.Fatalf("SetAccount failed: %v", err)
	}
}

func setFeed(t *testing.T, db accounts.AccountsDB, price uint64) {
	t.Helper()
	feed := &oracle.PriceFeed{
		Status:      oracle.StatusTrading,
		Exponent:    -oracle.Decimals,
		Price:       int64(price),
		PublishSlot: testSlot,
	}
	err := db.SetAccount(types.EthUsdcFeedID, types.NewAccountWithData(
		types.RentExemptMinimum(oracle.PriceFeedSize), feed.Serialize(), types.SystemProgramID))
	if err != nil {
		t.Fatalf("SetAccount failed: %v", err)
	}
}

func storedBalance(t *testing.T, db accounts.AccountsDB, pk types.Pubkey) uint64 {
	t.Helper()
	acc, err := db.GetAccount(pk)
	if err != nil || acc == nil {
		t.Fatalf("GetAccount(%s) = (%v, %v)", pk.String(), acc, err)
	}
	state, err := token.DeserializeTokenAccount(acc.Data)
	if err != nil {
		t.Fatalf("DeserializeTokenAccount failed: %v", err)
	}
	return state.Amount
}

func lamportTransfer(from, to types.Pubkey, amount uint64) *types.Instruction {
	inst := &system.TransferInstruction{Lamports: amount}
	return &types.Instruction{
		ProgramID: types.SystemProgramID,
		Accounts: []types.AccountMeta{
			types.Meta(from, true, true),
			types.Meta(to, false, true),
		},
		Data: inst.Encode(),
	}
}

func TestExecuteCommitsOnSuccess(t *testing.T) {
	exec, db := newTestExecutor(t)
	setWallet(t, db, testPlayer1, 1000)

	result, err := exec.Execute(lamportTransfer(testPlayer1, testPlayer2, 400))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Err != nil {
		t.Fatalf("Result.Err = %v", result.Err)
	}
	if result.Slot != testSlot {
		t.Errorf("Result.Slot = %d, want %d", result.Slot, testSlot)
	}

	from, _ := db.GetAccount(testPlayer1)
	to, _ := db.GetAccount(testPlayer2)
	if from.Lamports != 600 {
		t.Errorf("source lamports = %d, want 600", from.Lamports)
	}
	if to == nil || to.Lamports != 400 {
		t.Errorf("destination = %+v, want 400 lamports", to)
	}
}

func TestExecuteRollsBackOnFailure(t *testing.T) {
	exec, db := newTestExecutor(t)
	setWallet(t, db, testPlayer1, 100)

	_, err := exec.Execute(lamportTransfer(testPlayer1, testPlayer2, 400))
	if !errors.Is(err, runtime.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	from, _ := db.GetAccount(testPlayer1)
	if from.Lamports != 100 {
		t.Errorf("failed instruction mutated source: %d lamports", from.Lamports)
	}
	if db.HasAccount(testPlayer2) {
		t.Error("failed instruction created destination account")
	}
}

func TestExecuteDeletesDrainedAccounts(t *testing.T) {
	exec, db := newTestExecutor(t)
	setWallet(t, db, testPlayer1, 250)

	if _, err := exec.Execute(lamportTransfer(testPlayer1, testPlayer2, 250)); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if db.HasAccount(testPlayer1) {
		t.Error("fully drained account still in store")
	}
}

func TestExecuteUnknownProgram(t *testing.T) {
	exec, _ := newTestExecutor(t)

	_, err := exec.Execute(&types.Instruction{
		ProgramID: types.PubkeyFromSeed("exec:no-such-program"),
	})
	if !errors.Is(err, ErrProgramNotFound) {
		t.Fatalf("expected program not found, got %v", err)
	}
}

func TestExecuteMergesDuplicateAccounts(t *testing.T) {
	// The same pubkey listed twice must share one view; a self-transfer
	// leaves the balance unchanged instead of minting lamports.
	exec, db := newTestExecutor(t)
	setWallet(t, db, testPlayer1, 1000)

	if _, err := exec.Execute(lamportTransfer(testPlayer1, testPlayer1, 300)); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	acc, _ := db.GetAccount(testPlayer1)
	if acc.Lamports != 1000 {
		t.Errorf("self transfer changed balance to %d", acc.Lamports)
	}
}

// seedGameLedger prepares wallets, token accounts and the price feed for a
// full game over the store.
func seedGameLedger(t *testing.T, db accounts.AccountsDB, price uint64) {
	t.Helper()
	setWallet(t, db, testPlayer1, 10_000_000_000)
	setWallet(t, db, testPlayer2, 10_000_000_000)
	setWallet(t, db, testEscrowAuthority, 10_000_000_000)
	setTokenAccount(t, db, testPlayer1Funds, testPlayer1, 2*escrow.StakeAmount)
	setTokenAccount(t, db, testPlayer2Funds, testPlayer2, 2*escrow.StakeAmount)
	setTokenAccount(t, db, testEscrowFunds, testEscrowAuthority, 0)
	setFeed(t, db, price)
}

func createGameInstruction(choice bool) *types.Instruction {
	inst := &escrow.CreateGameInstruction{Player1Choice: choice}
	return &types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts: []types.AccountMeta{
			types.Meta(testPlayer1, true, true),
			types.Meta(testGame, true, true),
			types.Meta(testEscrowFunds, false, true),
			types.Meta(testPlayer1Funds, false, true),
			types.Meta(types.TokenProgramID, false, false),
			types.Meta(types.EthUsdcFeedID, false, false),
			types.Meta(types.SystemProgramID, false, false),
		},
		Data: inst.Encode(),
	}
}

func joinGameInstruction() *types.Instruction {
	inst := &escrow.JoinGameInstruction{}
	return &types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts: []types.AccountMeta{
			types.Meta(testPlayer2, true, true),
			types.Meta(testGame, false, true),
			types.Meta(testEscrowFunds, false, true),
			types.Meta(testPlayer2Funds, false, true),
			types.Meta(types.TokenProgramID, false, false),
			types.Meta(types.EthUsdcFeedID, false, false),
			types.Meta(types.SystemProgramID, false, false),
		},
		Data: inst.Encode(),
	}
}

func settleCloseAccounts() []types.AccountMeta {
	return []types.AccountMeta{
		types.Meta(testPlayer1, true, true),
		types.Meta(testPlayer2, true, true),
		types.Meta(testGame, false, true),
		types.Meta(testEscrowAuthority, true, true),
		types.Meta(testEscrowFunds, false, true),
		types.Meta(testPlayer1Funds, false, true),
		types.Meta(testPlayer2Funds, false, true),
		types.Meta(types.TokenProgramID, false, false),
		types.Meta(types.EthUsdcFeedID, false, false),
		types.Meta(types.SystemProgramID, false, false),
	}
}

func TestFullGameLifecycle(t *testing.T) {
	const price = 2500_00000000
	exec, db := newTestExecutor(t)
	seedGameLedger(t, db, price)

	if _, err := exec.Execute(createGameInstruction(true)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	game, _ := db.GetAccount(testGame)
	if game == nil || game.Owner != types.EscrowProgramID {
		t.Fatalf("game record not committed: %+v", game)
	}
	if got := storedBalance(t, db, testEscrowFunds); got != escrow.StakeAmount {
		t.Fatalf("escrow balance after create = %d", got)
	}

	if _, err := exec.Execute(joinGameInstruction()); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if got := storedBalance(t, db, testEscrowFunds); got != escrow.PooledStake {
		t.Fatalf("escrow balance after join = %d", got)
	}

	settle := &escrow.SettleGameInstruction{ReportedPrice: price + price/50}
	if _, err := exec.Execute(&types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts:  settleCloseAccounts(),
		Data:      settle.Encode(),
	}); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	if got := storedBalance(t, db, testPlayer1Funds); got != escrow.StakeAmount+escrow.PooledStake {
		t.Errorf("winner funds = %d, want stake + pot", got)
	}
	game, _ = db.GetAccount(testGame)
	state, err := escrow.DeserializeGameState(game.Data)
	if err != nil {
		t.Fatalf("DeserializeGameState failed: %v", err)
	}
	if state.GameActive || state.Winner != testPlayer1 {
		t.Errorf("settled state = active %v, winner %s", state.GameActive, state.Winner.String())
	}

	if _, err := exec.Execute(&types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts:  settleCloseAccounts(),
		Data:      escrow.EncodeCloseGame(),
	}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if db.HasAccount(testGame) {
		t.Error("game record still in store after close")
	}
}

func TestFailedJoinLeavesStoreUntouched(t *testing.T) {
	const price = 2500_00000000
	exec, db := newTestExecutor(t)
	seedGameLedger(t, db, price)

	if _, err := exec.Execute(createGameInstruction(true)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Drift the oracle beyond the join tolerance.
	setFeed(t, db, price+price/50)

	result, err := exec.Execute(joinGameInstruction())
	if !errors.Is(err, escrow.ErrPriceFluctuationExceeded) {
		t.Fatalf("expected fluctuation error, got %v", err)
	}

	found := false
	for _, line := range result.Logs {
		if line == "Impossible to join Player 2, price fluctuation more than 1%" {
			found = true
		}
	}
	if !found {
		t.Errorf("failed instruction lost its logs: %v", result.Logs)
	}

	if got := storedBalance(t, db, testPlayer2Funds); got != 2*escrow.StakeAmount {
		t.Errorf("player2 funds changed on failed join: %d", got)
	}
	if got := storedBalance(t, db, testEscrowFunds); got != escrow.StakeAmount {
		t.Errorf("escrow balance changed on failed join: %d", got)
	}

	game, _ := db.GetAccount(testGame)
	state, err := escrow.DeserializeGameState(game.Data)
	if err != nil {
		t.Fatalf("DeserializeGameState failed: %v", err)
	}
	if state.HasSecondPlayer() {
		t.Error("failed join committed a second player")
	}
}
