package accounts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

func testAccount(lamports types.Lamports, data []byte) *types.Account {
	return &types.Account{
		Lamports: lamports,
		Data:     data,
		Owner:    types.PubkeyFromSeed("test:owner"),
	}
}

// runAccountsDBTests exercises the AccountsDB contract shared by every
// implementation.
func runAccountsDBTests(t *testing.T, db AccountsDB) {
	pk1 := types.PubkeyFromSeed("test:account1")
	pk2 := types.PubkeyFromSeed("test:account2")

	if acc, err := db.GetAccount(pk1); err != nil || acc != nil {
		t.Fatalf("GetAccount on missing key = (%v, %v), want (nil, nil)", acc, err)
	}
	if db.HasAccount(pk1) {
		t.Fatal("HasAccount true for missing key")
	}

	original := testAccount(500, []byte{1, 2, 3})
	if err := db.SetAccount(pk1, original); err != nil {
		t.Fatalf("SetAccount failed: %v", err)
	}
	if err := db.SetAccount(pk2, testAccount(900, nil)); err != nil {
		t.Fatalf("SetAccount failed: %v", err)
	}

	got, err := db.GetAccount(pk1)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Lamports != 500 || len(got.Data) != 3 {
		t.Errorf("stored account = %+v", got)
	}

	// Mutating the returned account must not affect the store.
	got.Data[0] = 99
	got.Lamports = 1
	again, err := db.GetAccount(pk1)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if again.Data[0] != 1 || again.Lamports != 500 {
		t.Error("store shares state with returned account")
	}

	if count := db.GetAccountsCount(); count != 2 {
		t.Errorf("GetAccountsCount = %d, want 2", count)
	}

	seen := make(map[types.Pubkey]types.Lamports)
	err = db.Iterate(func(pubkey types.Pubkey, account *types.Account) error {
		seen[pubkey] = account.Lamports
		return nil
	})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}
	if len(seen) != 2 || seen[pk1] != 500 || seen[pk2] != 900 {
		t.Errorf("Iterate saw %v", seen)
	}

	stop := errors.New("stop")
	if err := db.Iterate(func(types.Pubkey, *types.Account) error { return stop }); !errors.Is(err, stop) {
		t.Errorf("Iterate did not propagate callback error: %v", err)
	}

	if err := db.DeleteAccount(pk1); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if db.HasAccount(pk1) {
		t.Error("account still present after delete")
	}
	if count := db.GetAccountsCount(); count != 1 {
		t.Errorf("GetAccountsCount after delete = %d, want 1", count)
	}
}

func TestMemoryDB(t *testing.T) {
	db := NewMemoryDB()
	defer db.Close()
	runAccountsDBTests(t, db)
}

func TestBadgerDB(t *testing.T) {
	db, err := NewBadgerDB(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerDB failed: %v", err)
	}
	defer db.Close()
	runAccountsDBTests(t, db)
}

func TestBadgerDBPersistence(t *testing.T) {
	dir := t.TempDir()
	pk := types.PubkeyFromSeed("test:persisted")

	db, err := NewBadgerDB(dir)
	if err != nil {
		t.Fatalf("NewBadgerDB failed: %v", err)
	}
	if err := db.SetAccount(pk, testAccount(777, []byte{4, 5})); err != nil {
		t.Fatalf("SetAccount failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBadgerDB(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetAccount(pk)
	if err != nil {
		t.Fatalf("GetAccount after reopen failed: %v", err)
	}
	if got == nil || got.Lamports != 777 || len(got.Data) != 2 {
		t.Errorf("reopened account = %+v", got)
	}
	if count := reopened.GetAccountsCount(); count != 1 {
		t.Errorf("reopened count = %d, want 1", count)
	}
}

func TestSerializeAccountRoundTrip(t *testing.T) {
	original := &types.Account{
		Lamports:   12345,
		Data:       []byte{9, 8, 7, 6},
		Owner:      types.PubkeyFromSeed("test:program"),
		Executable: true,
		RentEpoch:  3,
	}

	serialized, err := SerializeAccount(original)
	if err != nil {
		t.Fatalf("SerializeAccount failed: %v", err)
	}
	got, err := DeserializeAccount(serialized)
	if err != nil {
		t.Fatalf("DeserializeAccount failed: %v", err)
	}
	if got.Lamports != original.Lamports || got.Owner != original.Owner ||
		got.Executable != original.Executable || got.RentEpoch != original.RentEpoch {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Data) != len(original.Data) {
		t.Errorf("data length = %d, want %d", len(got.Data), len(original.Data))
	}
}

func TestDeserializeAccountRejectsTruncated(t *testing.T) {
	data, err := SerializeAccount(testAccount(1, []byte{1, 2, 3}))
	if err != nil {
		t.Fatalf("SerializeAccount failed: %v", err)
	}
	if _, err := DeserializeAccount(data[:len(data)-5]); !errors.Is(err, ErrInvalidAccountData) {
		t.Fatalf("expected invalid account data, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	source := NewMemoryDB()
	defer source.Close()

	pk1 := types.PubkeyFromSeed("test:snap1")
	pk2 := types.PubkeyFromSeed("test:snap2")
	if err := source.SetAccount(pk1, testAccount(100, []byte{1})); err != nil {
		t.Fatalf("SetAccount failed: %v", err)
	}
	if err := source.SetAccount(pk2, testAccount(200, nil)); err != nil {
		t.Fatalf("SetAccount failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "accounts.snapshot")
	if err := ExportSnapshot(source, path); err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}

	dest := NewMemoryDB()
	defer dest.Close()

	count, err := ImportSnapshot(dest, path)
	if err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}
	if count != 2 {
		t.Errorf("imported %d accounts, want 2", count)
	}

	got, err := dest.GetAccount(pk1)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got == nil || got.Lamports != 100 || len(got.Data) != 1 {
		t.Errorf("imported account = %+v", got)
	}
	if dest.GetAccountsCount() != 2 {
		t.Errorf("dest count = %d, want 2", dest.GetAccountsCount())
	}
}

func TestImportSnapshotRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.snapshot")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	db := NewMemoryDB()
	defer db.Close()

	if _, err := ImportSnapshot(db, path); err == nil {
		t.Fatal("expected error importing garbage snapshot")
	}
}
