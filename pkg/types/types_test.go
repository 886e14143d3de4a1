package types

import "testing"

func TestPubkeyBase58RoundTrip(t *testing.T) {
	original := PubkeyFromSeed("types-test:some-key")

	decoded, err := PubkeyFromBase58(original.String())
	if err != nil {
		t.Fatalf("PubkeyFromBase58 failed: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip mismatch: %s != %s", decoded.String(), original.String())
	}
}

func TestPubkeyFromBase58Rejects(t *testing.T) {
	if _, err := PubkeyFromBase58("not-base58-0OIl"); err == nil {
		t.Error("expected error for invalid base58")
	}
	// Valid base58 but wrong length.
	if _, err := PubkeyFromBase58("abc"); err == nil {
		t.Error("expected error for short pubkey")
	}
}

func TestPubkeyFromSeedDeterministic(t *testing.T) {
	a := PubkeyFromSeed("types-test:seed")
	b := PubkeyFromSeed("types-test:seed")
	c := PubkeyFromSeed("types-test:other")

	if a != b {
		t.Error("same seed produced different pubkeys")
	}
	if a == c {
		t.Error("different seeds produced the same pubkey")
	}
}

func TestWellKnownProgramIDs(t *testing.T) {
	if SystemProgramID.String() != "11111111111111111111111111111111" {
		t.Errorf("allocator ID = %s", SystemProgramID.String())
	}
	if SystemProgramID == TokenProgramID || TokenProgramID == EscrowProgramID {
		t.Error("program identities collide")
	}
	if EscrowProgramID.IsZero() {
		t.Error("escrow program ID is zero")
	}
}

func TestAccountClone(t *testing.T) {
	original := NewAccountWithData(100, []byte{1, 2, 3}, PubkeyFromSeed("types-test:owner"))

	clone := original.Clone()
	clone.Data[0] = 9
	clone.Lamports = 1

	if original.Data[0] != 1 || original.Lamports != 100 {
		t.Error("clone shares state with original")
	}
}

func TestAccountIsEmpty(t *testing.T) {
	if !(&Account{}).IsEmpty() {
		t.Error("zero account not empty")
	}
	if (&Account{Lamports: 1}).IsEmpty() {
		t.Error("funded account reported empty")
	}
	if (&Account{Data: []byte{0}}).IsEmpty() {
		t.Error("allocated account reported empty")
	}
}

func TestRentExemptMinimumScalesWithSize(t *testing.T) {
	small := RentExemptMinimum(0)
	large := RentExemptMinimum(1024)

	if small == 0 {
		t.Error("zero-size account has zero rent minimum")
	}
	if large <= small {
		t.Errorf("rent minimum did not scale: %d <= %d", large, small)
	}
}
