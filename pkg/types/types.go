// Package types provides the core ledger data types for the escrow
// gambling program and its host-side tooling.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// Hash represents a 32-byte SHA256 hash.
type Hash [32]byte

// ZeroHash is an all-zero hash.
var ZeroHash Hash

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String returns the base58 representation.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// Hex returns the hex representation.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// SHA256 computes the SHA256 hash of data.
func SHA256(data []byte) Hash {
	return sha256.Sum256(data)
}

// Pubkey represents a 32-byte account identity.
type Pubkey [32]byte

// ZeroPubkey is an all-zero pubkey. A zero pubkey in a game record means
// "unset" (no second player, no winner).
var ZeroPubkey Pubkey

// Well-known program and account identities.
var (
	// SystemProgramID is the allocator program that creates, resizes and
	// reclaims accounts.
	SystemProgramID = MustPubkeyFromBase58("11111111111111111111111111111111")

	// TokenProgramID is the fungible-asset program used to move stakes.
	TokenProgramID = MustPubkeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	// EscrowProgramID is the price-prediction escrow program.
	EscrowProgramID = PubkeyFromSeed("escrow-gambling-program-v1")

	// EthUsdcFeedID is the ETH/USDC price feed account consulted by the
	// escrow program (devnet feed).
	EthUsdcFeedID = MustPubkeyFromBase58("EdVCmQ9FSPcVe5YySXDPCRmc8aDQLKJ9xvYBMZPie1Vw")
)

// PubkeyFromBytes creates a Pubkey from a byte slice.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	if len(b) != 32 {
		return Pubkey{}, fmt.Errorf("pubkey must be 32 bytes, got %d", len(b))
	}
	var pk Pubkey
	copy(pk[:], b)
	return pk, nil
}

// PubkeyFromBase58 decodes a base58 string into a Pubkey.
func PubkeyFromBase58(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("invalid base58: %w", err)
	}
	return PubkeyFromBytes(b)
}

// MustPubkeyFromBase58 decodes a base58 string or panics.
func MustPubkeyFromBase58(s string) Pubkey {
	pk, err := PubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PubkeyFromSeed derives a deterministic Pubkey from a seed string.
func PubkeyFromSeed(seed string) Pubkey {
	return Pubkey(sha256.Sum256([]byte(seed)))
}

// Bytes returns the pubkey as a byte slice.
func (pk Pubkey) Bytes() []byte {
	return pk[:]
}

// String returns the base58 representation.
func (pk Pubkey) String() string {
	return base58.Encode(pk[:])
}

// IsZero returns true if the pubkey is all zeros.
func (pk Pubkey) IsZero() bool {
	return pk == ZeroPubkey
}

// Slot represents a slot number on the host ledger.
type Slot uint64

// Epoch represents an epoch number.
type Epoch uint64

// Lamports represents the host ledger's native balance unit
// (1 SOL = 1_000_000_000 lamports).
type Lamports uint64

// SOL converts lamports to SOL.
func (l Lamports) SOL() float64 {
	return float64(l) / 1_000_000_000
}
