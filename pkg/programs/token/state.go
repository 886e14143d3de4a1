package token

import (
	"encoding/binary"
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// Account state sizes
const (
	// MintSize is the size of a serialized Mint account (42 bytes)
	MintSize = 42

	// TokenAccountSize is the size of a serialized TokenAccount (73 bytes)
	TokenAccountSize = 73
)

// Account state enum values
const (
	AccountStateUninitialized uint8 = 0
	AccountStateInitialized   uint8 = 1
)

// Mint represents a fungible-asset mint account.
// Layout (42 bytes total):
//   - mint_authority: Pubkey (32 bytes)
//   - supply: u64 (8 bytes)
//   - decimals: u8 (1 byte)
//   - is_initialized: bool (1 byte)
type Mint struct {
	MintAuthority types.Pubkey // Authority allowed to mint new tokens
	Supply        uint64       // Total supply
	Decimals      uint8        // Number of decimal places
	IsInitialized bool
}

// TokenAccount represents a fungible-asset holding account.
// Layout (73 bytes total):
//   - mint: Pubkey (32 bytes)
//   - owner: Pubkey (32 bytes)
//   - amount: u64 (8 bytes)
//   - state: u8 (1 byte)
type TokenAccount struct {
	Mint   types.Pubkey // The asset type this account holds
	Owner  types.Pubkey // Authority allowed to move funds out
	Amount uint64       // Balance in base units
	State  uint8
}

// DeserializeMint deserializes a Mint from bytes.
func DeserializeMint(data []byte) (*Mint, error) {
	if len(data) < MintSize {
		return nil, fmt.Errorf("%w: mint data too short, expected %d bytes, got %d",
			ErrInvalidAccountData, MintSize, len(data))
	}

	mint := &Mint{}
	copy(mint.MintAuthority[:], data[0:32])
	mint.Supply = binary.LittleEndian.Uint64(data[32:40])
	mint.Decimals = data[40]
	mint.IsInitialized = data[41] != 0

	return mint, nil
}

// Serialize serializes the Mint to bytes.
func (m *Mint) Serialize() []byte {
	data := make([]byte, MintSize)
	copy(data[0:32], m.MintAuthority[:])
	binary.LittleEndian.PutUint64(data[32:40], m.Supply)
	data[40] = m.Decimals
	if m.IsInitialized {
		data[41] = 1
	}
	return data
}

// DeserializeTokenAccount deserializes a TokenAccount from bytes.
func DeserializeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("%w: token account data too short, expected %d bytes, got %d",
			ErrInvalidAccountData, TokenAccountSize, len(data))
	}

	account := &TokenAccount{}
	copy(account.Mint[:], data[0:32])
	copy(account.Owner[:], data[32:64])
	account.Amount = binary.LittleEndian.Uint64(data[64:72])
	account.State = data[72]

	return account, nil
}

// Serialize serializes the TokenAccount to bytes.
func (a *TokenAccount) Serialize() []byte {
	data := make([]byte, TokenAccountSize)
	copy(data[0:32], a.Mint[:])
	copy(data[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(data[64:72], a.Amount)
	data[72] = a.State
	return data
}

// IsInitializedAccount returns true if the account has been initialized.
func (a *TokenAccount) IsInitializedAccount() bool {
	return a.State != AccountStateUninitialized
}

// NewMint creates a new initialized Mint.
func NewMint(decimals uint8, mintAuthority types.Pubkey) *Mint {
	return &Mint{
		MintAuthority: mintAuthority,
		Supply:        0,
		Decimals:      decimals,
		IsInitialized: true,
	}
}

// NewTokenAccount creates a new initialized TokenAccount with zero balance.
func NewTokenAccount(mint, owner types.Pubkey) *TokenAccount {
	return &TokenAccount{
		Mint:   mint,
		Owner:  owner,
		Amount: 0,
		State:  AccountStateInitialized,
	}
}
