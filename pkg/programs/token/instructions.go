package token

import (
	"encoding/binary"
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// Token Program instruction discriminators (first byte of instruction data).
const (
	InstructionInitializeMint    uint8 = 0
	InstructionInitializeAccount uint8 = 1
	InstructionTransfer          uint8 = 2
	InstructionMintTo            uint8 = 3
)

// InitializeMintInstruction initializes a new token mint.
// Accounts:
//
//	[0] mint (writable) - The mint to initialize
type InitializeMintInstruction struct {
	Decimals      uint8        // Number of decimal places
	MintAuthority types.Pubkey // Authority allowed to mint tokens
}

// Decode decodes an InitializeMint instruction from bytes.
func (inst *InitializeMintInstruction) Decode(data []byte) error {
	// Layout: decimals (1) + mint_authority (32)
	if len(data) < 33 {
		return fmt.Errorf("%w: InitializeMint requires 33 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Decimals = data[0]
	copy(inst.MintAuthority[:], data[1:33])
	return nil
}

// Encode encodes an InitializeMint instruction to bytes.
func (inst *InitializeMintInstruction) Encode() []byte {
	data := make([]byte, 1+33)
	data[0] = InstructionInitializeMint
	data[1] = inst.Decimals
	copy(data[2:34], inst.MintAuthority[:])
	return data
}

// InitializeAccountInstruction initializes a new token account.
// Accounts:
//
//	[0] account (writable) - The account to initialize
//	[1] mint - The mint for this account
//	[2] owner - The owner of the new account
type InitializeAccountInstruction struct {
	// No additional data required - accounts provide all info
}

// Decode decodes an InitializeAccount instruction from bytes.
func (inst *InitializeAccountInstruction) Decode(_ []byte) error {
	return nil
}

// Encode encodes an InitializeAccount instruction to bytes.
func (inst *InitializeAccountInstruction) Encode() []byte {
	return []byte{InstructionInitializeAccount}
}

// TransferInstruction moves tokens between accounts of the same mint.
// Accounts:
//
//	[0] source (writable) - The source token account
//	[1] destination (writable) - The destination token account
//	[2] authority (signer) - The source account owner
type TransferInstruction struct {
	Amount uint64 // Amount in base units
}

// Decode decodes a Transfer instruction from bytes.
func (inst *TransferInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Transfer requires 8 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a Transfer instruction to bytes.
func (inst *TransferInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = InstructionTransfer
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// MintToInstruction mints new tokens to an account.
// Accounts:
//
//	[0] mint (writable) - The mint
//	[1] destination (writable) - The account to mint to
//	[2] mint_authority (signer) - The mint authority
type MintToInstruction struct {
	Amount uint64 // Amount in base units
}

// Decode decodes a MintTo instruction from bytes.
func (inst *MintToInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: MintTo requires 8 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a MintTo instruction to bytes.
func (inst *MintToInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = InstructionMintTo
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}
