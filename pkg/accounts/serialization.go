package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// Serialization format:
// - lamports:   8 bytes (little-endian uint64)
// - data_len:   4 bytes (little-endian uint32)
// - data:       data_len bytes
// - owner:      32 bytes
// - executable: 1 byte (0 or 1)
// - rent_epoch: 8 bytes (little-endian uint64)

const (
	serializationHeaderSize = 8 + 4      // lamports + data_len
	serializationFooterSize = 32 + 1 + 8 // owner + executable + rent_epoch
	serializationMinSize    = serializationHeaderSize + serializationFooterSize
)

// ErrInvalidAccountData is returned when stored account bytes are malformed.
var ErrInvalidAccountData = errors.New("invalid account data")

// SerializeAccount serializes an account to binary format.
func SerializeAccount(account *types.Account) ([]byte, error) {
	if account == nil {
		return nil, errors.New("cannot serialize nil account")
	}

	dataLen := len(account.Data)
	buf := make([]byte, serializationMinSize+dataLen)

	offset := 0
	binary.LittleEndian.PutUint64(buf[offset:], uint64(account.Lamports))
	offset += 8
	binary.LittleEndian.PutUint32(buf[offset:], uint32(dataLen))
	offset += 4
	if dataLen > 0 {
		copy(buf[offset:], account.Data)
		offset += dataLen
	}
	copy(buf[offset:], account.Owner[:])
	offset += 32
	if account.Executable {
		buf[offset] = 1
	}
	offset++
	binary.LittleEndian.PutUint64(buf[offset:], uint64(account.RentEpoch))

	return buf, nil
}

// DeserializeAccount deserializes an account from binary format.
func DeserializeAccount(data []byte) (*types.Account, error) {
	if len(data) < serializationMinSize {
		return nil, fmt.Errorf("%w: data too short, need at least %d bytes, got %d",
			ErrInvalidAccountData, serializationMinSize, len(data))
	}

	offset := 0
	lamports := types.Lamports(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8
	dataLen := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	if len(data) < serializationMinSize+int(dataLen) {
		return nil, fmt.Errorf("%w: data length mismatch, expected %d bytes, got %d",
			ErrInvalidAccountData, serializationMinSize+int(dataLen), len(data))
	}

	var accountData []byte
	if dataLen > 0 {
		accountData = make([]byte, dataLen)
		copy(accountData, data[offset:offset+int(dataLen)])
		offset += int(dataLen)
	}

	var owner types.Pubkey
	copy(owner[:], data[offset:offset+32])
	offset += 32

	executable := data[offset] != 0
	offset++

	rentEpoch := types.Epoch(binary.LittleEndian.Uint64(data[offset:]))

	return &types.Account{
		Lamports:   lamports,
		Data:       accountData,
		Owner:      owner,
		Executable: executable,
		RentEpoch:  rentEpoch,
	}, nil
}
