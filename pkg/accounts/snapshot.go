package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// Snapshot file format (zstd-compressed stream):
// - magic:   8 bytes ("ESCRSNAP")
// - version: 4 bytes (little-endian uint32)
// - count:   8 bytes (little-endian uint64)
// - entries: count times
//   - pubkey:      32 bytes
//   - account_len: 4 bytes (little-endian uint32)
//   - account:     account_len bytes (SerializeAccount format)

const snapshotVersion = 1

var snapshotMagic = [8]byte{'E', 'S', 'C', 'R', 'S', 'N', 'A', 'P'}

// Snapshot errors
var (
	ErrInvalidSnapshot     = errors.New("invalid snapshot file")
	ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")
)

// ExportSnapshot writes all accounts in db to a zstd-compressed snapshot file.
func ExportSnapshot(db AccountsDB, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	header := make([]byte, 8+4+8)
	copy(header, snapshotMagic[:])
	binary.LittleEndian.PutUint32(header[8:], snapshotVersion)
	binary.LittleEndian.PutUint64(header[12:], db.GetAccountsCount())
	if _, err := encoder.Write(header); err != nil {
		encoder.Close()
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}

	err = db.Iterate(func(pubkey types.Pubkey, account *types.Account) error {
		data, serErr := SerializeAccount(account)
		if serErr != nil {
			return serErr
		}

		entry := make([]byte, 32+4+len(data))
		copy(entry, pubkey[:])
		binary.LittleEndian.PutUint32(entry[32:], uint32(len(data)))
		copy(entry[36:], data)

		_, wErr := encoder.Write(entry)
		return wErr
	})
	if err != nil {
		encoder.Close()
		return fmt.Errorf("failed to write snapshot entries: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return nil
}

// ImportSnapshot loads accounts from a snapshot file into db.
// Returns the number of accounts imported.
func ImportSnapshot(db AccountsDB, path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	header := make([]byte, 8+4+8)
	if _, err := io.ReadFull(decoder, header); err != nil {
		return 0, fmt.Errorf("%w: short header: %v", ErrInvalidSnapshot, err)
	}
	if [8]byte(header[:8]) != snapshotMagic {
		return 0, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if v := binary.LittleEndian.Uint32(header[8:]); v != snapshotVersion {
		return 0, fmt.Errorf("%w: version %d", ErrUnsupportedSnapshot, v)
	}
	count := binary.LittleEndian.Uint64(header[12:])

	var imported uint64
	entryHeader := make([]byte, 32+4)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(decoder, entryHeader); err != nil {
			return imported, fmt.Errorf("%w: short entry %d: %v", ErrInvalidSnapshot, i, err)
		}

		pubkey, err := types.PubkeyFromBytes(entryHeader[:32])
		if err != nil {
			return imported, fmt.Errorf("%w: entry %d: %v", ErrInvalidSnapshot, i, err)
		}

		accountLen := binary.LittleEndian.Uint32(entryHeader[32:])
		accountData := make([]byte, accountLen)
		if _, err := io.ReadFull(decoder, accountData); err != nil {
			return imported, fmt.Errorf("%w: short account %d: %v", ErrInvalidSnapshot, i, err)
		}

		account, err := DeserializeAccount(accountData)
		if err != nil {
			return imported, fmt.Errorf("%w: entry %d: %v", ErrInvalidSnapshot, i, err)
		}

		if err := db.SetAccount(pubkey, account); err != nil {
			return imported, fmt.Errorf("failed to store account %s: %w", pubkey.String(), err)
		}
		imported++
	}

	return imported, nil
}
