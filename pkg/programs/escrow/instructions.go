package escrow

import (
	"encoding/binary"
	"fmt"
)

// Escrow program opcodes (first byte of instruction data).
const (
	OpCreateGame       uint8 = 0
	OpQueryOraclePrice uint8 = 1
	OpJoinGame         uint8 = 2
	OpSettleGame       uint8 = 3
	OpWithdraw         uint8 = 4
	OpCloseGame        uint8 = 5
)

// StakeAmount is the fixed stake each player deposits into escrow, in base
// units of the staked asset (1,000 USDC at 6 decimals).
const StakeAmount uint64 = 1_000_000_000

// PooledStake is the full pot paid to the winner at settlement.
const PooledStake = 2 * StakeAmount

// CreateGameInstruction opens a new game.
// Payload: choice (1 byte) + entry_price (8 bytes LE). A zero entry price
// asks the program to snapshot the oracle price instead.
type CreateGameInstruction struct {
	Player1Choice bool   // true = creator bets the price increases
	EntryPrice    uint64 // 8 implied decimals; 0 = read from oracle
}

// Decode decodes a CreateGame payload (opcode byte excluded).
func (inst *CreateGameInstruction) Decode(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("%w: CreateGame requires a choice byte", ErrInvalidInstructionData)
	}
	inst.Player1Choice = data[0] != 0
	if len(data) >= 9 {
		inst.EntryPrice = binary.LittleEndian.Uint64(data[1:9])
	}
	return nil
}

// Encode encodes a CreateGame instruction to wire bytes, opcode included.
func (inst *CreateGameInstruction) Encode() []byte {
	data := make([]byte, 1+1+8)
	data[0] = OpCreateGame
	if inst.Player1Choice {
		data[1] = 1
	}
	binary.LittleEndian.PutUint64(data[2:10], inst.EntryPrice)
	return data
}

// JoinGameInstruction seats the second player.
// Payload: claimed_price (8 bytes LE). A zero claimed price asks the program
// to record the oracle price instead.
type JoinGameInstruction struct {
	ClaimedPrice uint64 // 8 implied decimals; 0 = read from oracle
}

// Decode decodes a JoinGame payload (opcode byte excluded).
func (inst *JoinGameInstruction) Decode(data []byte) error {
	if len(data) >= 8 {
		inst.ClaimedPrice = binary.LittleEndian.Uint64(data[0:8])
	}
	return nil
}

// Encode encodes a JoinGame instruction to wire bytes, opcode included.
func (inst *JoinGameInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = OpJoinGame
	binary.LittleEndian.PutUint64(data[1:9], inst.ClaimedPrice)
	return data
}

// SettleGameInstruction settles the game and pays the pot.
// Payload: reported_price (8 bytes LE). A zero reported price asks the
// program to settle on the oracle price; a non-zero value is a settlement
// price co-signed by both players and the escrow authority.
type SettleGameInstruction struct {
	ReportedPrice uint64 // 8 implied decimals; 0 = read from oracle
}

// Decode decodes a SettleGame payload (opcode byte excluded).
func (inst *SettleGameInstruction) Decode(data []byte) error {
	if len(data) >= 8 {
		inst.ReportedPrice = binary.LittleEndian.Uint64(data[0:8])
	}
	return nil
}

// Encode encodes a SettleGame instruction to wire bytes, opcode included.
func (inst *SettleGameInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = OpSettleGame
	binary.LittleEndian.PutUint64(data[1:9], inst.ReportedPrice)
	return data
}

// EncodeQueryOraclePrice encodes a QueryOraclePrice instruction (no payload).
func EncodeQueryOraclePrice() []byte {
	return []byte{OpQueryOraclePrice}
}

// EncodeWithdraw encodes a Withdraw instruction (no payload).
func EncodeWithdraw() []byte {
	return []byte{OpWithdraw}
}

// EncodeCloseGame encodes a CloseGame instruction (no payload).
func EncodeCloseGame() []byte {
	return []byte{OpCloseGame}
}
