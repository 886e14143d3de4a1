package escrow

import (
	"encoding/binary"
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// GameStateSize is the size of a serialized GameState (115 bytes).
const GameStateSize = 115

// GameState is the persisted record of one game, stored under the game's
// dedicated account.
// Layout (115 bytes, little-endian, no padding):
//   - player1:        Pubkey [0:32]   creator, set once at creation
//   - player2:        Pubkey [32:64]  joiner, all-zero until JoinGame
//   - player1_choice: bool   [64]     true = bets the price increases
//   - player2_choice: bool   [65]     always the complement of player1_choice
//   - entry_price:    u64    [66:74]  price snapshot at creation, 8 implied decimals
//   - last_price:     u64    [74:82]  most recent observed price
//   - game_active:    bool   [82]     true from creation until settle/withdraw
//   - winner:         Pubkey [83:115] all-zero until a decisive settlement
type GameState struct {
	Player1       types.Pubkey
	Player2       types.Pubkey
	Player1Choice bool
	Player2Choice bool
	EntryPrice    uint64
	LastPrice     uint64
	GameActive    bool
	Winner        types.Pubkey
}

// DeserializeGameState deserializes a GameState from account bytes.
func DeserializeGameState(data []byte) (*GameState, error) {
	if len(data) < GameStateSize {
		return nil, fmt.Errorf("%w: game record too short, expected %d bytes, got %d",
			ErrInvalidGameAccount, GameStateSize, len(data))
	}

	state := &GameState{}
	copy(state.Player1[:], data[0:32])
	copy(state.Player2[:], data[32:64])
	state.Player1Choice = data[64] != 0
	state.Player2Choice = data[65] != 0
	state.EntryPrice = binary.LittleEndian.Uint64(data[66:74])
	state.LastPrice = binary.LittleEndian.Uint64(data[74:82])
	state.GameActive = data[82] != 0
	copy(state.Winner[:], data[83:115])

	return state, nil
}

// Serialize serializes the GameState to account bytes.
func (s *GameState) Serialize() []byte {
	data := make([]byte, GameStateSize)
	copy(data[0:32], s.Player1[:])
	copy(data[32:64], s.Player2[:])
	if s.Player1Choice {
		data[64] = 1
	}
	if s.Player2Choice {
		data[65] = 1
	}
	binary.LittleEndian.PutUint64(data[66:74], s.EntryPrice)
	binary.LittleEndian.PutUint64(data[74:82], s.LastPrice)
	if s.GameActive {
		data[82] = 1
	}
	copy(data[83:115], s.Winner[:])
	return data
}

// HasSecondPlayer returns true once a second player has joined.
func (s *GameState) HasSecondPlayer() bool {
	return !s.Player2.IsZero()
}

// HasWinner returns true once a decisive settlement recorded a winner.
func (s *GameState) HasWinner() bool {
	return !s.Winner.IsZero()
}
