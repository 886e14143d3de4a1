package escrow

import (
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/oracle"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/programs/system"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/programs/token"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// loadGameState reads the game record from an existing game account and
// verifies the escrow program owns it.
func loadGameState(ctx *runtime.ExecutionContext, game *runtime.AccountInfo) (*GameState, error) {
	if !ctx.IsProgramOwned(game.Pubkey) {
		return nil, fmt.Errorf("%w: owned by %s", ErrInvalidGameAccount, game.Owner.String())
	}
	return DeserializeGameState(game.Data)
}

// storeGameState writes the game record back into the game account.
func storeGameState(game *runtime.AccountInfo, state *GameState) {
	copy(game.Data, state.Serialize())
}

// handleCreateGame handles opcode 0.
// Account layout:
//
//	[0] creator (signer, writable) - player 1, pays the stake and the record rent
//	[1] game (signer, writable) - fresh account for the game record
//	[2] escrow (writable) - custodial token account holding both stakes
//	[3] creator funds (writable) - player 1's token account
//	[4] transfer authority - token program identity
//	[5] oracle feed - ETH/USDC price feed
//	[6] allocator - system program identity
func handleCreateGame(ctx *runtime.ExecutionContext, inst *CreateGameInstruction) error {
	creator, _ := ctx.GetAccountByIndex(0)
	game, _ := ctx.GetAccountByIndex(1)
	escrowAcc, _ := ctx.GetAccountByIndex(2)
	creatorFunds, _ := ctx.GetAccountByIndex(3)
	oracleFeed, _ := ctx.GetAccountByIndex(5)

	entryPrice := inst.EntryPrice
	if entryPrice == 0 {
		price, err := oracle.ReadPrice(oracleFeed, ctx.Slot)
		if err != nil {
			return err
		}
		ctx.Logf("Price of %s: %d", oracle.FeedSymbol, price)
		entryPrice = price
	}

	// Stake first: if the creator cannot fund the stake the record is
	// never allocated.
	if err := token.Transfer(creatorFunds, escrowAcc, creator, StakeAmount); err != nil {
		return fmt.Errorf("stake transfer: %w", err)
	}

	rent := uint64(types.RentExemptMinimum(GameStateSize))
	if err := system.CreateProgramAccount(creator, game, rent, GameStateSize, ctx.ProgramID); err != nil {
		return fmt.Errorf("game record allocation: %w", err)
	}

	state := &GameState{
		Player1:       creator.Pubkey,
		Player1Choice: inst.Player1Choice,
		Player2Choice: !inst.Player1Choice,
		EntryPrice:    entryPrice,
		LastPrice:     entryPrice,
		GameActive:    true,
	}
	storeGameState(game, state)

	ctx.Logf("Game created by %s, entry price %d", creator.Pubkey.String(), entryPrice)
	return nil
}

// handleQueryOraclePrice handles opcode 1.
// Account layout:
//
//	[0] oracle feed - ETH/USDC price feed
//	[1] game (writable) - existing game record
func handleQueryOraclePrice(ctx *runtime.ExecutionContext) error {
	oracleFeed, _ := ctx.GetAccountByIndex(0)
	game, _ := ctx.GetAccountByIndex(1)

	price, err := oracle.ReadPrice(oracleFeed, ctx.Slot)
	if err != nil {
		return err
	}
	ctx.Logf("Price of %s: %d", oracle.FeedSymbol, price)

	state, err := loadGameState(ctx, game)
	if err != nil {
		return err
	}
	state.LastPrice = price
	storeGameState(game, state)

	return nil
}

// handleJoinGame handles opcode 2.
// Account layout:
//
//	[0] player2 (signer, writable) - the joining player
//	[1] game (writable) - existing game record
//	[2] escrow (writable) - custodial token account
//	[3] player2 funds (writable) - player 2's token account
//	[4] transfer authority - token program identity
//	[5] oracle feed - ETH/USDC price feed
//	[6] allocator - system program identity
func handleJoinGame(ctx *runtime.ExecutionContext, inst *JoinGameInstruction) error {
	player2, _ := ctx.GetAccountByIndex(0)
	game, _ := ctx.GetAccountByIndex(1)
	escrowAcc, _ := ctx.GetAccountByIndex(2)
	player2Funds, _ := ctx.GetAccountByIndex(3)
	oracleFeed, _ := ctx.GetAccountByIndex(5)

	state, err := loadGameState(ctx, game)
	if err != nil {
		return err
	}

	if !state.GameActive {
		return ErrGameInactive
	}
	if state.HasSecondPlayer() {
		ctx.Logf("Player 2 already exists")
		return ErrSecondPlayerAlreadyJoined
	}

	oraclePrice, err := oracle.ReadPrice(oracleFeed, ctx.Slot)
	if err != nil {
		return err
	}

	// The join window closes when the price has drifted more than 1%
	// from the entry snapshot, in either direction.
	var drift uint64
	if oraclePrice > state.EntryPrice {
		drift = oraclePrice - state.EntryPrice
	} else {
		drift = state.EntryPrice - oraclePrice
	}
	if drift > state.EntryPrice/100 {
		ctx.Logf("Impossible to join Player 2, price fluctuation more than 1%%")
		return ErrPriceFluctuationExceeded
	}

	// A supplied price is cross-checked against the oracle reading under
	// the same tolerance; it is recorded, not independently trusted.
	lastPrice := inst.ClaimedPrice
	if lastPrice == 0 {
		lastPrice = oraclePrice
	} else {
		var claimDrift uint64
		if lastPrice > oraclePrice {
			claimDrift = lastPrice - oraclePrice
		} else {
			claimDrift = oraclePrice - lastPrice
		}
		if claimDrift > state.EntryPrice/100 {
			ctx.Logf("Impossible to join Player 2, price fluctuation more than 1%%")
			return ErrPriceFluctuationExceeded
		}
	}

	if err := token.Transfer(player2Funds, escrowAcc, player2, StakeAmount); err != nil {
		return fmt.Errorf("stake transfer: %w", err)
	}

	state.Player2 = player2.Pubkey
	state.LastPrice = lastPrice
	storeGameState(game, state)

	ctx.Logf("Player 2 %s joined the game", player2.Pubkey.String())
	return nil
}

// handleSettleGame handles opcode 3.
// Account layout:
//
//	[0] player1 (signer, writable)
//	[1] player2 (signer, writable)
//	[2] game (writable) - existing game record
//	[3] escrow authority (signer, writable) - authority over the escrow account
//	[4] escrow (writable) - custodial token account holding the pot
//	[5] player1 funds (writable)
//	[6] player2 funds (writable)
//	[7] transfer authority - token program identity
//	[8] oracle feed - ETH/USDC price feed
//	[9] allocator - system program identity
func handleSettleGame(ctx *runtime.ExecutionContext, inst *SettleGameInstruction) error {
	game, _ := ctx.GetAccountByIndex(2)
	escrowAuthority, _ := ctx.GetAccountByIndex(3)
	escrowAcc, _ := ctx.GetAccountByIndex(4)
	player1Funds, _ := ctx.GetAccountByIndex(5)
	player2Funds, _ := ctx.GetAccountByIndex(6)
	oracleFeed, _ := ctx.GetAccountByIndex(8)

	state, err := loadGameState(ctx, game)
	if err != nil {
		return err
	}

	if !state.GameActive {
		ctx.Logf("Impossible to settle game, game is inactive")
		return ErrGameInactive
	}
	if !state.HasSecondPlayer() {
		ctx.Logf("Impossible to settle game, there is not a player2")
		return ErrNoSecondPlayer
	}

	// A non-zero reported price is co-signed by both players and the
	// escrow authority; otherwise settlement falls back to the oracle.
	settlePrice := inst.ReportedPrice
	if settlePrice == 0 {
		settlePrice, err = oracle.ReadPrice(oracleFeed, ctx.Slot)
		if err != nil {
			return err
		}
		ctx.Logf("Price of %s: %d", oracle.FeedSymbol, settlePrice)
	}

	state.LastPrice = settlePrice
	state.GameActive = false

	if settlePrice == state.EntryPrice {
		// Exact tie: refund both stakes, no winner recorded.
		if err := token.Transfer(escrowAcc, player1Funds, escrowAuthority, StakeAmount); err != nil {
			return fmt.Errorf("tie refund player 1: %w", err)
		}
		if err := token.Transfer(escrowAcc, player2Funds, escrowAuthority, StakeAmount); err != nil {
			return fmt.Errorf("tie refund player 2: %w", err)
		}
		storeGameState(game, state)
		ctx.Logf("There is no winner")
		return nil
	}

	priceIncreased := settlePrice > state.EntryPrice
	winnerFunds := player2Funds
	if priceIncreased == state.Player1Choice {
		winnerFunds = player1Funds
	}

	if err := token.Transfer(escrowAcc, winnerFunds, escrowAuthority, PooledStake); err != nil {
		return fmt.Errorf("pot transfer: %w", err)
	}

	// The winner identity is the owner of the winning funding account.
	winnerState, err := token.DeserializeTokenAccount(winnerFunds.Data)
	if err != nil {
		return fmt.Errorf("winner account: %w", err)
	}
	state.Winner = winnerState.Owner
	storeGameState(game, state)

	ctx.Logf("Game settled, winner %s", state.Winner.String())
	return nil
}

// handleWithdraw handles opcode 4. Withdrawal is only for uncontested games:
// the creator takes the stake back before anyone joins.
// Account layout:
//
//	[0] player1 (signer, writable)
//	[1] game (writable) - existing game record
//	[2] escrow authority (signer, writable)
//	[3] escrow (writable) - custodial token account
//	[4] player1 funds (writable)
//	[5] transfer authority - token program identity
//	[6] allocator - system program identity
func handleWithdraw(ctx *runtime.ExecutionContext) error {
	game, _ := ctx.GetAccountByIndex(1)
	escrowAuthority, _ := ctx.GetAccountByIndex(2)
	escrowAcc, _ := ctx.GetAccountByIndex(3)
	player1Funds, _ := ctx.GetAccountByIndex(4)

	state, err := loadGameState(ctx, game)
	if err != nil {
		return err
	}

	if state.HasSecondPlayer() {
		ctx.Logf("Player 2 already exists")
		return ErrSecondPlayerAlreadyJoined
	}
	if !state.GameActive {
		return ErrGameInactive
	}

	if err := token.Transfer(escrowAcc, player1Funds, escrowAuthority, StakeAmount); err != nil {
		return fmt.Errorf("stake refund: %w", err)
	}

	state.GameActive = false
	storeGameState(game, state)

	ctx.Logf("Stake refunded to %s", state.Player1.String())
	return nil
}

// handleCloseGame handles opcode 5. The pot was already paid by SettleGame;
// closing only reclaims the game record's storage lamports to the creator.
// Account layout:
//
//	[0] player1 (signer, writable)
//	[1] player2 (signer, writable)
//	[2] game (writable) - existing game record
//	[3] escrow authority (signer, writable)
//	[4] escrow (writable)
//	[5] player1 funds (writable)
//	[6] player2 funds (writable)
//	[7] transfer authority - token program identity
//	[8] oracle feed - ETH/USDC price feed
//	[9] allocator - system program identity
func handleCloseGame(ctx *runtime.ExecutionContext) error {
	player1, _ := ctx.GetAccountByIndex(0)
	game, _ := ctx.GetAccountByIndex(2)

	state, err := loadGameState(ctx, game)
	if err != nil {
		return err
	}

	if state.GameActive {
		ctx.Logf("Impossible to close game, game is still active")
		return ErrGameStillActive
	}
	if !state.HasWinner() {
		ctx.Logf("Impossible to close game, there is no winner")
		return ErrNoWinner
	}

	if err := system.ReclaimAccount(game, player1); err != nil {
		return fmt.Errorf("record reclamation: %w", err)
	}

	ctx.Logf("Game closed, record storage reclaimed")
	return nil
}
