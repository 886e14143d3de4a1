// Escrowd: local host for the price-prediction escrow program.
//
// Escrowd runs the escrow, token and allocator programs against a persistent
// account store. It can bootstrap a ledger, replay a complete game lifecycle
// for verification, and export or import account snapshots.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/accounts"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/executor"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/oracle"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/programs/escrow"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/programs/system"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/programs/token"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "dev"
)

// Configuration flags
var (
	configFile     = flag.String("config", "/root/.config/escrowd/config.json", "Path to JSON configuration file")
	dataDir        = flag.String("data-dir", "", "Data directory for the account store (\":memory:\" for in-memory)")
	slot           = flag.Uint64("slot", 0, "Host slot for executed instructions")
	oraclePrice    = flag.Uint64("oracle-price", 0, "Published ETH/USDC price, 8 implied decimals")
	runDemo        = flag.Bool("demo", false, "Replay a full game lifecycle and exit")
	exportSnapshot = flag.String("export-snapshot", "", "Export the account store to a snapshot file and exit")
	importSnapshot = flag.String("import-snapshot", "", "Import a snapshot file into the account store before other actions")
	showStats      = flag.Bool("stats", false, "Print account store statistics")
	showVersion    = flag.Bool("version", false, "Print version and exit")
)

// Config represents the JSON configuration file structure.
type Config struct {
	General GeneralConfig `json:"general"`
	Ledger  LedgerConfig  `json:"ledger"`
	Oracle  OracleConfig  `json:"oracle"`
}

// GeneralConfig holds general application settings.
type GeneralConfig struct {
	DataDir string `json:"data_dir"`
}

// LedgerConfig holds host ledger settings.
type LedgerConfig struct {
	Slot uint64 `json:"slot"`
}

// OracleConfig holds the local price feed settings used when bootstrapping.
type OracleConfig struct {
	PriceE8    uint64 `json:"price_e8"`
	Confidence uint64 `json:"confidence"`
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataDir: ":memory:",
		},
		Ledger: LedgerConfig{
			Slot: 100,
		},
		Oracle: OracleConfig{
			PriceE8:    2500_00000000, // 2500 ETH/USDC
			Confidence: 50000000,
		},
	}
}

// loadConfig loads configuration from the specified JSON file.
// If the file doesn't exist, it returns the default configuration.
func loadConfig(configPath string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config file not found at %s, using defaults", configPath)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	log.Printf("Loaded configuration from %s", configPath)
	return cfg, nil
}

// applyConfigWithCLIOverrides applies config values and lets CLI flags
// override them when explicitly set.
func applyConfigWithCLIOverrides(cfg Config) {
	flagSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagSet[f.Name] = true
	})

	if !flagSet["data-dir"] {
		*dataDir = cfg.General.DataDir
	}
	if !flagSet["slot"] {
		*slot = cfg.Ledger.Slot
	}
	if !flagSet["oracle-price"] {
		*oraclePrice = cfg.Oracle.PriceE8
	}
}

// Demo identities, derived deterministically so repeated runs against a
// persistent store address the same accounts.
var (
	demoPlayer1         = types.PubkeyFromSeed("escrowd-demo:player1")
	demoPlayer2         = types.PubkeyFromSeed("escrowd-demo:player2")
	demoEscrowAuthority = types.PubkeyFromSeed("escrowd-demo:escrow-authority")
	demoMint            = types.PubkeyFromSeed("escrowd-demo:usdc-mint")
	demoPlayer1Funds    = types.PubkeyFromSeed("escrowd-demo:player1-funds")
	demoPlayer2Funds    = types.PubkeyFromSeed("escrowd-demo:player2-funds")
	demoEscrowFunds     = types.PubkeyFromSeed("escrowd-demo:escrow-funds")
	demoGame            = types.PubkeyFromSeed("escrowd-demo:game")
)

// run executes one instruction and logs its program output.
func run(exec *executor.Executor, label string, inst *types.Instruction) error {
	result, err := exec.Execute(inst)
	for _, line := range result.Logs {
		log.Printf("  [%s] %s", label, line)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

// seedLedger writes the pre-program state the demo needs: funded wallets for
// both players and the escrow authority, plus the published price feed.
func seedLedger(db accounts.AccountsDB, cfg Config, currentSlot types.Slot) error {
	const walletLamports = 10_000_000_000

	for _, wallet := range []types.Pubkey{demoPlayer1, demoPlayer2, demoEscrowAuthority} {
		if err := db.SetAccount(wallet, types.NewAccount(walletLamports, types.SystemProgramID)); err != nil {
			return err
		}
	}

	feed := &oracle.PriceFeed{
		Status:      oracle.StatusTrading,
		Exponent:    -oracle.Decimals,
		Price:       int64(cfg.Oracle.PriceE8),
		Confidence:  cfg.Oracle.Confidence,
		PublishSlot: currentSlot,
	}
	return db.SetAccount(types.EthUsdcFeedID,
		types.NewAccountWithData(types.RentExemptMinimum(oracle.PriceFeedSize), feed.Serialize(), types.SystemProgramID))
}

// bootstrapTokenLedger creates the stake mint, both players' funding accounts
// and the custodial escrow account, then mints each player a starting balance.
func bootstrapTokenLedger(exec *executor.Executor) error {
	createTokenStateAccount := func(label string, pubkey types.Pubkey, space uint64) error {
		createInst := &system.CreateAccountInstruction{
			Lamports: uint64(types.RentExemptMinimum(space)),
			Space:    space,
			Owner:    types.TokenProgramID,
		}
		return run(exec, label, &types.Instruction{
			ProgramID: types.SystemProgramID,
			Accounts: []types.AccountMeta{
				types.Meta(demoPlayer1, true, true),
				types.Meta(pubkey, true, true),
			},
			Data: createInst.Encode(),
		})
	}

	if err := createTokenStateAccount("create-mint", demoMint, token.MintSize); err != nil {
		return err
	}
	initMint := &token.InitializeMintInstruction{
		Decimals:      6,
		MintAuthority: demoEscrowAuthority,
	}
	if err := run(exec, "init-mint", &types.Instruction{
		ProgramID: types.TokenProgramID,
		Accounts:  []types.AccountMeta{types.Meta(demoMint, false, true)},
		Data:      initMint.Encode(),
	}); err != nil {
		return err
	}

	holdings := []struct {
		label  string
		pubkey types.Pubkey
		owner  types.Pubkey
	}{
		{"player1-funds", demoPlayer1Funds, demoPlayer1},
		{"player2-funds", demoPlayer2Funds, demoPlayer2},
		{"escrow-funds", demoEscrowFunds, demoEscrowAuthority},
	}
	for _, h := range holdings {
		if err := createTokenStateAccount("create-"+h.label, h.pubkey, token.TokenAccountSize); err != nil {
			return err
		}
		initAccount := &token.InitializeAccountInstruction{}
		if err := run(exec, "init-"+h.label, &types.Instruction{
			ProgramID: types.TokenProgramID,
			Accounts: []types.AccountMeta{
				types.Meta(h.pubkey, false, true),
				types.Meta(demoMint, false, false),
				types.Meta(h.owner, false, false),
			},
			Data: initAccount.Encode(),
		}); err != nil {
			return err
		}
	}

	mintTo := &token.MintToInstruction{Amount: 10 * escrow.StakeAmount}
	for _, funds := range []types.Pubkey{demoPlayer1Funds, demoPlayer2Funds} {
		if err := run(exec, "mint-to", &types.Instruction{
			ProgramID: types.TokenProgramID,
			Accounts: []types.AccountMeta{
				types.Meta(demoMint, false, true),
				types.Meta(funds, false, true),
				types.Meta(demoEscrowAuthority, true, false),
			},
			Data: mintTo.Encode(),
		}); err != nil {
			return err
		}
	}

	return nil
}

// playGame replays one full game: create, price query, join, settle, close.
// Player 1 bets on a rising price and the co-signed settlement price is 2%
// above entry, so player 1 takes the pot.
func playGame(exec *executor.Executor, entryPrice uint64) error {
	createGame := &escrow.CreateGameInstruction{
		Player1Choice: true,
		EntryPrice:    0, // snapshot the oracle
	}
	if err := run(exec, "create-game", &types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts: []types.AccountMeta{
			types.Meta(demoPlayer1, true, true),
			types.Meta(demoGame, true, true),
			types.Meta(demoEscrowFunds, false, true),
			types.Meta(demoPlayer1Funds, false, true),
			types.Meta(types.TokenProgramID, false, false),
			types.Meta(types.EthUsdcFeedID, false, false),
			types.Meta(types.SystemProgramID, false, false),
		},
		Data: createGame.Encode(),
	}); err != nil {
		return err
	}

	if err := run(exec, "query-price", &types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts: []types.AccountMeta{
			types.Meta(types.EthUsdcFeedID, false, false),
			types.Meta(demoGame, false, true),
		},
		Data: escrow.EncodeQueryOraclePrice(),
	}); err != nil {
		return err
	}

	joinGame := &escrow.JoinGameInstruction{}
	if err := run(exec, "join-game", &types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts: []types.AccountMeta{
			types.Meta(demoPlayer2, true, true),
			types.Meta(demoGame, false, true),
			types.Meta(demoEscrowFunds, false, true),
			types.Meta(demoPlayer2Funds, false, true),
			types.Meta(types.TokenProgramID, false, false),
			types.Meta(types.EthUsdcFeedID, false, false),
			types.Meta(types.SystemProgramID, false, false),
		},
		Data: joinGame.Encode(),
	}); err != nil {
		return err
	}

	settleAccounts := []types.AccountMeta{
		types.Meta(demoPlayer1, true, true),
		types.Meta(demoPlayer2, true, true),
		types.Meta(demoGame, false, true),
		types.Meta(demoEscrowAuthority, true, true),
		types.Meta(demoEscrowFunds, false, true),
		types.Meta(demoPlayer1Funds, false, true),
		types.Meta(demoPlayer2Funds, false, true),
		types.Meta(types.TokenProgramID, false, false),
		types.Meta(types.EthUsdcFeedID, false, false),
		types.Meta(types.SystemProgramID, false, false),
	}

	settleGame := &escrow.SettleGameInstruction{
		ReportedPrice: entryPrice + entryPrice/50,
	}
	if err := run(exec, "settle-game", &types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts:  settleAccounts,
		Data:      settleGame.Encode(),
	}); err != nil {
		return err
	}

	return run(exec, "close-game", &types.Instruction{
		ProgramID: types.EscrowProgramID,
		Accounts:  settleAccounts,
		Data:      escrow.EncodeCloseGame(),
	})
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("escrowd %s (%s)\n", Version, GitCommit)
		fmt.Println("Price-prediction escrow host")
		os.Exit(0)
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("Starting escrowd %s", Version)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyConfigWithCLIOverrides(cfg)
	cfg.Oracle.PriceE8 = *oraclePrice

	var db accounts.AccountsDB
	if *dataDir == ":memory:" {
		db = accounts.NewMemoryDB()
		log.Println("Using in-memory account store")
	} else {
		dbPath := *dataDir + "/accounts"
		if err := os.MkdirAll(dbPath, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		db, err = accounts.NewBadgerDB(dbPath)
		if err != nil {
			log.Fatalf("Failed to open account store: %v", err)
		}
		log.Printf("Opened BadgerDB account store at %s", dbPath)
	}
	defer db.Close()

	if *importSnapshot != "" {
		count, err := accounts.ImportSnapshot(db, *importSnapshot)
		if err != nil {
			log.Fatalf("Failed to import snapshot: %v", err)
		}
		log.Printf("Imported %d accounts from %s", count, *importSnapshot)
	}

	registry := executor.NewProgramRegistry()
	registry.Register(system.New())
	registry.Register(token.New())
	registry.Register(escrow.New())

	exec := executor.New(db, registry)
	exec.SetSlot(types.Slot(*slot))

	log.Println("Registered programs:")
	log.Printf("  allocator: %s", types.SystemProgramID.String())
	log.Printf("  token:     %s", types.TokenProgramID.String())
	log.Printf("  escrow:    %s", types.EscrowProgramID.String())

	if *runDemo {
		log.Printf("Replaying game lifecycle at slot %d, oracle price %d", *slot, cfg.Oracle.PriceE8)
		if err := seedLedger(db, cfg, types.Slot(*slot)); err != nil {
			log.Fatalf("Failed to seed ledger: %v", err)
		}
		if err := bootstrapTokenLedger(exec); err != nil {
			log.Fatalf("Token bootstrap failed: %v", err)
		}
		if err := playGame(exec, cfg.Oracle.PriceE8); err != nil {
			log.Fatalf("Game lifecycle failed: %v", err)
		}
		log.Println("Game lifecycle completed")
	}

	if *exportSnapshot != "" {
		if err := accounts.ExportSnapshot(db, *exportSnapshot); err != nil {
			log.Fatalf("Failed to export snapshot: %v", err)
		}
		log.Printf("Exported %d accounts to %s", db.GetAccountsCount(), *exportSnapshot)
	}

	if *showStats {
		log.Println("=== Account Store Statistics ===")
		log.Printf("  Accounts: %d", db.GetAccountsCount())
		log.Println("================================")
	}
}
