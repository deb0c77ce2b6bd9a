package server

import (
	"context"
	"log/slog"
	"os"
	gosync "sync"
	"time"

	"arena/lib/authentication"
	"arena/lib/battle"
	"arena/lib/ledger"
	"arena/lib/maintenance"
	"arena/lib/server/middleware"
	"arena/lib/services"
	"arena/lib/sync"
	"arena/lib/vault"
	"arena/lib/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// DETAIL_IDLE_TTL is how long an unread battle detail poller keeps running
// after its last consumer read before the janitor stops it.
const DETAIL_IDLE_TTL = 2 * time.Minute

type ArenaServer struct {
	*fiber.App
	Cache        services.Cache
	Ledger       *ledger.RPCClient
	Reader       *services.CachedReader
	Cards        *sync.CardCatalog
	Registry     *sync.BattleRegistry
	Actions      *battle.Actions
	Signer       *wallet.Signer
	VaultManager vault.VaultManager
	Sessions     *authentication.SessionService

	root_ctx   context.Context
	details    map[string]*detailEntry
	details_mu gosync.Mutex
}

type detailEntry struct {
	sync       *sync.BattleDetailSync
	lastAccess time.Time
}

func New() (*ArenaServer, error) {
	vault_manager, err := vault.NewVaultManager()
	if err != nil {
		return nil, err
	}

	server := ArenaServer{
		App:          fiber.New(),
		Cache:        services.DefaultCache(),
		Ledger:       ledger.NewRPCClient(os.Getenv("LEDGER_RPC_URL")),
		VaultManager: vault_manager,
		details:      make(map[string]*detailEntry),
	}

	return &server, nil
}

func (server *ArenaServer) Configure() error {
	err := maintenance.InitLogger("arena.log")
	if err == nil {
		server.App.Use(middleware.Logger())
	}
	server.App.Use(recover.New())
	server.App.Use(helmet.New())
	server.App.Use(cors.New(cors.Config{
		AllowOrigins: os.Getenv("CORS_ORIGINS"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// The object cache degrades to in-process when no redis is configured.
	var object_cache services.ObjectCache = services.NewMemoryCache()
	if os.Getenv("CACHE_ADDRESS") != "" {
		if err := server.Cache.Connect(os.Getenv("CACHE_PASSWORD")); err != nil {
			slog.Warn("cache unavailable, using in-process object cache", "error", err)
		} else {
			object_cache = &server.Cache
		}
	}
	server.Reader = services.NewCachedReader(server.Ledger, object_cache)

	seed, err := wallet.LoadSeed(&server.VaultManager)
	if err != nil {
		return err
	}
	signer, err := wallet.NewSigner(server.Ledger, seed)
	if err != nil {
		return err
	}
	server.Signer = signer

	signing_key, err := server.VaultManager.GetApiKey("ARENA_JWT_KEY")
	if err != nil {
		signing_key = os.Getenv("JWT_SIGNING_KEY")
	}
	server.Sessions = authentication.NewSessionService(signing_key, authentication.DEFAULT_SESSION_DURATION)

	package_id := os.Getenv("CARD_PACKAGE_ID")
	server.Cards = sync.NewCardCatalog(server.Reader, package_id)
	server.Registry = sync.NewBattleRegistry(server.Reader, os.Getenv("BATTLE_RECORD"))
	server.Actions = battle.NewActions(
		server.Signer,
		server.Cards,
		server.Registry,
		package_id,
		os.Getenv("BATTLE_RECORD"),
		os.Getenv("CARD_RECORD"),
		os.Getenv("NFT_TEMPLATES"),
	)

	return nil
}

// Start launches the lobby and catalog pollers and the detail janitor.
func (server *ArenaServer) Start(ctx context.Context) error {
	server.root_ctx = ctx

	if err := server.Registry.Start(ctx); err != nil {
		return err
	}
	if err := server.Cards.Start(ctx, server.Signer.Address()); err != nil {
		return err
	}

	go server.sweepDetails(ctx)

	slog.Info("arena gateway started",
		"wallet", server.Signer.Address(),
		"rpc", os.Getenv("LEDGER_RPC_URL"))
	return nil
}

func (server *ArenaServer) Stop() {
	server.Registry.Stop()
	server.Cards.Stop()

	server.details_mu.Lock()
	defer server.details_mu.Unlock()
	for battle_id, entry := range server.details {
		entry.sync.Stop()
		delete(server.details, battle_id)
	}
}

// DetailFor returns the poller for one battle, creating and starting it on
// first access. The poller's lifetime is bound to its consumers: terminal
// battles freeze themselves, idle ones are swept.
func (server *ArenaServer) DetailFor(battleID string) (*sync.BattleDetailSync, error) {
	server.details_mu.Lock()
	defer server.details_mu.Unlock()

	if entry, ok := server.details[battleID]; ok {
		entry.lastAccess = time.Now()
		return entry.sync, nil
	}

	detail := sync.NewBattleDetailSync(server.Reader, battleID)
	if err := detail.Start(server.root_ctx); err != nil {
		return nil, err
	}
	server.details[battleID] = &detailEntry{
		sync:       detail,
		lastAccess: time.Now(),
	}
	return detail, nil
}

func (server *ArenaServer) sweepDetails(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			server.details_mu.Lock()
			for battle_id, entry := range server.details {
				// Finished pollers are already frozen; they are kept until
				// idle so the result dialog can still read the snapshot.
				if time.Since(entry.lastAccess) > DETAIL_IDLE_TTL {
					entry.sync.Stop()
					delete(server.details, battle_id)
					slog.Debug("stopped battle detail poller", "battle_id", battle_id)
				}
			}
			server.details_mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
