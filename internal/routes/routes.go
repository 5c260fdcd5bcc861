package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"

	"github.com/keber-cl/wallet-api/internal/account"
	"github.com/keber-cl/wallet-api/internal/config"
	"github.com/keber-cl/wallet-api/internal/events"
	"github.com/keber-cl/wallet-api/internal/ledger"
	"github.com/keber-cl/wallet-api/internal/middleware"
	"github.com/keber-cl/wallet-api/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg       config.Config
	DB        *pgxpool.Pool
	Bolt      *bolt.DB
	Cache     *redis.Client
	Publisher events.Publisher
	Logger    *slog.Logger
}

// Setup configures middlewares and all application routes. The ledger backend
// is Postgres when a pool is provided, the embedded bolt file otherwise, and
// plain memory when neither exists (tests, dev mode).
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.CORSOrigin,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowCredentials: true,
	}))

	RegisterHealthRoutes(app, d)

	var store ledger.Store
	switch {
	case d.DB != nil:
		store = ledger.NewPostgresStore(d.DB)
	case d.Bolt != nil:
		boltStore, err := ledger.NewBoltStore(d.Bolt)
		if err != nil {
			return err
		}
		store = boltStore
	default:
		store = ledger.NewInMemory()
	}

	accountSvc := account.NewService(store, d.Cfg.SignupBonus)
	walletSvc := wallet.NewService(store, d.Publisher)

	accountHandler := account.NewHandler(accountSvc)
	walletHandler := wallet.NewHandler(walletSvc)

	app.Post("/register", accountHandler.Register)
	app.Post("/login", middleware.LoginRateLimit(d.Cache, 5), accountHandler.Login)
	app.Get("/balance/:email", walletHandler.Balance)
	app.Get("/transactions/:email", walletHandler.History)
	app.Post("/add", walletHandler.Add)
	app.Post("/send", walletHandler.Send)

	return nil
}
