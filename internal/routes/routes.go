package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/talentledger/talentledger/internal/auth"
	"github.com/talentledger/talentledger/internal/config"
	"github.com/talentledger/talentledger/internal/identity"
	"github.com/talentledger/talentledger/internal/metrics"
	"github.com/talentledger/talentledger/internal/middleware"
	"github.com/talentledger/talentledger/internal/notification"
	"github.com/talentledger/talentledger/internal/profile"
	"github.com/talentledger/talentledger/internal/template"
	"github.com/talentledger/talentledger/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Deriver  wallet.Deriver
}

type repositories struct {
	users     identity.Repository
	profiles  profile.Repository
	wallets   wallet.Store
	templates template.Repository
}

// newRepositories picks Postgres when a pool is available and in-memory
// stores otherwise.
func newRepositories(d Deps) repositories {
	var r repositories
	if d.DB != nil {
		r = repositories{
			users:     identity.NewPostgresRepository(d.DB),
			profiles:  profile.NewPostgresRepository(d.DB),
			wallets:   wallet.NewPostgresRepository(d.DB),
			templates: template.NewPostgresRepository(d.DB),
		}
	} else {
		r = repositories{
			users:     identity.NewMemoryRepository(),
			profiles:  profile.NewMemoryRepository(),
			wallets:   wallet.NewMemoryRepository(),
			templates: template.NewMemoryRepository(),
		}
	}
	if d.Cache != nil {
		r.wallets = wallet.NewCachedStore(r.wallets, d.Cache, d.Cfg.WalletCacheTTL, d.Logger)
	}
	return r
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
	}
	if d.Deriver == nil {
		return fmt.Errorf("wallet deriver is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger, d.Metrics))

	RegisterHealthRoutes(app, d)
	if d.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	repos := newRepositories(d)

	identitySvc := identity.NewService(repos.users)
	tokens := auth.NewTokenService(d.Cfg.JWTSecret, d.Cfg.JWTIssuer)
	authSvc := auth.NewService(d.Cfg, tokens, identitySvc)
	profileSvc := profile.NewService(repos.profiles)
	templateSvc := template.NewService(repos.templates)

	evidence := make([]wallet.EvidenceSource, 0, len(profile.Categories))
	for _, src := range profileSvc.Sources() {
		evidence = append(evidence, src)
	}
	walletSvc := wallet.NewService(repos.wallets, d.Deriver, evidence, wallet.Options{
		Logger:   d.Logger,
		Metrics:  d.Metrics,
		Notifier: notification.NewLoggerNotifier(d.Logger),
		Timeout:  d.Cfg.StoreTimeout,
	})

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	authn := middleware.JWTAuth(tokens, repos.users)

	// Public routes
	RegisterIdentityRoutes(api, identitySvc, d.Logger)
	RegisterAuthRoutes(api, auth.NewHandler(authSvc), authSvc, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit), authn)

	// Protected routes are mounted per prefix so unknown paths still 404.
	RegisterMeRoute(api.Group("/me", authn))

	members := []fiber.Handler{authn, middleware.RequireRoles(identity.RoleUser)}
	if d.Cache != nil {
		members = append(members, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterWalletRoutes(api.Group("/wallet", members...), wallet.NewHandler(walletSvc))
	RegisterProfileRoutes(api.Group("/profile", members...), profile.NewHandler(profileSvc))
	RegisterTemplateRoutes(api.Group("/templates", members...), template.NewHandler(templateSvc))

	return nil
}
