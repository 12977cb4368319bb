// Package bootstrap assembles the application: logger, permission store,
// session stores, backend clients, and the dialogue router.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/telarr-bot/telarr/core/arr"
	"github.com/telarr-bot/telarr/core/auth"
	coreconfig "github.com/telarr-bot/telarr/core/config"
	coredatabase "github.com/telarr-bot/telarr/core/database"
	"github.com/telarr-bot/telarr/core/dialog"
	"github.com/telarr-bot/telarr/core/logger"
	"github.com/telarr-bot/telarr/core/session"
	"github.com/telarr-bot/telarr/core/telegram"
	"github.com/telarr-bot/telarr/services/bazarr"
	"github.com/telarr-bot/telarr/services/radarr"
	"github.com/telarr-bot/telarr/services/sonarr"
)

// Options control the bootstrap pipeline. Zero-value hooks fall back to the
// production implementations; tests override them.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coreconfig.DatabaseConfig) (*sqlx.DB, error)
	Migrate    func(coreconfig.DatabaseConfig) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB       *sqlx.DB
	Redis    *redis.Client
	Accounts *auth.Store
	Router   *dialog.Router
	Bridge   *telegram.Bridge
}

// Close releases connections held by the bootstrap result.
func (r *Result) Close() error {
	var errs *multierror.Error
	if r.Redis != nil {
		errs = multierror.Append(errs, r.Redis.Close())
	}
	if r.DB != nil {
		errs = multierror.Append(errs, r.DB.Close())
	}
	return errs.ErrorOrNil()
}

// TelegramRunOptions builds the transport options for telegram.RunTelegram.
func (r *Result) TelegramRunOptions(cfg *coreconfig.Config) telegram.RunOptions {
	return telegram.RunOptions{
		Config:      cfg,
		Bridge:      r.Bridge,
		Middlewares: telegram.DefaultMiddlewares(cfg),
	}
}

// Run initializes the logger, connects storage, verifies every configured
// backend, and wires services into the router. A backend that cannot be
// reached is fatal; all handshake failures are reported together.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	res := &Result{DB: db}

	if cfg.Session.Backend == coreconfig.SessionBackendRedis {
		client, err := session.NewRedisClient(cfg.Redis)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: redis init failed: %w", err)
		}
		res.Redis = client
	}

	res.Accounts = auth.NewStore(db, cfg.Auth)
	res.Router = dialog.NewRouter(res.Accounts)

	if err := buildServices(ctx, cfg, res); err != nil {
		_ = res.Close()
		return nil, err
	}

	res.Bridge = telegram.NewBridge(res.Router, res.Accounts)
	return res, nil
}

// buildServices constructs one service per configuration block, verifies its
// backend, registers it on the router, and wires addon relations.
func buildServices(ctx context.Context, cfg *coreconfig.Config, res *Result) error {
	type built struct {
		cfg coreconfig.ServiceConfig
		svc dialog.Service
	}

	var (
		services []built
		detectFn = make(map[string]func(context.Context) (string, error), len(cfg.Services))
	)
	for _, sc := range cfg.Services {
		switch sc.Type {
		case "sonarr":
			client := arr.NewSonarrClient(sc.Name, sc.APIHost, sc.APIKey)
			detectFn[sc.Name] = client.Detect
			services = append(services, built{cfg: sc, svc: sonarr.New(
				sc.Name, client, sessionStore[sonarr.State](cfg, res, sc.Name), sc.Commands,
			)})
		case "radarr":
			client := arr.NewRadarrClient(sc.Name, sc.APIHost, sc.APIKey)
			detectFn[sc.Name] = client.Detect
			services = append(services, built{cfg: sc, svc: radarr.New(
				sc.Name, client, sessionStore[radarr.State](cfg, res, sc.Name), sc.Commands,
			)})
		case "bazarr":
			client := arr.NewBazarrClient(sc.Name, sc.APIHost, sc.APIKey)
			detectFn[sc.Name] = client.Detect
			services = append(services, built{cfg: sc, svc: bazarr.New(
				sc.Name, client, sessionStore[bazarr.State](cfg, res, sc.Name),
			)})
		default:
			return fmt.Errorf("bootstrap: unsupported service type %q", sc.Type)
		}
	}

	var errs *multierror.Error
	for name, detect := range detectFn {
		version, err := detect(ctx)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("service %q: %w", name, err))
			continue
		}
		logger.ARR.Info("backend detected",
			slog.String("event", "arr.detect"),
			slog.String("service", name),
			slog.String("version", version),
		)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("bootstrap: backend handshake failed: %w", err)
	}

	for _, b := range services {
		if err := res.Router.Register(b.svc); err != nil {
			return fmt.Errorf("bootstrap: register %q: %w", b.cfg.Name, err)
		}
	}

	// Addon wiring runs after registration so lookups by name resolve.
	hosts := make(map[string][]dialog.Host)
	for _, b := range services {
		for _, addon := range b.cfg.Addons {
			hosts[addon] = append(hosts[addon], dialog.Host{Service: b.cfg.Name, Variant: b.cfg.Type})
		}
	}
	for _, b := range services {
		switch svc := b.svc.(type) {
		case *sonarr.Service:
			svc.SetAddons(res.Router.Addons(b.cfg.Addons))
		case *radarr.Service:
			svc.SetAddons(res.Router.Addons(b.cfg.Addons))
		case *bazarr.Service:
			svc.SetHosts(hosts[b.cfg.Name])
		}
	}

	return nil
}

// sessionStore builds the configured store flavor for one service namespace.
func sessionStore[S any](cfg *coreconfig.Config, res *Result, name string) session.Store[S] {
	if cfg.Session.Backend == coreconfig.SessionBackendRedis {
		return session.NewRedisStore[S](res.Redis, name, cfg.Session.TTL)
	}
	return session.NewMemoryStore[S](cfg.Session.TTL)
}
