package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"blacklist-api/internal/app/server"
	"blacklist-api/internal/app/version"
	"blacklist-api/internal/auth"
	"blacklist-api/internal/cache"
	"blacklist-api/internal/config"
	"blacklist-api/internal/database"
	"blacklist-api/internal/domain"
	"blacklist-api/internal/memstore"
	"blacklist-api/internal/support"
)

const shutdownTimeout = 15 * time.Second

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	settings := config.Load()

	portFlag := flag.Int("port", settings.Port, "Port for API server")
	productionFlag := flag.Bool("production", settings.Production, "Run in production mode")
	flag.Parse()

	settings.Port = resolvePort("PORT", "BACKEND_PORT", *portFlag)
	settings.Production = *productionFlag

	configureLogging(settings)

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, closeStorage, err := openRepository(ctx, settings)
	if err != nil {
		return err
	}
	defer closeStorage()

	handler := server.New(repository, auth.NewStaticToken(settings.AuthToken)).Routes()
	srv := server.NewHTTPServer(settings.Port, handler)

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	info := version.Get()
	log.Info("Starting backend", "app", settings.AppName, "port", settings.Port, "storage", settings.Database.Driver, "version", info.BuildVersion)
	return serve(ctx, srv, listener)
}

// serve runs srv on listener until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, listener net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openRepository builds the storage chain for the configured driver.
// The returned func releases every resource that was opened.
func openRepository(ctx context.Context, settings config.Settings) (domain.BlacklistRepository, func(), error) {
	var (
		repository domain.BlacklistRepository
		closers    []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch settings.Database.Driver {
	case config.DriverMemory:
		log.Warn("Using in-memory storage; entries are lost on restart")
		repository = memstore.NewRepository()
	default:
		opts, err := database.Options(settings.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Connecting to database", "driver", settings.Database.Driver, "target", settings.Database.Redacted())
		db, err := database.SetupDB(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}
		closers = append(closers, func() {
			if err := database.Close(db); err != nil {
				log.Warn("error closing database", "error", err)
			}
		})
		repository = database.NewBlacklistRepository(db)
	}

	if settings.Cache.RedisURL != "" {
		client, err := support.NewRedisClient(ctx, settings.Cache.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, lookup cache disabled", "error", err)
		} else {
			closers = append(closers, func() {
				if err := client.Close(); err != nil {
					log.Warn("error closing redis client", "error", err)
				}
			})
			repository = cache.NewRepository(repository, client, settings.Cache.TTL)
			log.Info("Lookup cache enabled", "ttl", settings.Cache.TTL)
		}
	}

	return repository, closeAll, nil
}

func configureLogging(settings config.Settings) {
	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		log.Warn("invalid log level, using info", "value", settings.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	if settings.Production {
		log.SetFormatter(log.JSONFormatter)
	}
}

func resolvePort(primaryEnv, legacyEnv string, fallback int) int {
	if port := readPort(primaryEnv); port != 0 {
		return port
	}
	if port := readPort(legacyEnv); port != 0 {
		return port
	}
	return fallback
}

func readPort(envKey string) int {
	raw := os.Getenv(envKey)
	if raw == "" {
		return 0
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port == 0 {
		log.Warn("invalid port override", "env", envKey, "value", raw)
		return 0
	}
	return port
}
