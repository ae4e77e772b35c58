package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blacklist-api/internal/config"
	"blacklist-api/internal/database/migrations"
	"blacklist-api/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	ExistingDB  *gorm.DB
	Dialector   gorm.Dialector
	Logger      logger.Interface
	AutoMigrate bool
	Migrations  []any

	// SchemaMigrations runs the embedded goose migrations on postgres.
	SchemaMigrations bool

	Pool PoolConfig
}

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type Option func(*Config)

// SetupDB opens the connection, applies the pool settings, and migrates the schema.
func SetupDB(ctx context.Context, opts ...Option) (*gorm.DB, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var db *gorm.DB
	switch {
	case cfg.ExistingDB != nil:
		db = cfg.ExistingDB
	case cfg.Dialector != nil:
		opened, err := gorm.Open(cfg.Dialector, gormConfig(cfg.Logger))
		if err != nil {
			return nil, fmt.Errorf("database: open connection: %w", err)
		}
		db = opened
		configureConnectionPool(db, cfg.Pool)
	default:
		return nil, errors.New("database: no dialector or existing connection provided")
	}

	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
			return nil, fmt.Errorf("database: set busy timeout: %w", err)
		}
	}

	if err := migrate(ctx, db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// NewDialector selects the gorm dialector for the configured storage driver.
func NewDialector(settings config.DatabaseSettings) (gorm.Dialector, error) {
	switch settings.Driver {
	case config.DriverPostgres:
		return postgres.Open(settings.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(settings.SQLitePath), nil
	default:
		return nil, fmt.Errorf("database: driver %q has no sql dialector", settings.Driver)
	}
}

// Options translates settings into SetupDB options.
func Options(settings config.DatabaseSettings) ([]Option, error) {
	dialector, err := NewDialector(settings)
	if err != nil {
		return nil, err
	}

	return []Option{
		WithDialector(dialector),
		WithLogger(NewLogger(settings.Echo)),
		WithAutoMigrate(settings.AutoMigrate),
		WithSchemaMigrations(!settings.AutoMigrate),
		WithPool(PoolConfig{
			MaxOpenConns:    settings.MaxOpenConns,
			MaxIdleConns:    settings.MaxIdleConns,
			ConnMaxLifetime: settings.ConnMaxLifetime,
			ConnMaxIdleTime: settings.ConnMaxIdleTime,
		}),
	}, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func defaultConfig() Config {
	return Config{
		Logger:           silentLogger(),
		Migrations:       defaultMigrations(),
		SchemaMigrations: true,
		Pool: PoolConfig{
			MaxOpenConns:    32,
			MaxIdleConns:    32,
			ConnMaxLifetime: 300 * time.Second,
			ConnMaxIdleTime: 60 * time.Second,
		},
	}
}

func gormConfig(l logger.Interface) *gorm.Config {
	cfg := &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
	if l != nil {
		cfg.Logger = l
	}
	return cfg
}

// NewLogger bridges gorm onto charmbracelet/log. With echo enabled every statement is logged.
func NewLogger(echo bool) logger.Interface {
	if !echo {
		return silentLogger()
	}
	return logger.New(
		log.Default(),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func silentLogger() logger.Interface {
	return logger.New(
		log.Default(),
		logger.Config{LogLevel: logger.Silent},
	)
}

func defaultMigrations() []any {
	return []any{
		domain.BlacklistEntry{},
	}
}

func migrate(ctx context.Context, db *gorm.DB, cfg Config) error {
	runGoose := cfg.SchemaMigrations && db.Dialector.Name() == "postgres"

	if runGoose {
		if err := runSchemaMigrations(ctx, db); err != nil {
			return fmt.Errorf("database: schema migrations: %w", err)
		}
		log.Info("Database schema migrations applied.")
	}

	// Engines without goose migrations fall back to gorm's schema sync.
	autoMigrate := cfg.AutoMigrate || (cfg.SchemaMigrations && !runGoose)
	if autoMigrate && len(cfg.Migrations) > 0 {
		if err := db.WithContext(ctx).AutoMigrate(cfg.Migrations...); err != nil {
			return fmt.Errorf("database: auto migrate: %w", err)
		}
		log.Info("Database migration completed.")
	}

	return nil
}

func runSchemaMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, sqlDB, ".")
}

func WithExistingDB(db *gorm.DB) Option {
	return func(cfg *Config) {
		cfg.ExistingDB = db
	}
}

func WithDialector(d gorm.Dialector) Option {
	return func(cfg *Config) {
		cfg.Dialector = d
	}
}

func WithLogger(l logger.Interface) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

func WithAutoMigrate(enabled bool) Option {
	return func(cfg *Config) {
		cfg.AutoMigrate = enabled
	}
}

func WithSchemaMigrations(enabled bool) Option {
	return func(cfg *Config) {
		cfg.SchemaMigrations = enabled
	}
}

func WithMigrations(models ...any) Option {
	return func(cfg *Config) {
		if len(models) == 0 {
			cfg.Migrations = nil
			return
		}
		cfg.Migrations = append([]any(nil), models...)
	}
}

func WithPool(pool PoolConfig) Option {
	return func(cfg *Config) {
		cfg.Pool = pool
	}
}

func configureConnectionPool(db *gorm.DB, pool PoolConfig) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("database: get sql.DB", "error", err)
		return
	}

	maxIdle := pool.MaxIdleConns
	if pool.MaxOpenConns > 0 && maxIdle > pool.MaxOpenConns {
		maxIdle = pool.MaxOpenConns
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}
}
