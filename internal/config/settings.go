package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"blacklist-api/internal/support"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	defaultAppName  = "Blacklist API"
	defaultPort     = 8000
	defaultCacheTTL = time.Hour
)

// Settings is the process configuration. It is loaded once at startup and
// handed to constructors; nothing reads the environment after Load returns.
type Settings struct {
	AppName    string
	Port       int
	LogLevel   string
	Production bool

	// AuthToken is the static bearer secret. It has no default.
	AuthToken string

	Database DatabaseSettings
	Cache    CacheSettings
}

type DatabaseSettings struct {
	Driver string

	// URL overrides the discrete connection fields when set.
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string

	SQLitePath string

	Echo        bool
	AutoMigrate bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type CacheSettings struct {
	// RedisURL enables the lookup cache when non-empty.
	RedisURL string
	TTL      time.Duration
}

// Load reads Settings from the process environment.
func Load() Settings {
	maxOpen := support.GetEnvInt("DB_MAX_OPEN_CONNS", 32)
	maxIdle := support.GetEnvInt("DB_MAX_IDLE_CONNS", maxOpen)
	if maxIdle > maxOpen {
		maxIdle = maxOpen
	}

	cacheTTL := time.Duration(support.GetEnvInt("CACHE_TTL_SECONDS", int(defaultCacheTTL/time.Second))) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return Settings{
		AppName:    support.GetEnv("APP_NAME", defaultAppName),
		Port:       defaultPort,
		LogLevel:   strings.ToLower(support.GetEnv("LOG_LEVEL", "info")),
		Production: support.GetEnvBool("PRODUCTION", false),
		AuthToken:  support.GetEnv("AUTH_TOKEN", ""),
		Database: DatabaseSettings{
			Driver:          strings.ToLower(support.GetEnv("STORAGE_DRIVER", DriverPostgres)),
			URL:             support.GetEnv("DATABASE_URL", ""),
			Host:            support.GetEnv("RDS_HOSTNAME", ""),
			Port:            support.GetEnv("RDS_PORT", "5432"),
			User:            support.GetEnv("RDS_USERNAME", ""),
			Password:        support.GetEnv("RDS_PASSWORD", ""),
			Name:            support.GetEnv("RDS_DB_NAME", ""),
			SQLitePath:      support.GetEnv("SQLITE_PATH", "blacklist.db"),
			Echo:            support.GetEnvBool("DB_ECHO", false),
			AutoMigrate:     support.GetEnvBool("DB_AUTO_MIGRATE", false),
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: time.Duration(support.GetEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(support.GetEnvInt("DB_CONN_MAX_IDLE_TIME", 60)) * time.Second,
		},
		Cache: CacheSettings{
			RedisURL: support.GetEnv("REDIS_URL", ""),
			TTL:      cacheTTL,
		},
	}
}

// Validate reports every missing or inconsistent setting at once.
func (s Settings) Validate() error {
	var errs []error

	if s.AuthToken == "" {
		errs = append(errs, errors.New("AUTH_TOKEN must be set"))
	}
	if s.Port <= 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", s.Port))
	}

	switch s.Database.Driver {
	case DriverPostgres:
		if s.Database.URL == "" {
			if s.Database.Host == "" {
				errs = append(errs, errors.New("RDS_HOSTNAME must be set for the postgres driver"))
			}
			if s.Database.User == "" {
				errs = append(errs, errors.New("RDS_USERNAME must be set for the postgres driver"))
			}
			if s.Database.Name == "" {
				errs = append(errs, errors.New("RDS_DB_NAME must be set for the postgres driver"))
			}
		}
	case DriverSQLite:
		if s.Database.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH must be set for the sqlite driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", s.Database.Driver))
	}

	return errors.Join(errs...)
}

// DSN returns the postgres connection string in keyword/value form.
func (d DatabaseSettings) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host,
		d.Port,
		d.User,
		quoteDSNValue(d.Password),
		d.Name,
	)
}

// Redacted returns a printable description of the configured database.
func (d DatabaseSettings) Redacted() string {
	switch d.Driver {
	case DriverSQLite:
		return "sqlite:" + d.SQLitePath
	case DriverMemory:
		return "memory"
	}

	if d.URL != "" {
		if parsed, err := url.Parse(d.URL); err == nil {
			return parsed.Redacted()
		}
		return "postgres:<unparseable url>"
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s", d.User, d.Host, d.Port, d.Name)
}

func quoteDSNValue(value string) string {
	if value == "" {
		return "''"
	}
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + replacer.Replace(value) + "'"
}
