package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-systemauth/migrations"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	defaultPingTimeout    = 5 * time.Second
	defaultOtelIdentifier = "go-systemauth"
)

// ClientConfig describes the database backing the preference store.
type ClientConfig struct {
	Driver         string
	DSN            string
	Debug          bool
	PingTimeout    time.Duration
	OtelIdentifier string
	// SkipMigrations leaves schema management to the caller.
	SkipMigrations bool
}

func (c ClientConfig) GetDebug() bool {
	return c.Debug
}

func (c ClientConfig) GetDriver() string {
	return strings.TrimSpace(strings.ToLower(c.Driver))
}

func (c ClientConfig) GetServer() string {
	return strings.TrimSpace(c.DSN)
}

func (c ClientConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return defaultPingTimeout
	}
	return c.PingTimeout
}

func (c ClientConfig) GetOtelIdentifier() string {
	if strings.TrimSpace(c.OtelIdentifier) == "" {
		return defaultOtelIdentifier
	}
	return c.OtelIdentifier
}

// OpenClient opens a go-persistence-bun client for sqlite3 or postgres and,
// unless SkipMigrations is set, applies the embedded schema for that dialect.
func OpenClient(ctx context.Context, cfg ClientConfig) (*persistence.Client, error) {
	driver := cfg.GetDriver()
	dsn := cfg.GetServer()
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}
	migrationDialect, err := migrationDialectFor(driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := newPersistenceClient(cfg, sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	if cfg.SkipMigrations {
		return client, nil
	}

	if _, err := migrations.Register(ctx, func(_ context.Context, _ string, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrationDialect); err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return client, nil
}

func migrationDialectFor(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return migrations.DialectSQLite, nil
	case DriverPostgres:
		return migrations.DialectPostgres, nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

func newPersistenceClient(cfg ClientConfig, sqlDB *sql.DB) (*persistence.Client, error) {
	if cfg.GetDriver() == DriverPostgres {
		return persistence.New(cfg, sqlDB, pgdialect.New())
	}
	return persistence.New(cfg, sqlDB, sqlitedialect.New())
}
