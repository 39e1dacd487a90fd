package sqlstore

import (
	"context"
	"database/sql"
	"io/fs"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	persistence "github.com/goliatone/go-persistence-bun"
	tinkmigrations "github.com/goliatone/go-tink/migrations"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// PersistenceConfig satisfies the go-persistence-bun config contract.
type PersistenceConfig struct {
	Driver      string
	DSN         string
	Debug       bool
	PingTimeout time.Duration
}

func (c PersistenceConfig) GetDebug() bool    { return c.Debug }
func (c PersistenceConfig) GetDriver() string { return c.Driver }
func (c PersistenceConfig) GetServer() string { return c.DSN }

func (c PersistenceConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c PersistenceConfig) GetOtelIdentifier() string { return "go-tink" }

// OpenSQLite opens dsn with mattn/go-sqlite3 and applies the sqlite
// migrations.
func OpenSQLite(ctx context.Context, dsn string) (*persistence.Client, error) {
	return open(ctx, PersistenceConfig{Driver: "sqlite3", DSN: dsn}, tinkmigrations.DialectSQLite, sqlitedialect.New(), 1)
}

// OpenPostgres opens dsn with lib/pq and applies the postgres migrations.
func OpenPostgres(ctx context.Context, dsn string) (*persistence.Client, error) {
	return open(ctx, PersistenceConfig{Driver: "postgres", DSN: dsn}, tinkmigrations.DialectPostgres, pgdialect.New(), 0)
}

// Open picks the dialect from the DSN scheme: postgres:// and postgresql://
// go to postgres, everything else to sqlite.
func Open(ctx context.Context, dsn string) (*persistence.Client, error) {
	lowered := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lowered, "postgres://") || strings.HasPrefix(lowered, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}

func open(ctx context.Context, cfg PersistenceConfig, dialect string, bunDialect schema.Dialect, maxOpenConns int) (*persistence.Client, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, storeError("sqlstore: dsn is required", goerrors.CategoryBadInput)
	}
	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, storeWrapError(err, "sqlstore: open "+cfg.Driver)
	}
	if maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}
	client, err := persistence.New(cfg, sqlDB, bunDialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, storeWrapError(err, "sqlstore: new persistence client")
	}
	_, err = tinkmigrations.Register(ctx, func(_ context.Context, registered string, _ string, fsys fs.FS) error {
		if registered == dialect {
			client.RegisterSQLMigrations(fsys)
		}
		return nil
	}, tinkmigrations.WithValidationTargets(dialect))
	if err != nil {
		_ = client.Close()
		return nil, storeWrapError(err, "sqlstore: register migrations")
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, storeWrapError(err, "sqlstore: migrate")
	}
	return client, nil
}

// NewCredentialsSnapshotStoreFromPersistence accepts a *persistence.Client, a
// *bun.DB or anything exposing DB() *bun.DB.
func NewCredentialsSnapshotStoreFromPersistence(client any, opts ...SnapshotStoreOption) (*CredentialsSnapshotStore, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewCredentialsSnapshotStore(db, opts...)
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, storeError("sqlstore: persistence client is required", goerrors.CategoryBadInput)
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, storeError("sqlstore: persistence client returned nil bun db", goerrors.CategoryInternal)
		}
		return db, nil
	default:
		return nil, storeError("sqlstore: unsupported persistence client type", goerrors.CategoryBadInput)
	}
}
