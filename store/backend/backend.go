// Package backend selects and opens a store.Store by driver name.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/drivers/sqlitedriver"

	"github.com/xraph/votemax/store"
	"github.com/xraph/votemax/store/memory"
	"github.com/xraph/votemax/store/mongo"
	"github.com/xraph/votemax/store/postgres"
	"github.com/xraph/votemax/store/sqlite"
)

// Supported driver names.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Drivers lists every driver name accepted by Open.
func Drivers() []string {
	return []string{DriverMemory, DriverPostgres, DriverSQLite, DriverMongo}
}

// Normalize maps driver aliases onto their canonical name.
func Normalize(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "mem", DriverMemory:
		return DriverMemory, nil
	case "pg", "postgresql", DriverPostgres:
		return DriverPostgres, nil
	case "sqlite3", DriverSQLite:
		return DriverSQLite, nil
	case "mongodb", DriverMongo:
		return DriverMongo, nil
	default:
		return "", fmt.Errorf("votemax/backend: unknown driver %q (want one of %s)",
			driver, strings.Join(Drivers(), ", "))
	}
}

// Open connects to dsn with the named driver and returns the matching store.
// The memory driver ignores dsn. Callers own the store and must Close it.
func Open(ctx context.Context, driver, dsn string) (store.Store, error) {
	name, err := Normalize(driver)
	if err != nil {
		return nil, err
	}
	if name == DriverMemory {
		return memory.New(), nil
	}
	if dsn == "" {
		return nil, fmt.Errorf("votemax/backend: %s driver requires a dsn", name)
	}

	switch name {
	case DriverPostgres:
		drv := pgdriver.New()
		if err := drv.Open(ctx, dsn); err != nil {
			return nil, fmt.Errorf("votemax/backend: open postgres: %w", err)
		}
		db, err := grove.Open(drv)
		if err != nil {
			return nil, fmt.Errorf("votemax/backend: postgres: %w", err)
		}
		return postgres.New(db), nil

	case DriverSQLite:
		drv := sqlitedriver.New()
		if err := drv.Open(ctx, dsn); err != nil {
			return nil, fmt.Errorf("votemax/backend: open sqlite: %w", err)
		}
		db, err := grove.Open(drv)
		if err != nil {
			return nil, fmt.Errorf("votemax/backend: sqlite: %w", err)
		}
		return sqlite.New(db), nil

	default:
		drv := mongodriver.New()
		if err := drv.Open(ctx, dsn); err != nil {
			return nil, fmt.Errorf("votemax/backend: open mongo: %w", err)
		}
		db, err := grove.Open(drv)
		if err != nil {
			return nil, fmt.Errorf("votemax/backend: mongo: %w", err)
		}
		return mongo.New(db), nil
	}
}
