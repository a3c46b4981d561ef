package postgres

import (
	"context"

	// Registers the executor migrate.NewExecutorFor resolves in Migrate.
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the VoteMax store.
var Migrations = migrate.NewGroup("votemax")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_vtm_accounts",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vtm_accounts (
    id         TEXT PRIMARY KEY,
    balance    TEXT NOT NULL DEFAULT '0',
    locked     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_vtm_accounts_locked ON vtm_accounts (locked) WHERE locked;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vtm_accounts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_vtm_allowances",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vtm_allowances (
    allowance_key TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    spender_id    TEXT NOT NULL,
    amount        TEXT NOT NULL DEFAULT '0',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_vtm_allowances_owner ON vtm_allowances (owner_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vtm_allowances`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_vtm_state",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vtm_state (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vtm_state`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_vtm_rounds",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vtm_rounds (
    id            TEXT PRIMARY KEY,
    number        BIGINT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'active',
    options       JSONB NOT NULL DEFAULT '[]',
    participants  JSONB NOT NULL DEFAULT '[]',
    started_at    TIMESTAMPTZ NOT NULL,
    end_date      TIMESTAMPTZ NOT NULL,
    ended_at      TIMESTAMPTZ,
    winning_price TEXT NOT NULL DEFAULT '0',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_vtm_rounds_active ON vtm_rounds (status) WHERE status = 'active';
CREATE INDEX IF NOT EXISTS idx_vtm_rounds_number ON vtm_rounds (number DESC);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vtm_rounds`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_vtm_swaps",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vtm_swaps (
    id         TEXT PRIMARY KEY,
    account_id TEXT NOT NULL,
    side       TEXT NOT NULL,
    amount_in  TEXT NOT NULL,
    amount_out TEXT NOT NULL,
    fee        TEXT NOT NULL DEFAULT '0',
    price      TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_vtm_swaps_account ON vtm_swaps (account_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_vtm_swaps_created ON vtm_swaps (created_at DESC);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vtm_swaps`)
				return err
			},
		},
	)
}
