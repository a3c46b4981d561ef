// Package sqlite implements store.Store on SQLite via Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	votemaxstore "github.com/xraph/votemax/store"
)

// compile-time interface check
var _ votemaxstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("votemax/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("votemax/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Ledger Store ====================

func (s *Store) GetAccount(ctx context.Context, accountID id.AccountID) (*ledger.Account, error) {
	m := new(accountModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", accountID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, votemax.ErrAccountNotFound
		}
		return nil, err
	}
	return fromAccountModel(m)
}

func (s *Store) ListAccounts(ctx context.Context, opts ledger.ListOpts) ([]*ledger.Account, error) {
	var models []accountModel
	q := s.sdb.NewSelect(&models)

	if opts.OnlyLocked {
		q = q.Where("locked = 1")
	}
	if opts.SkipEmpty {
		q = q.Where("balance <> '0'")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*ledger.Account, len(models))
	for i := range models {
		a, err := fromAccountModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

func (s *Store) GetAllowance(ctx context.Context, owner, spender id.AccountID) (*ledger.Allowance, error) {
	m := new(allowanceModel)
	err := s.sdb.NewSelect(m).
		Where("allowance_key = ?", ledger.AllowanceKey(owner, spender)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, votemax.ErrNotFound
		}
		return nil, err
	}
	return fromAllowanceModel(m)
}

func (s *Store) GetToken(ctx context.Context) (*ledger.Token, error) {
	t := new(ledger.Token)
	if err := s.getState(ctx, stateToken, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ==================== Fee and Exchange Store ====================

func (s *Store) GetFeePolicy(ctx context.Context) (*fee.Policy, error) {
	p := new(fee.Policy)
	if err := s.getState(ctx, stateFeePolicy, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetMarket(ctx context.Context) (*exchange.Market, error) {
	m := new(exchange.Market)
	if err := s.getState(ctx, stateMarket, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) ListSwaps(ctx context.Context, opts exchange.ListOpts) ([]*exchange.Swap, error) {
	var models []swapModel
	q := s.sdb.NewSelect(&models)

	if !opts.Account.IsNil() {
		q = q.Where("account_id = ?", opts.Account.String())
	}
	if opts.Side != "" {
		q = q.Where("side = ?", string(opts.Side))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC, id DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*exchange.Swap, len(models))
	for i := range models {
		sw, err := fromSwapModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sw
	}
	return result, nil
}

// ==================== Governance Store ====================

func (s *Store) GetSettings(ctx context.Context) (*governance.Settings, error) {
	st := new(governance.Settings)
	if err := s.getState(ctx, stateSettings, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) GetActiveRound(ctx context.Context) (*governance.Round, error) {
	m := new(roundModel)
	err := s.sdb.NewSelect(m).
		Where("status = ?", string(governance.StatusActive)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, votemax.ErrRoundNotFound
		}
		return nil, err
	}
	return fromRoundModel(m)
}

func (s *Store) GetRound(ctx context.Context, roundID id.RoundID) (*governance.Round, error) {
	m := new(roundModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", roundID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, votemax.ErrRoundNotFound
		}
		return nil, err
	}
	return fromRoundModel(m)
}

func (s *Store) ListRounds(ctx context.Context, opts governance.ListOpts) ([]*governance.Round, error) {
	var models []roundModel
	q := s.sdb.NewSelect(&models)

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("number DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*governance.Round, len(models))
	for i := range models {
		r, err := fromRoundModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// ==================== Commit ====================

// Commit upserts every staged row inside one transaction. SQLite accepts
// the same ON CONFLICT upsert form as PostgreSQL. The contract validates
// an operation in full before staging it, so a failure here is an I/O
// failure and nothing from the batch is kept.
func (s *Store) Commit(ctx context.Context, b *votemaxstore.Batch) error {
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("votemax/sqlite: begin commit: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	if err := writeBatch(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("votemax/sqlite: commit: %w", err)
	}
	return nil
}

func writeBatch(ctx context.Context, tx *sqlitedriver.SqliteTx, b *votemaxstore.Batch) error {
	if b.Token != nil {
		if err := putState(ctx, tx, stateToken, b.Token, b.Token.UpdatedAt); err != nil {
			return fmt.Errorf("votemax/sqlite: commit token: %w", err)
		}
	}
	if b.FeePolicy != nil {
		if err := putState(ctx, tx, stateFeePolicy, b.FeePolicy, b.FeePolicy.UpdatedAt); err != nil {
			return fmt.Errorf("votemax/sqlite: commit fee policy: %w", err)
		}
	}
	if b.Market != nil {
		if err := putState(ctx, tx, stateMarket, b.Market, b.Market.UpdatedAt); err != nil {
			return fmt.Errorf("votemax/sqlite: commit market: %w", err)
		}
	}
	if b.Settings != nil {
		if err := putState(ctx, tx, stateSettings, b.Settings, b.Settings.UpdatedAt); err != nil {
			return fmt.Errorf("votemax/sqlite: commit settings: %w", err)
		}
	}

	for _, a := range b.Accounts {
		_, err := tx.NewInsert(toAccountModel(a)).
			OnConflict("(id) DO UPDATE").
			Set("balance = EXCLUDED.balance").
			Set("locked = EXCLUDED.locked").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("votemax/sqlite: commit account %s: %w", a.ID, err)
		}
	}
	for _, a := range b.Allowances {
		_, err := tx.NewInsert(toAllowanceModel(a)).
			OnConflict("(allowance_key) DO UPDATE").
			Set("amount = EXCLUDED.amount").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("votemax/sqlite: commit allowance: %w", err)
		}
	}
	for _, r := range b.Rounds {
		_, err := tx.NewInsert(toRoundModel(r)).
			OnConflict("(id) DO UPDATE").
			Set("status = EXCLUDED.status").
			Set("options = EXCLUDED.options").
			Set("participants = EXCLUDED.participants").
			Set("ended_at = EXCLUDED.ended_at").
			Set("winning_price = EXCLUDED.winning_price").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("votemax/sqlite: commit round %s: %w", r.ID, err)
		}
	}
	if len(b.Swaps) > 0 {
		models := make([]swapModel, len(b.Swaps))
		for i, sw := range b.Swaps {
			models[i] = *toSwapModel(sw)
		}
		if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("votemax/sqlite: commit swaps: %w", err)
		}
	}
	return nil
}

// ==================== Helpers ====================

func (s *Store) getState(ctx context.Context, key string, v any) error {
	m := new(stateModel)
	err := s.sdb.NewSelect(m).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return votemax.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(m.Value, v)
}

func putState(ctx context.Context, tx *sqlitedriver.SqliteTx, key string, v any, updatedAt time.Time) error {
	m, err := toStateModel(key, v, updatedAt)
	if err != nil {
		return err
	}
	_, err = tx.NewInsert(m).
		OnConflict("(key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
