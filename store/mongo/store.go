// Package mongo implements store.Store on MongoDB via Grove ORM.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	votemaxstore "github.com/xraph/votemax/store"
)

// Collection name constants.
const (
	colAccounts   = "vtm_accounts"
	colAllowances = "vtm_allowances"
	colState      = "vtm_state"
	colRounds     = "vtm_rounds"
	colSwaps      = "vtm_swaps"
)

// Singleton keys in vtm_state.
const (
	stateToken     = "token"
	stateFeePolicy = "fee_policy"
	stateMarket    = "market"
	stateSettings  = "governance"
)

// compile-time interface check
var _ votemaxstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB

	// txn caches whether the deployment runs multi-document
	// transactions: 0 unknown, 1 yes, 2 no.
	txn atomic.Int32
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all VoteMax collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("votemax/mongo: migrate %s indexes: %w", col, err)
		}
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
	var m accountModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": accountID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, votemax.ErrAccountNotFound
		}
		return nil, fmt.Errorf("votemax/mongo: get account: %w", err)
	}
	return fromAccountModel(&m)
}

func (s *Store) ListAccounts(ctx context.Context, opts ledger.ListOpts) ([]*ledger.Account, error) {
	var models []accountModel

	filter := bson.M{}
	if opts.OnlyLocked {
		filter["locked"] = true
	}
	if opts.SkipEmpty {
		filter["empty"] = false
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("votemax/mongo: list accounts: %w", err)
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
	var m allowanceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": ledger.AllowanceKey(owner, spender)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, votemax.ErrNotFound
		}
		return nil, fmt.Errorf("votemax/mongo: get allowance: %w", err)
	}
	return fromAllowanceModel(&m)
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

	filter := bson.M{}
	if !opts.Account.IsNil() {
		filter["account_id"] = opts.Account.String()
	}
	if opts.Side != "" {
		filter["side"] = string(opts.Side)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("votemax/mongo: list swaps: %w", err)
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
	var m roundModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"status": string(governance.StatusActive)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, votemax.ErrRoundNotFound
		}
		return nil, fmt.Errorf("votemax/mongo: get active round: %w", err)
	}
	return fromRoundModel(&m)
}

func (s *Store) GetRound(ctx context.Context, roundID id.RoundID) (*governance.Round, error) {
	var m roundModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": roundID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, votemax.ErrRoundNotFound
		}
		return nil, fmt.Errorf("votemax/mongo: get round: %w", err)
	}
	return fromRoundModel(&m)
}

func (s *Store) ListRounds(ctx context.Context, opts governance.ListOpts) ([]*governance.Round, error) {
	var models []roundModel

	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "number", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("votemax/mongo: list rounds: %w", err)
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

// writer is satisfied by both *mongodriver.MongoDB and *mongodriver.MongoTx.
type writer interface {
	NewUpdate(model any) *mongodriver.UpdateQuery
	NewInsert(model any) *mongodriver.InsertQuery
}

// Commit upserts every staged document and inserts the swap journal
// entries. On a replica set or sharded cluster the batch runs in one
// multi-document transaction. A standalone server cannot run
// transactions, so there the writes are applied in order and a failure
// mid-batch can leave earlier documents written.
func (s *Store) Commit(ctx context.Context, b *votemaxstore.Batch) error {
	if !s.supportsTransactions(ctx) {
		return writeBatch(ctx, s.mdb, b)
	}

	gtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("votemax/mongo: begin commit: %w", err)
	}
	tx, ok := gtx.Raw().(*mongodriver.MongoTx)
	if !ok {
		_ = gtx.Rollback() //nolint:errcheck // best effort
		return fmt.Errorf("votemax/mongo: unexpected transaction type %T", gtx.Raw())
	}

	if err := writeBatch(ctx, tx, b); err != nil {
		_ = tx.Rollback() //nolint:errcheck // the write error is the one to report
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("votemax/mongo: commit: %w", err)
	}
	return nil
}

// supportsTransactions asks the server once whether it is a replica set
// member or a mongos router. Errors are not cached.
func (s *Store) supportsTransactions(ctx context.Context) bool {
	switch s.txn.Load() {
	case 1:
		return true
	case 2:
		return false
	}

	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := s.mdb.Database().RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		return false
	}
	if hello.SetName != "" || hello.Msg == "isdbgrid" {
		s.txn.Store(1)
		return true
	}
	s.txn.Store(2)
	return false
}

func writeBatch(ctx context.Context, w writer, b *votemaxstore.Batch) error {
	if b.Token != nil {
		if err := putState(ctx, w, stateToken, b.Token, b.Token.UpdatedAt); err != nil {
			return fmt.Errorf("votemax/mongo: commit token: %w", err)
		}
	}
	if b.FeePolicy != nil {
		if err := putState(ctx, w, stateFeePolicy, b.FeePolicy, b.FeePolicy.UpdatedAt); err != nil {
			return fmt.Errorf("votemax/mongo: commit fee policy: %w", err)
		}
	}
	if b.Market != nil {
		if err := putState(ctx, w, stateMarket, b.Market, b.Market.UpdatedAt); err != nil {
			return fmt.Errorf("votemax/mongo: commit market: %w", err)
		}
	}
	if b.Settings != nil {
		if err := putState(ctx, w, stateSettings, b.Settings, b.Settings.UpdatedAt); err != nil {
			return fmt.Errorf("votemax/mongo: commit settings: %w", err)
		}
	}

	for _, a := range b.Accounts {
		m := toAccountModel(a)
		_, err := w.NewUpdate(m).
			Filter(bson.M{"_id": m.ID}).
			SetUpdate(bson.M{"$set": bson.M{
				"_id":        m.ID,
				"balance":    m.Balance,
				"empty":      m.Empty,
				"locked":     m.Locked,
				"created_at": m.CreatedAt,
				"updated_at": m.UpdatedAt,
			}}).
			Upsert().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("votemax/mongo: commit account %s: %w", m.ID, err)
		}
	}
	for _, a := range b.Allowances {
		m := toAllowanceModel(a)
		_, err := w.NewUpdate(m).
			Filter(bson.M{"_id": m.Key}).
			SetUpdate(bson.M{"$set": bson.M{
				"_id":        m.Key,
				"owner_id":   m.Owner,
				"spender_id": m.Spender,
				"amount":     m.Amount,
				"created_at": m.CreatedAt,
				"updated_at": m.UpdatedAt,
			}}).
			Upsert().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("votemax/mongo: commit allowance: %w", err)
		}
	}
	for _, r := range b.Rounds {
		m := toRoundModel(r)
		_, err := w.NewUpdate(m).
			Filter(bson.M{"_id": m.ID}).
			SetUpdate(bson.M{"$set": bson.M{
				"_id":           m.ID,
				"number":        m.Number,
				"status":        m.Status,
				"options":       m.Options,
				"participants":  m.Participants,
				"started_at":    m.StartedAt,
				"end_date":      m.EndDate,
				"ended_at":      m.EndedAt,
				"winning_price": m.WinningPrice,
				"created_at":    m.CreatedAt,
				"updated_at":    m.UpdatedAt,
			}}).
			Upsert().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("votemax/mongo: commit round %s: %w", m.ID, err)
		}
	}
	for _, sw := range b.Swaps {
		_, err := w.NewInsert(toSwapModel(sw)).Exec(ctx)
		if err != nil {
			// A replayed entry on a standalone server already landed.
			if _, inTx := w.(*mongodriver.MongoTx); !inTx && mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("votemax/mongo: commit swap: %w", err)
		}
	}
	return nil
}

// ==================== Helpers ====================

func (s *Store) getState(ctx context.Context, key string, v any) error {
	var m stateModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return votemax.ErrNotFound
		}
		return fmt.Errorf("votemax/mongo: get %s: %w", key, err)
	}
	return json.Unmarshal([]byte(m.Value), v)
}

func putState(ctx context.Context, w writer, key string, v any, updatedAt time.Time) error {
	value, err := marshalState(v)
	if err != nil {
		return err
	}
	m := &stateModel{Key: key, Value: value, UpdatedAt: updatedAt}
	_, err = w.NewUpdate(m).
		Filter(bson.M{"_id": key}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        key,
			"value":      value,
			"updated_at": updatedAt,
		}}).
		Upsert().
		Exec(ctx)
	return err
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all VoteMax collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colAccounts: {
			{Keys: bson.D{{Key: "locked", Value: 1}}},
			{Keys: bson.D{{Key: "empty", Value: 1}}},
		},
		colAllowances: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		colState: {},
		colRounds: {
			{
				Keys: bson.D{{Key: "status", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": string(governance.StatusActive)}),
			},
			{Keys: bson.D{{Key: "number", Value: -1}}},
		},
		colSwaps: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}
