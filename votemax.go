package votemax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/plugin"
	"github.com/xraph/votemax/store"
	"github.com/xraph/votemax/types"
)

// Contract is the Vote Max Token engine. Every operation is serialized and
// either commits all of its writes or none.
type Contract struct {
	mu      sync.Mutex
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   clock.Clock

	admin    id.AccountID
	defaults Defaults
}

// Defaults are the values written the first time a contract starts against
// an empty store. They are ignored afterwards.
type Defaults struct {
	Name          string
	Symbol        string
	TokenPrice    types.Amount
	Decimals      uint64
	FeePercentage uint64
	TimeToVote    time.Duration
}

// StandardDefaults returns the stock VTM configuration.
func StandardDefaults() Defaults {
	return Defaults{
		Name:          ledger.DefaultName,
		Symbol:        ledger.DefaultSymbol,
		TokenPrice:    types.NewAmount(exchange.DefaultTokenPrice),
		Decimals:      exchange.DefaultDecimals,
		FeePercentage: fee.DefaultPercentage,
		TimeToVote:    governance.DefaultTimeToVote,
	}
}

// New creates a new Contract instance.
func New(s store.Store, opts ...Option) *Contract {
	c := &Contract{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		clock:    clock.New(),
		defaults: StandardDefaults(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Option configures a Contract instance.
type Option func(*Contract)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Contract) {
		c.logger = logger
		c.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(c *Contract) {
		_ = c.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock replaces the wall clock, typically with clock.NewMock in tests.
func WithClock(clk clock.Clock) Option {
	return func(c *Contract) {
		c.clock = clk
	}
}

// WithAdministrator sets the account that receives the administrator
// capability when the contract is first initialized.
func WithAdministrator(admin id.AccountID) Option {
	return func(c *Contract) {
		c.admin = admin
	}
}

// WithDefaults overrides the values used to initialize an empty store.
// Zero fields fall back to StandardDefaults.
func WithDefaults(d Defaults) Option {
	return func(c *Contract) {
		std := StandardDefaults()
		if d.Name == "" {
			d.Name = std.Name
		}
		if d.Symbol == "" {
			d.Symbol = std.Symbol
		}
		if d.TokenPrice.IsZero() {
			d.TokenPrice = std.TokenPrice
		}
		if d.Decimals == 0 {
			d.Decimals = std.Decimals
		}
		if d.TimeToVote <= 0 {
			d.TimeToVote = std.TimeToVote
		}
		if d.FeePercentage > fee.MaxPercentage {
			d.FeePercentage = std.FeePercentage
		}
		c.defaults = d
	}
}

// Plugins returns the plugin registry.
func (c *Contract) Plugins() *plugin.Registry { return c.plugins }

// Store returns the underlying store.
func (c *Contract) Store() store.Store { return c.store }

// Start migrates the store, initializes state on first run and notifies plugins.
func (c *Contract) Start(ctx context.Context) error {
	if err := c.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	if err := c.bootstrap(ctx); err != nil {
		return err
	}

	c.plugins.EmitInit(ctx, c)

	c.logger.Info("votemax started",
		"plugins", c.plugins.Count(),
	)

	return nil
}

// Stop notifies plugins and closes the store.
func (c *Contract) Stop() error {
	ctx := context.Background()
	c.plugins.EmitShutdown(ctx)

	c.logger.Info("votemax stopped")

	return c.store.Close()
}

// bootstrap writes any missing singleton.
func (c *Contract) bootstrap(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now().UTC()
	var b store.Batch

	if _, err := c.store.GetToken(ctx); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if c.admin.IsNil() {
			return fmt.Errorf("votemax: initialize token: no administrator configured: %w", ErrInvalidAccount)
		}
		b.Token = &ledger.Token{
			Entity:        types.NewEntityAt(now),
			Name:          c.defaults.Name,
			Symbol:        c.defaults.Symbol,
			Administrator: c.admin,
		}
	}
	if _, err := c.store.GetFeePolicy(ctx); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		b.FeePolicy = &fee.Policy{Entity: types.NewEntityAt(now), Percentage: c.defaults.FeePercentage}
	}
	if _, err := c.store.GetMarket(ctx); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		b.Market = &exchange.Market{
			Entity:     types.NewEntityAt(now),
			TokenPrice: c.defaults.TokenPrice,
			Decimals:   c.defaults.Decimals,
		}
	}
	if _, err := c.store.GetSettings(ctx); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		s := governance.NewSettings()
		s.Entity = types.NewEntityAt(now)
		s.TimeToVote = c.defaults.TimeToVote
		b.Settings = s
	}

	if b.IsEmpty() {
		return nil
	}
	if err := c.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("%w: initialize: %w", ErrTransactionFailed, err)
	}

	c.logger.Info("votemax initialized",
		"name", c.defaults.Name,
		"symbol", c.defaults.Symbol,
		"administrator", c.admin.String(),
	)
	return nil
}

// ──────────────────────────────────────────────────
// Unit of work
// ──────────────────────────────────────────────────

// txn is the working set of one operation. Values are loaded from the store
// at most once, mutated in place and staged into the batch.
type txn struct {
	ctx   context.Context
	store store.Store
	reg   *plugin.Registry
	now   time.Time
	batch store.Batch

	accounts map[string]*ledger.Account
	token    *ledger.Token
	policy   *fee.Policy
	market   *exchange.Market
	settings *governance.Settings
	round    *governance.Round
	roundSet bool

	events []func(context.Context)
}

// exec runs fn as a serialized unit of work. On success the batch is
// committed once and the queued events are emitted after the lock is
// released. On failure nothing is written.
func (c *Contract) exec(ctx context.Context, op string, fn func(tx *txn) error) error {
	c.mu.Lock()
	tx := c.begin(ctx)
	err := fn(tx)
	if err == nil && !tx.batch.IsEmpty() {
		if cerr := c.store.Commit(ctx, &tx.batch); cerr != nil {
			c.logger.Error("commit failed",
				"op", op,
				"error", cerr,
			)
			err = fmt.Errorf("%w: %s: %w", ErrTransactionFailed, op, cerr)
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("operation rejected",
			"op", op,
			"error", err,
		)
		c.plugins.EmitOperationFailed(ctx, op, err)
		return err
	}

	for _, emit := range tx.events {
		emit(ctx)
	}
	return nil
}

// view runs fn serialized with writes but never commits.
func (c *Contract) view(ctx context.Context, fn func(tx *txn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.begin(ctx))
}

func (c *Contract) begin(ctx context.Context) *txn {
	return &txn{
		ctx:      ctx,
		store:    c.store,
		reg:      c.plugins,
		now:      c.clock.Now().UTC(),
		accounts: make(map[string]*ledger.Account),
	}
}

func (tx *txn) plugins() *plugin.Registry { return tx.reg }

// on queues an event for emission after commit.
func (tx *txn) on(fn func(context.Context)) {
	tx.events = append(tx.events, fn)
}

// account loads an account. A missing account reads as empty and unlocked.
func (tx *txn) account(accountID id.AccountID) (*ledger.Account, error) {
	if a, ok := tx.accounts[accountID.String()]; ok {
		return a, nil
	}
	a, err := tx.store.GetAccount(tx.ctx, accountID)
	if errors.Is(err, ErrAccountNotFound) {
		a = ledger.NewAccount(accountID)
	} else if err != nil {
		return nil, err
	}
	tx.accounts[accountID.String()] = a
	return a, nil
}

func (tx *txn) putAccount(a *ledger.Account) {
	a.Touch(tx.now)
	tx.batch.PutAccount(a)
}

func (tx *txn) loadToken() (*ledger.Token, error) {
	if tx.token == nil {
		t, err := tx.store.GetToken(tx.ctx)
		if err != nil {
			return nil, notInitialized(err)
		}
		tx.token = t
	}
	return tx.token, nil
}

func (tx *txn) putToken() {
	tx.token.Touch(tx.now)
	tx.batch.Token = tx.token
}

func (tx *txn) loadPolicy() (*fee.Policy, error) {
	if tx.policy == nil {
		p, err := tx.store.GetFeePolicy(tx.ctx)
		if err != nil {
			return nil, notInitialized(err)
		}
		tx.policy = p
	}
	return tx.policy, nil
}

func (tx *txn) putPolicy() {
	tx.policy.Touch(tx.now)
	tx.batch.FeePolicy = tx.policy
}

func (tx *txn) loadMarket() (*exchange.Market, error) {
	if tx.market == nil {
		m, err := tx.store.GetMarket(tx.ctx)
		if err != nil {
			return nil, notInitialized(err)
		}
		tx.market = m
	}
	return tx.market, nil
}

func (tx *txn) putMarket() {
	tx.market.Touch(tx.now)
	tx.batch.Market = tx.market
}

func (tx *txn) loadSettings() (*governance.Settings, error) {
	if tx.settings == nil {
		s, err := tx.store.GetSettings(tx.ctx)
		if err != nil {
			return nil, notInitialized(err)
		}
		tx.settings = s
	}
	return tx.settings, nil
}

func (tx *txn) putSettings() {
	tx.settings.Touch(tx.now)
	tx.batch.Settings = tx.settings
}

// activeRound returns the open round, or nil when governance is idle.
func (tx *txn) activeRound() (*governance.Round, error) {
	if !tx.roundSet {
		r, err := tx.store.GetActiveRound(tx.ctx)
		if err != nil && !errors.Is(err, ErrRoundNotFound) {
			return nil, err
		}
		tx.round = r
		tx.roundSet = true
	}
	return tx.round, nil
}

func (tx *txn) putRound(r *governance.Round) {
	tx.batch.PutRound(r)
}

// requireAdmin fails with ErrUnauthorized unless caller is the administrator.
func (tx *txn) requireAdmin(caller id.AccountID) error {
	tok, err := tx.loadToken()
	if err != nil {
		return err
	}
	if !tok.IsAdministrator(caller) {
		return ErrUnauthorized
	}
	return nil
}

func notInitialized(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: contract not initialized, call Start", ErrStoreNotReady)
	}
	return err
}

func requireAccount(accountID id.AccountID) error {
	if accountID.IsNil() {
		return ErrInvalidAccount
	}
	return nil
}

// requireCaller rejects accounts that cannot act on their own balance.
// The contract account only moves through fee collection and BurnFee.
func requireCaller(accountID id.AccountID) error {
	if accountID.IsNil() || accountID.IsContract() {
		return ErrInvalidAccount
	}
	return nil
}
