package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/types"
)

// Singleton keys in vtm_state.
const (
	stateToken     = "token"
	stateFeePolicy = "fee_policy"
	stateMarket    = "market"
	stateSettings  = "governance"
)

// timeLayout is fixed width so TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders t in UTC. The driver hands TEXT columns back as
// strings, so timestamps are stored and scanned as text.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("votemax/sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseEntity(createdAt, updatedAt string) (types.Entity, error) {
	c, err := parseTime(createdAt)
	if err != nil {
		return types.Entity{}, err
	}
	u, err := parseTime(updatedAt)
	if err != nil {
		return types.Entity{}, err
	}
	return types.Entity{CreatedAt: c, UpdatedAt: u}, nil
}

// ==================== Ledger models ====================

type accountModel struct {
	grove.BaseModel `grove:"table:vtm_accounts"`

	ID        string `grove:"id,pk"`
	Balance   string `grove:"balance"`
	Locked    bool   `grove:"locked"`
	CreatedAt string `grove:"created_at"`
	UpdatedAt string `grove:"updated_at"`
}

func toAccountModel(a *ledger.Account) *accountModel {
	return &accountModel{
		ID:        a.ID.String(),
		Balance:   a.Balance.String(),
		Locked:    a.Locked,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

func fromAccountModel(m *accountModel) (*ledger.Account, error) {
	acctID, err := id.ParseAccountID(m.ID)
	if err != nil {
		return nil, err
	}
	balance, err := types.ParseAmount(m.Balance)
	if err != nil {
		return nil, err
	}
	entity, err := parseEntity(m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ledger.Account{
		Entity:  entity,
		ID:      acctID,
		Balance: balance,
		Locked:  m.Locked,
	}, nil
}

type allowanceModel struct {
	grove.BaseModel `grove:"table:vtm_allowances"`

	Key       string `grove:"allowance_key,pk"`
	Owner     string `grove:"owner_id"`
	Spender   string `grove:"spender_id"`
	Amount    string `grove:"amount"`
	CreatedAt string `grove:"created_at"`
	UpdatedAt string `grove:"updated_at"`
}

func toAllowanceModel(a *ledger.Allowance) *allowanceModel {
	return &allowanceModel{
		Key:       a.Key(),
		Owner:     a.Owner.String(),
		Spender:   a.Spender.String(),
		Amount:    a.Amount.String(),
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

func fromAllowanceModel(m *allowanceModel) (*ledger.Allowance, error) {
	owner, err := id.ParseAccountID(m.Owner)
	if err != nil {
		return nil, err
	}
	spender, err := id.ParseAccountID(m.Spender)
	if err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	entity, err := parseEntity(m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ledger.Allowance{
		Entity:  entity,
		Owner:   owner,
		Spender: spender,
		Amount:  amount,
	}, nil
}

// ==================== Singleton models ====================

// stateModel holds one singleton (token, fee policy, market or governance
// settings) as a JSON document.
type stateModel struct {
	grove.BaseModel `grove:"table:vtm_state"`

	Key       string          `grove:"key,pk"`
	Value     json.RawMessage `grove:"value"`
	UpdatedAt string          `grove:"updated_at"`
}

func toStateModel(key string, v any, updatedAt time.Time) (*stateModel, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &stateModel{Key: key, Value: data, UpdatedAt: formatTime(updatedAt)}, nil
}

// ==================== Governance models ====================

type roundModel struct {
	grove.BaseModel `grove:"table:vtm_rounds"`

	ID           string          `grove:"id,pk"`
	Number       int64           `grove:"number"`
	Status       string          `grove:"status"`
	Options      json.RawMessage `grove:"options"`
	Participants json.RawMessage `grove:"participants"`
	StartedAt    string          `grove:"started_at"`
	EndDate      string          `grove:"end_date"`
	EndedAt      *string         `grove:"ended_at"`
	WinningPrice string          `grove:"winning_price"`
	CreatedAt    string          `grove:"created_at"`
	UpdatedAt    string          `grove:"updated_at"`
}

func toRoundModel(r *governance.Round) *roundModel {
	options, _ := json.Marshal(r.Options)           //nolint:errcheck // plain structs always marshal
	participants, _ := json.Marshal(r.Participants) //nolint:errcheck // plain structs always marshal

	return &roundModel{
		ID:           r.ID.String(),
		Number:       int64(r.Number), //nolint:gosec // round numbers stay far below MaxInt64
		Status:       string(r.Status),
		Options:      options,
		Participants: participants,
		StartedAt:    formatTime(r.StartedAt),
		EndDate:      formatTime(r.EndDate),
		EndedAt:      formatTimePtr(r.EndedAt),
		WinningPrice: r.WinningPrice.String(),
		CreatedAt:    formatTime(r.CreatedAt),
		UpdatedAt:    formatTime(r.UpdatedAt),
	}
}

func fromRoundModel(m *roundModel) (*governance.Round, error) {
	roundID, err := id.ParseRoundID(m.ID)
	if err != nil {
		return nil, err
	}
	winning, err := types.ParseAmount(m.WinningPrice)
	if err != nil {
		return nil, err
	}

	entity, err := parseEntity(m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	startedAt, err := parseTime(m.StartedAt)
	if err != nil {
		return nil, err
	}
	endDate, err := parseTime(m.EndDate)
	if err != nil {
		return nil, err
	}
	endedAt, err := parseTimePtr(m.EndedAt)
	if err != nil {
		return nil, err
	}

	var options []governance.Option
	if len(m.Options) > 0 {
		if err := json.Unmarshal(m.Options, &options); err != nil {
			return nil, err
		}
	}
	var participants []governance.Ballot
	if len(m.Participants) > 0 {
		if err := json.Unmarshal(m.Participants, &participants); err != nil {
			return nil, err
		}
	}

	return &governance.Round{
		Entity:       entity,
		ID:           roundID,
		Number:       uint64(m.Number), //nolint:gosec // stored from a uint64
		Status:       governance.Status(m.Status),
		Options:      options,
		Participants: participants,
		StartedAt:    startedAt,
		EndDate:      endDate,
		EndedAt:      endedAt,
		WinningPrice: winning,
	}, nil
}

// ==================== Exchange models ====================

type swapModel struct {
	grove.BaseModel `grove:"table:vtm_swaps"`

	ID        string `grove:"id,pk"`
	AccountID string `grove:"account_id"`
	Side      string `grove:"side"`
	AmountIn  string `grove:"amount_in"`
	AmountOut string `grove:"amount_out"`
	Fee       string `grove:"fee"`
	Price     string `grove:"price"`
	CreatedAt string `grove:"created_at"`
}

func toSwapModel(s *exchange.Swap) *swapModel {
	return &swapModel{
		ID:        s.ID.String(),
		AccountID: s.Account.String(),
		Side:      string(s.Side()),
		AmountIn:  s.AmountIn.String(),
		AmountOut: s.AmountOut.String(),
		Fee:       s.Fee.String(),
		Price:     s.Price.String(),
		CreatedAt: formatTime(s.CreatedAt),
	}
}

func fromSwapModel(m *swapModel) (*exchange.Swap, error) {
	swapID, err := id.ParseSwapID(m.ID)
	if err != nil {
		return nil, err
	}
	acctID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	createdAt, err := parseTime(m.CreatedAt)
	if err != nil {
		return nil, err
	}

	amounts := make([]types.Amount, 4)
	for i, raw := range []string{m.AmountIn, m.AmountOut, m.Fee, m.Price} {
		a, err := types.ParseAmount(raw)
		if err != nil {
			return nil, err
		}
		amounts[i] = a
	}

	return &exchange.Swap{
		ID:        swapID,
		Account:   acctID,
		IsBuy:     m.Side == string(exchange.SideBuy),
		AmountIn:  amounts[0],
		AmountOut: amounts[1],
		Fee:       amounts[2],
		Price:     amounts[3],
		CreatedAt: createdAt,
	}, nil
}
