package postgres

import (
	"encoding/json"
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

// ==================== Ledger models ====================

type accountModel struct {
	grove.BaseModel `grove:"table:vtm_accounts"`

	ID        string    `grove:"id,pk"`
	Balance   string    `grove:"balance"`
	Locked    bool      `grove:"locked"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toAccountModel(a *ledger.Account) *accountModel {
	return &accountModel{
		ID:        a.ID.String(),
		Balance:   a.Balance.String(),
		Locked:    a.Locked,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
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
	return &ledger.Account{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:      acctID,
		Balance: balance,
		Locked:  m.Locked,
	}, nil
}

type allowanceModel struct {
	grove.BaseModel `grove:"table:vtm_allowances"`

	Key       string    `grove:"allowance_key,pk"`
	Owner     string    `grove:"owner_id"`
	Spender   string    `grove:"spender_id"`
	Amount    string    `grove:"amount"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toAllowanceModel(a *ledger.Allowance) *allowanceModel {
	return &allowanceModel{
		Key:       a.Key(),
		Owner:     a.Owner.String(),
		Spender:   a.Spender.String(),
		Amount:    a.Amount.String(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
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
	return &ledger.Allowance{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
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
	Value     json.RawMessage `grove:"value,type:jsonb"`
	UpdatedAt time.Time       `grove:"updated_at"`
}

func toStateModel(key string, v any, updatedAt time.Time) (*stateModel, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &stateModel{Key: key, Value: data, UpdatedAt: updatedAt}, nil
}

// ==================== Governance models ====================

type roundModel struct {
	grove.BaseModel `grove:"table:vtm_rounds"`

	ID           string          `grove:"id,pk"`
	Number       int64           `grove:"number"`
	Status       string          `grove:"status"`
	Options      json.RawMessage `grove:"options,type:jsonb"`
	Participants json.RawMessage `grove:"participants,type:jsonb"`
	StartedAt    time.Time       `grove:"started_at"`
	EndDate      time.Time       `grove:"end_date"`
	EndedAt      *time.Time      `grove:"ended_at"`
	WinningPrice string          `grove:"winning_price"`
	CreatedAt    time.Time       `grove:"created_at"`
	UpdatedAt    time.Time       `grove:"updated_at"`
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
		StartedAt:    r.StartedAt,
		EndDate:      r.EndDate,
		EndedAt:      r.EndedAt,
		WinningPrice: r.WinningPrice.String(),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
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
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           roundID,
		Number:       uint64(m.Number), //nolint:gosec // stored from a uint64
		Status:       governance.Status(m.Status),
		Options:      options,
		Participants: participants,
		StartedAt:    m.StartedAt,
		EndDate:      m.EndDate,
		EndedAt:      m.EndedAt,
		WinningPrice: winning,
	}, nil
}

// ==================== Exchange models ====================

type swapModel struct {
	grove.BaseModel `grove:"table:vtm_swaps"`

	ID        string    `grove:"id,pk"`
	AccountID string    `grove:"account_id"`
	Side      string    `grove:"side"`
	AmountIn  string    `grove:"amount_in"`
	AmountOut string    `grove:"amount_out"`
	Fee       string    `grove:"fee"`
	Price     string    `grove:"price"`
	CreatedAt time.Time `grove:"created_at"`
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
		CreatedAt: s.CreatedAt,
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
		CreatedAt: m.CreatedAt,
	}, nil
}
