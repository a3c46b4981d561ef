package mongo

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

// ==================== Ledger models ====================

type accountModel struct {
	grove.BaseModel `grove:"table:vtm_accounts"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Balance   string    `grove:"balance"    bson:"balance"`
	Empty     bool      `grove:"empty"      bson:"empty"`
	Locked    bool      `grove:"locked"     bson:"locked"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toAccountModel(a *ledger.Account) *accountModel {
	return &accountModel{
		ID:        a.ID.String(),
		Balance:   a.Balance.String(),
		Empty:     a.Balance.IsZero(),
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
		return nil, fmt.Errorf("account %s: %w", m.ID, err)
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

	Key       string    `grove:"allowance_key,pk" bson:"_id"`
	Owner     string    `grove:"owner_id"         bson:"owner_id"`
	Spender   string    `grove:"spender_id"       bson:"spender_id"`
	Amount    string    `grove:"amount"           bson:"amount"`
	CreatedAt time.Time `grove:"created_at"       bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"       bson:"updated_at"`
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

// stateModel keeps one singleton as JSON. Amounts exceed the BSON integer
// range, so the document is stored in its JSON form.
type stateModel struct {
	grove.BaseModel `grove:"table:vtm_state"`

	Key       string    `grove:"key,pk"     bson:"_id"`
	Value     string    `grove:"value"      bson:"value"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

// ==================== Governance models ====================

type roundModel struct {
	grove.BaseModel `grove:"table:vtm_rounds"`

	ID           string        `grove:"id,pk"         bson:"_id"`
	Number       int64         `grove:"number"        bson:"number"`
	Status       string        `grove:"status"        bson:"status"`
	Options      []optionModel `grove:"options"       bson:"options"`
	Participants []ballotModel `grove:"participants"  bson:"participants"`
	StartedAt    time.Time     `grove:"started_at"    bson:"started_at"`
	EndDate      time.Time     `grove:"end_date"      bson:"end_date"`
	EndedAt      *time.Time    `grove:"ended_at"      bson:"ended_at,omitempty"`
	WinningPrice string        `grove:"winning_price" bson:"winning_price"`
	CreatedAt    time.Time     `grove:"created_at"    bson:"created_at"`
	UpdatedAt    time.Time     `grove:"updated_at"    bson:"updated_at"`
}

type optionModel struct {
	Price     string `bson:"price"`
	VoteCount string `bson:"vote_count"`
	Proposer  string `bson:"proposer"`
}

type ballotModel struct {
	Account  string    `bson:"account"`
	Price    string    `bson:"price"`
	Weight   string    `bson:"weight"`
	Proposed bool      `bson:"proposed"`
	CastAt   time.Time `bson:"cast_at"`
}

func toRoundModel(r *governance.Round) *roundModel {
	options := make([]optionModel, len(r.Options))
	for i, o := range r.Options {
		options[i] = optionModel{
			Price:     o.Price.String(),
			VoteCount: o.VoteCount.String(),
			Proposer:  o.Proposer.String(),
		}
	}
	participants := make([]ballotModel, len(r.Participants))
	for i, b := range r.Participants {
		participants[i] = ballotModel{
			Account:  b.Account.String(),
			Price:    b.Price.String(),
			Weight:   b.Weight.String(),
			Proposed: b.Proposed,
			CastAt:   b.CastAt,
		}
	}

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

	options := make([]governance.Option, len(m.Options))
	for i, o := range m.Options {
		price, err := types.ParseAmount(o.Price)
		if err != nil {
			return nil, err
		}
		count, err := types.ParseAmount(o.VoteCount)
		if err != nil {
			return nil, err
		}
		proposer, err := id.ParseAccountID(o.Proposer)
		if err != nil {
			return nil, err
		}
		options[i] = governance.Option{Price: price, VoteCount: count, Proposer: proposer}
	}

	participants := make([]governance.Ballot, len(m.Participants))
	for i, b := range m.Participants {
		acct, err := id.ParseAccountID(b.Account)
		if err != nil {
			return nil, err
		}
		price, err := types.ParseAmount(b.Price)
		if err != nil {
			return nil, err
		}
		weight, err := types.ParseAmount(b.Weight)
		if err != nil {
			return nil, err
		}
		participants[i] = governance.Ballot{
			RoundID:  roundID,
			Account:  acct,
			Price:    price,
			Weight:   weight,
			Proposed: b.Proposed,
			CastAt:   b.CastAt,
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

	ID        string    `grove:"id,pk"      bson:"_id"`
	AccountID string    `grove:"account_id" bson:"account_id"`
	Side      string    `grove:"side"       bson:"side"`
	AmountIn  string    `grove:"amount_in"  bson:"amount_in"`
	AmountOut string    `grove:"amount_out" bson:"amount_out"`
	Fee       string    `grove:"fee"        bson:"fee"`
	Price     string    `grove:"price"      bson:"price"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
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

	var amounts [4]types.Amount
	for i, raw := range []string{m.AmountIn, m.AmountOut, m.Fee, m.Price} {
		if amounts[i], err = types.ParseAmount(raw); err != nil {
			return nil, err
		}
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

func marshalState(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
