package api

import (
	"net/http"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

type feeResponse struct {
	Percentage uint64       `json:"percentage"`
	Balance    types.Amount `json:"balance"`
}

type feeRequest struct {
	Percentage uint64 `json:"percentage"`
}

type priceRequest struct {
	Price types.Amount `json:"price"`
}

type amountRequest struct {
	Amount types.Amount `json:"amount"`
}

// GET /fee
func (h *Handler) getFee(w http.ResponseWriter, r *http.Request) {
	p, err := h.contract.FeePolicy(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, feeResponse{Percentage: p.Percentage, Balance: p.Balance})
}

// PUT /fee
func (h *Handler) setFee(w http.ResponseWriter, r *http.Request) {
	admin, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req feeRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.SetBuyFeePercentage(r.Context(), admin, req.Percentage); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// POST /fee/burn
func (h *Handler) burnFee(w http.ResponseWriter, r *http.Request) {
	admin, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.BurnFee(r.Context(), admin); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// GET /market
func (h *Handler) getMarket(w http.ResponseWriter, r *http.Request) {
	m, err := h.contract.Market(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, m)
}

// PUT /market/price
func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	admin, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req priceRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.SetTokenPrice(r.Context(), admin, req.Price); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// POST /buy with the native value paid in.
func (h *Handler) buy(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req amountRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	swap, err := h.contract.Buy(r.Context(), acct, req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, swap)
}

// POST /sell with the token amount sold.
func (h *Handler) sell(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req amountRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	swap, err := h.contract.Sell(r.Context(), acct, req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, swap)
}

// POST /deposit
func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req amountRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.Deposit(r.Context(), acct, req.Amount); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// GET /swaps?account=&side=&limit=&offset=
func (h *Handler) listSwaps(w http.ResponseWriter, r *http.Request) {
	opts := exchange.ListOpts{Side: exchange.Side(r.URL.Query().Get("side"))}
	if raw := r.URL.Query().Get("account"); raw != "" {
		acct, err := id.ParseAccountID(raw)
		if err != nil {
			h.fail(w, r, votemax.ValidationError{Field: "account", Message: err.Error()})
			return
		}
		opts.Account = acct
	}
	var err error
	if opts.Limit, err = queryInt(r, "limit"); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.Offset, err = queryInt(r, "offset"); err != nil {
		h.fail(w, r, err)
		return
	}

	swaps, err := h.contract.Swaps(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if swaps == nil {
		swaps = []*exchange.Swap{}
	}
	h.respond(w, http.StatusOK, swaps)
}
