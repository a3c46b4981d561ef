package api

import (
	"net/http"

	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/types"
)

type tokenResponse struct {
	Name          string       `json:"name"`
	Symbol        string       `json:"symbol"`
	TotalSupply   types.Amount `json:"total_supply"`
	Administrator id.AccountID `json:"administrator"`
}

type allowanceResponse struct {
	Owner   id.AccountID `json:"owner"`
	Spender id.AccountID `json:"spender"`
	Amount  types.Amount `json:"amount"`
}

type transferRequest struct {
	To     id.AccountID `json:"to"`
	Amount types.Amount `json:"amount"`
}

type approveRequest struct {
	Spender id.AccountID `json:"spender"`
	Amount  types.Amount `json:"amount"`
}

type transferFromRequest struct {
	Owner  id.AccountID `json:"owner"`
	To     id.AccountID `json:"to"`
	Amount types.Amount `json:"amount"`
}

type burnRequest struct {
	From   id.AccountID `json:"from"`
	Amount types.Amount `json:"amount"`
}

type administratorRequest struct {
	Administrator id.AccountID `json:"administrator"`
}

// GET /token
func (h *Handler) getToken(w http.ResponseWriter, r *http.Request) {
	tok, err := h.contract.Token(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, tokenResponse{
		Name:          tok.Name,
		Symbol:        tok.Symbol,
		TotalSupply:   tok.TotalSupply,
		Administrator: tok.Administrator,
	})
}

// POST /administrator
func (h *Handler) transferAdministration(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req administratorRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.TransferAdministration(r.Context(), from, req.Administrator); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// GET /accounts?locked=true&nonzero=true&limit=&offset=
func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	accounts, err := h.contract.Accounts(r.Context(), ledger.ListOpts{
		OnlyLocked: queryBool(r, "locked"),
		SkipEmpty:  queryBool(r, "nonzero"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []*ledger.Account{}
	}
	h.respond(w, http.StatusOK, accounts)
}

// GET /accounts/{id}
func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	acctID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	acct, err := h.contract.Account(r.Context(), acctID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, acct)
}

// GET /accounts/{owner}/allowances/{spender}
func (h *Handler) getAllowance(w http.ResponseWriter, r *http.Request) {
	owner, err := pathID(r, "owner")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	spender, err := pathID(r, "spender")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	amount, err := h.contract.Allowance(r.Context(), owner, spender)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, allowanceResponse{Owner: owner, Spender: spender, Amount: amount})
}

// POST /transfer
func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req transferRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.Transfer(r.Context(), from, req.To, req.Amount); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// POST /approve
func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	owner, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req approveRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.Approve(r.Context(), owner, req.Spender, req.Amount); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// POST /transfer-from
func (h *Handler) transferFrom(w http.ResponseWriter, r *http.Request) {
	spender, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req transferFromRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.TransferFrom(r.Context(), spender, req.Owner, req.To, req.Amount); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// POST /mint
func (h *Handler) mint(w http.ResponseWriter, r *http.Request) {
	admin, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req transferRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.Mint(r.Context(), admin, req.To, req.Amount); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// POST /burn
func (h *Handler) burn(w http.ResponseWriter, r *http.Request) {
	admin, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req burnRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.Burn(r.Context(), admin, req.From, req.Amount); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}
