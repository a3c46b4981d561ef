package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/api"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/store/memory"
	"github.com/xraph/votemax/types"
)

type server struct {
	t     *testing.T
	h     http.Handler
	c     *votemax.Contract
	clock *clock.Mock
	admin id.AccountID
}

func newServer(t *testing.T) *server {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	admin := id.NewAccountID()

	c := votemax.New(memory.New(),
		votemax.WithClock(clk),
		votemax.WithAdministrator(admin),
	)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Stop() })

	return &server{t: t, h: api.New(c), c: c, clock: clk, admin: admin}
}

func (s *server) do(method, path string, as id.AccountID, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if !as.IsNil() {
		req.Header.Set(api.AccountHeader, as.String())
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestTokenAndMint(t *testing.T) {
	s := newServer(t)
	alice := id.NewAccountID()

	rec := s.do(http.MethodGet, "/token", id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decodeBody(t, rec)
	assert.Equal(t, "Vote Max Token", tok["name"])
	assert.Equal(t, "VTM", tok["symbol"])
	assert.Equal(t, "0", tok["total_supply"])
	assert.Equal(t, s.admin.String(), tok["administrator"])

	mint := map[string]any{"to": alice.String(), "amount": "1000"}

	rec = s.do(http.MethodPost, "/mint", id.Nil, mint)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/mint", alice, mint)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/mint", s.admin, mint)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/accounts/"+alice.String(), id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	acct := decodeBody(t, rec)
	assert.Equal(t, "1000", acct["balance"])
	assert.Equal(t, false, acct["locked"])
}

func TestTransferAndAllowance(t *testing.T) {
	s := newServer(t)
	alice, bob, carol := id.NewAccountID(), id.NewAccountID(), id.NewAccountID()
	require.NoError(t, s.c.Mint(context.Background(), s.admin, alice, amount(500)))

	rec := s.do(http.MethodPost, "/transfer", alice, map[string]any{"to": bob.String(), "amount": 200})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/transfer", bob, map[string]any{"to": alice.String(), "amount": "201"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/approve", alice, map[string]any{"spender": carol.String(), "amount": "50"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/accounts/%s/allowances/%s", alice, carol), id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "50", decodeBody(t, rec)["amount"])

	rec = s.do(http.MethodPost, "/transfer-from", carol,
		map[string]any{"owner": alice.String(), "to": carol.String(), "amount": "30"})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/transfer-from", carol,
		map[string]any{"owner": alice.String(), "to": carol.String(), "amount": "30"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/accounts?nonzero=true", id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var accounts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accounts))
	assert.Len(t, accounts, 3)
}

func TestBuySellAndSwaps(t *testing.T) {
	s := newServer(t)
	buyer := id.NewAccountID()

	rec := s.do(http.MethodPost, "/buy", buyer, map[string]any{"amount": "10000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	swap := decodeBody(t, rec)
	assert.Equal(t, "990", swap["amount_out"])
	assert.Equal(t, "10", swap["fee"])
	assert.Equal(t, true, swap["is_buy"])

	rec = s.do(http.MethodGet, "/fee", id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fee := decodeBody(t, rec)
	assert.Equal(t, float64(1), fee["percentage"])
	assert.Equal(t, "10", fee["balance"])

	rec = s.do(http.MethodPost, "/sell", buyer, map[string]any{"amount": "991"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/sell", buyer, map[string]any{"amount": "100"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/swaps?account="+buyer.String(), id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var swaps []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &swaps))
	require.Len(t, swaps, 2)
	assert.Equal(t, false, swaps[0]["is_buy"], "newest first")

	rec = s.do(http.MethodGet, "/swaps?side=buy&limit=x", id.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContractAccountHeaderRejected(t *testing.T) {
	s := newServer(t)
	thief := id.NewAccountID()

	rec := s.do(http.MethodPost, "/buy", id.NewAccountID(), map[string]any{"amount": "10000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/transfer", id.ContractAccount, map[string]any{"to": thief.String(), "amount": "10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/fee", id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", decodeBody(t, rec)["balance"])

	rec = s.do(http.MethodGet, "/accounts/"+thief.String(), id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", decodeBody(t, rec)["balance"])
}

func TestAdminSettings(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPut, "/fee", s.admin, map[string]any{"percentage": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/fee", s.admin, map[string]any{"percentage": 5})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPut, "/market/price", s.admin, map[string]any{"price": "250"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/market", id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "250", decodeBody(t, rec)["token_price"])

	rec = s.do(http.MethodPut, "/voting/duration", s.admin, map[string]any{"seconds": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/voting/duration", s.admin, map[string]any{"seconds": 3600})
	require.Equal(t, http.StatusNoContent, rec.Code)

	next := id.NewAccountID()
	rec = s.do(http.MethodPost, "/administrator", s.admin, map[string]any{"administrator": next.String()})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/fee/burn", s.admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPost, "/fee/burn", next, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestVotingLifecycle(t *testing.T) {
	s := newServer(t)
	alice, bob := id.NewAccountID(), id.NewAccountID()
	ctx := context.Background()
	require.NoError(t, s.c.Mint(ctx, s.admin, alice, amount(100)))
	require.NoError(t, s.c.Mint(ctx, s.admin, bob, amount(50)))

	rec := s.do(http.MethodGet, "/voting", id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	idle := decodeBody(t, rec)
	assert.Equal(t, false, idle["going"])
	assert.Equal(t, "0", idle["highest_voted_price"])
	assert.Equal(t, float64(1), idle["current_vote_count"])

	rec = s.do(http.MethodPost, "/voting/vote", bob, map[string]any{"price": "200"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/voting/start", alice, map[string]any{"price": "200"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "100", decodeBody(t, rec)["weight"])

	rec = s.do(http.MethodPost, "/voting/start", alice, map[string]any{"price": "300"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/voting/vote", bob, map[string]any{"price": "200"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/transfer", bob, map[string]any{"to": alice.String(), "amount": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/voting", id.Nil, nil)
	going := decodeBody(t, rec)
	assert.Equal(t, true, going["going"])
	assert.Equal(t, "200", going["highest_voted_price"])
	assert.Equal(t, float64(259200), going["time_left_seconds"])

	rec = s.do(http.MethodPost, "/voting/end", bob, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	s.clock.Add(72 * time.Hour)

	rec = s.do(http.MethodPost, "/voting/end", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decodeBody(t, rec)
	assert.Equal(t, "closed", closed["status"])
	assert.Equal(t, "200", closed["winning_price"])

	rec = s.do(http.MethodGet, "/market", id.Nil, nil)
	assert.Equal(t, "200", decodeBody(t, rec)["token_price"])

	rec = s.do(http.MethodGet, "/voting/rounds?status=closed", id.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rounds []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rounds))
	require.Len(t, rounds, 1)

	rec = s.do(http.MethodGet, "/voting/rounds/"+rounds[0]["id"].(string), id.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/voting/rounds/"+id.NewRoundID().String(), id.Nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/voting/rounds?status=pending", id.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedRequests(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/transfer", bytes.NewBufferString("{not json"))
	req.Header.Set(api.AccountHeader, s.admin.String())
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/transfer", bytes.NewBufferString(`{"to":"x","amount":"1"}`))
	req.Header.Set(api.AccountHeader, "garbage")
	rec = httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/transfer", s.admin, map[string]any{"amount": "-5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/accounts/nope", id.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{votemax.ErrUnauthorized, http.StatusForbidden},
		{votemax.ErrOutOfRange, http.StatusBadRequest},
		{votemax.ErrZeroAmount, http.StatusBadRequest},
		{votemax.ErrInvalidAccount, http.StatusBadRequest},
		{votemax.ErrNoSuchOption, http.StatusNotFound},
		{votemax.ErrRoundNotFound, http.StatusNotFound},
		{votemax.ErrInsufficientBalance, http.StatusConflict},
		{votemax.ErrInsufficientReserve, http.StatusConflict},
		{votemax.ErrAccountLocked, http.StatusConflict},
		{votemax.ErrVotingNotEnded, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", votemax.ErrNotEligible), http.StatusConflict},
		{votemax.ErrStoreNotReady, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, api.StatusFor(tt.err), "%v", tt.err)
	}
}

func amount(n uint64) types.Amount { return types.NewAmount(n) }
