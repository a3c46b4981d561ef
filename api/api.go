// Package api exposes a VoteMax contract over HTTP using chi.
//
// The calling account is taken from the X-Account header. Request and
// response bodies are JSON; amounts are encoded as decimal strings and
// accepted as strings or numbers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/id"
)

// AccountHeader carries the calling account on every mutating request.
const AccountHeader = "X-Account"

var errMissingAccount = errors.New("votemax: missing " + AccountHeader + " header")

// Handler serves the HTTP API for one contract.
type Handler struct {
	contract *votemax.Contract
	logger   *slog.Logger
	router   chi.Router
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for unexpected failures.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// New builds the router for c.
func New(c *votemax.Contract, opts ...Option) *Handler {
	h := &Handler{
		contract: c,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/token", h.getToken)
	r.Post("/administrator", h.transferAdministration)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Get("/{id}", h.getAccount)
		r.Get("/{owner}/allowances/{spender}", h.getAllowance)
	})
	r.Post("/transfer", h.transfer)
	r.Post("/approve", h.approve)
	r.Post("/transfer-from", h.transferFrom)
	r.Post("/mint", h.mint)
	r.Post("/burn", h.burn)

	r.Route("/fee", func(r chi.Router) {
		r.Get("/", h.getFee)
		r.Put("/", h.setFee)
		r.Post("/burn", h.burnFee)
	})

	r.Route("/market", func(r chi.Router) {
		r.Get("/", h.getMarket)
		r.Put("/price", h.setPrice)
	})
	r.Post("/buy", h.buy)
	r.Post("/sell", h.sell)
	r.Post("/deposit", h.deposit)
	r.Get("/swaps", h.listSwaps)

	r.Route("/voting", func(r chi.Router) {
		r.Get("/", h.getVoting)
		r.Post("/start", h.startVoting)
		r.Post("/vote", h.vote)
		r.Post("/end", h.endVote)
		r.Put("/duration", h.setDuration)
		r.Get("/rounds", h.listRounds)
		r.Get("/rounds/{id}", h.getRound)
	})

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// ──────────────────────────────────────────────────
// Request helpers
// ──────────────────────────────────────────────────

func caller(r *http.Request) (id.AccountID, error) {
	raw := r.Header.Get(AccountHeader)
	if raw == "" {
		return id.Nil, errMissingAccount
	}
	acct, err := id.Parse(raw)
	if err != nil {
		return id.Nil, votemax.ValidationError{Field: AccountHeader, Message: err.Error(), Err: votemax.ErrInvalidAccount}
	}
	return acct, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return votemax.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

func pathID(r *http.Request, key string) (id.ID, error) {
	parsed, err := id.Parse(chi.URLParam(r, key))
	if err != nil {
		return id.Nil, votemax.ValidationError{Field: key, Message: err.Error()}
	}
	return parsed, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, votemax.ValidationError{Field: key, Message: "must be a non-negative integer"}
	}
	return n, nil
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

// ──────────────────────────────────────────────────
// Responses
// ──────────────────────────────────────────────────

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("api: encode response", "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("api: request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	h.respond(w, status, errorResponse{Error: err.Error()})
}

// StatusFor maps a contract error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errMissingAccount):
		return http.StatusUnauthorized
	case errors.Is(err, votemax.ErrUnauthorized):
		return http.StatusForbidden
	case votemax.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, votemax.ErrNoSuchOption), votemax.IsNotFound(err):
		return http.StatusNotFound
	case votemax.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, votemax.ErrStoreNotReady), errors.Is(err, votemax.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
