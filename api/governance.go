package api

import (
	"net/http"
	"time"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/types"
)

type votingResponse struct {
	Going             bool              `json:"going"`
	HighestVotedPrice types.Amount      `json:"highest_voted_price"`
	EndDate           int64             `json:"end_date"`
	TimeLeftSeconds   int64             `json:"time_left_seconds"`
	TimeToVoteSeconds int64             `json:"time_to_vote_seconds"`
	CurrentVoteCount  uint64            `json:"current_vote_count"`
	Round             *governance.Round `json:"round,omitempty"`
}

type durationRequest struct {
	Seconds int64 `json:"seconds"`
}

// GET /voting
func (h *Handler) getVoting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.contract.Settings(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	round, err := h.contract.ActiveRound(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	left, err := h.contract.GetTimeLeft(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := votingResponse{
		Going:             round != nil,
		TimeLeftSeconds:   int64(left / time.Second),
		TimeToVoteSeconds: int64(settings.TimeToVote / time.Second),
		CurrentVoteCount:  settings.CurrentVoteCount,
		Round:             round,
	}
	if round != nil {
		leader, _ := round.Leader()
		resp.HighestVotedPrice = leader.Price
		resp.EndDate = round.EndDate.Unix()
	}
	h.respond(w, http.StatusOK, resp)
}

// POST /voting/start
func (h *Handler) startVoting(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req priceRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ballot, err := h.contract.StartVoting(r.Context(), acct, req.Price)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, ballot)
}

// POST /voting/vote
func (h *Handler) vote(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req priceRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ballot, err := h.contract.Vote(r.Context(), acct, req.Price)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, ballot)
}

// POST /voting/end
func (h *Handler) endVote(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	round, err := h.contract.EndVote(r.Context(), acct)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, round)
}

// PUT /voting/duration
func (h *Handler) setDuration(w http.ResponseWriter, r *http.Request) {
	admin, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req durationRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.contract.SetTimeToVote(r.Context(), admin, time.Duration(req.Seconds)*time.Second); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// GET /voting/rounds?status=&limit=&offset=
func (h *Handler) listRounds(w http.ResponseWriter, r *http.Request) {
	opts := governance.ListOpts{Status: governance.Status(r.URL.Query().Get("status"))}
	switch opts.Status {
	case "", governance.StatusActive, governance.StatusClosed:
	default:
		h.fail(w, r, votemax.ValidationError{Field: "status", Message: "must be active or closed"})
		return
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

	rounds, err := h.contract.Rounds(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rounds == nil {
		rounds = []*governance.Round{}
	}
	h.respond(w, http.StatusOK, rounds)
}

// GET /voting/rounds/{id}
func (h *Handler) getRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	round, err := h.contract.Round(r.Context(), roundID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, round)
}
