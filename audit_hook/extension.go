// Package audithook bridges VoteMax contract events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import an
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnTransfer             = (*Extension)(nil)
	_ plugin.OnApproval             = (*Extension)(nil)
	_ plugin.OnAdministratorChanged = (*Extension)(nil)
	_ plugin.OnTokensSwapped        = (*Extension)(nil)
	_ plugin.OnPriceChanged         = (*Extension)(nil)
	_ plugin.OnFeeChanged           = (*Extension)(nil)
	_ plugin.OnFeeBurned            = (*Extension)(nil)
	_ plugin.OnVotingStarted        = (*Extension)(nil)
	_ plugin.OnVoted                = (*Extension)(nil)
	_ plugin.OnVotingEnded          = (*Extension)(nil)
	_ plugin.OnOperationFailed      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges contract events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Ledger hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer.
func (e *Extension) OnTransfer(ctx context.Context, t *ledger.Transfer) error {
	switch {
	case t.IsMint():
		return e.record(ctx, ActionTokensMinted, SeverityInfo, OutcomeSuccess,
			ResourceAccount, t.To.String(), CategoryLedger, nil,
			"amount", t.Amount.String(),
		)
	case t.IsBurn():
		return e.record(ctx, ActionTokensBurned, SeverityInfo, OutcomeSuccess,
			ResourceAccount, t.From.String(), CategoryLedger, nil,
			"amount", t.Amount.String(),
		)
	default:
		return e.record(ctx, ActionTokensTransferred, SeverityInfo, OutcomeSuccess,
			ResourceAccount, t.From.String(), CategoryLedger, nil,
			"to", t.To.String(),
			"amount", t.Amount.String(),
		)
	}
}

// OnApproval implements plugin.OnApproval.
func (e *Extension) OnApproval(ctx context.Context, a *ledger.Approval) error {
	return e.record(ctx, ActionAllowanceApproved, SeverityInfo, OutcomeSuccess,
		ResourceAccount, a.Owner.String(), CategoryLedger, nil,
		"spender", a.Spender.String(),
		"amount", a.Amount.String(),
	)
}

// OnAdministratorChanged implements plugin.OnAdministratorChanged.
func (e *Extension) OnAdministratorChanged(ctx context.Context, previous, current id.AccountID) error {
	return e.record(ctx, ActionAdministratorChanged, SeverityCritical, OutcomeSuccess,
		ResourceToken, current.String(), CategoryAdmin, nil,
		"previous", previous.String(),
		"current", current.String(),
	)
}

// ──────────────────────────────────────────────────
// Exchange and fee hooks
// ──────────────────────────────────────────────────

// OnTokensSwapped implements plugin.OnTokensSwapped.
func (e *Extension) OnTokensSwapped(ctx context.Context, s *exchange.Swap) error {
	action := ActionTokensSold
	if s.IsBuy {
		action = ActionTokensBought
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceAccount, s.Account.String(), CategoryExchange, nil,
		"swap_id", s.ID.String(),
		"amount_in", s.AmountIn.String(),
		"amount_out", s.AmountOut.String(),
		"fee", s.Fee.String(),
		"price", s.Price.String(),
	)
}

// OnPriceChanged implements plugin.OnPriceChanged.
func (e *Extension) OnPriceChanged(ctx context.Context, c *exchange.PriceChange) error {
	return e.record(ctx, ActionPriceChanged, SeverityWarning, OutcomeSuccess,
		ResourceMarket, "", CategoryExchange, nil,
		"previous", c.Previous.String(),
		"current", c.Current.String(),
	)
}

// OnFeeChanged implements plugin.OnFeeChanged.
func (e *Extension) OnFeeChanged(ctx context.Context, c *fee.Change) error {
	return e.record(ctx, ActionFeeChanged, SeverityWarning, OutcomeSuccess,
		ResourceFee, "", CategoryAdmin, nil,
		"previous", c.Previous,
		"current", c.Current,
	)
}

// OnFeeBurned implements plugin.OnFeeBurned.
func (e *Extension) OnFeeBurned(ctx context.Context, b *fee.Burned) error {
	return e.record(ctx, ActionFeeBurned, SeverityInfo, OutcomeSuccess,
		ResourceFee, id.ContractAccount.String(), CategoryAdmin, nil,
		"amount", b.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnVotingStarted implements plugin.OnVotingStarted.
func (e *Extension) OnVotingStarted(ctx context.Context, b *governance.Ballot) error {
	return e.record(ctx, ActionPriceProposed, SeverityInfo, OutcomeSuccess,
		ResourceRound, b.RoundID.String(), CategoryGovernance, nil,
		"account", b.Account.String(),
		"price", b.Price.String(),
		"weight", b.Weight.String(),
	)
}

// OnVoted implements plugin.OnVoted.
func (e *Extension) OnVoted(ctx context.Context, b *governance.Ballot) error {
	return e.record(ctx, ActionVoteCast, SeverityInfo, OutcomeSuccess,
		ResourceRound, b.RoundID.String(), CategoryGovernance, nil,
		"account", b.Account.String(),
		"price", b.Price.String(),
		"weight", b.Weight.String(),
	)
}

// OnVotingEnded implements plugin.OnVotingEnded.
func (e *Extension) OnVotingEnded(ctx context.Context, r *governance.Round) error {
	return e.record(ctx, ActionVotingEnded, SeverityInfo, OutcomeSuccess,
		ResourceRound, r.ID.String(), CategoryGovernance, nil,
		"number", r.Number,
		"winning_price", r.WinningPrice.String(),
		"options", len(r.Options),
		"participants", len(r.Participants),
	)
}

// OnOperationFailed implements plugin.OnOperationFailed. Authorization
// failures are flagged as warnings; storage failures as errors.
func (e *Extension) OnOperationFailed(ctx context.Context, op string, err error) error {
	severity := SeverityInfo
	switch {
	case errors.Is(err, votemax.ErrUnauthorized):
		severity = SeverityWarning
	case errors.Is(err, votemax.ErrTransactionFailed):
		severity = SeverityError
	}
	return e.record(ctx, ActionOperationFailed, severity, OutcomeFailure,
		ResourceContract, op, CategoryLedger, err,
		"operation", op,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
