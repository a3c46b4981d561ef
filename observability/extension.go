// Package observability provides a metrics extension for VoteMax that records
// ledger, exchange and governance event counts via a MetricFactory.
package observability

import (
	"context"
	"errors"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnTransfer             = (*MetricsExtension)(nil)
	_ plugin.OnApproval             = (*MetricsExtension)(nil)
	_ plugin.OnAdministratorChanged = (*MetricsExtension)(nil)
	_ plugin.OnTokensSwapped        = (*MetricsExtension)(nil)
	_ plugin.OnPriceChanged         = (*MetricsExtension)(nil)
	_ plugin.OnFeeChanged           = (*MetricsExtension)(nil)
	_ plugin.OnFeeBurned            = (*MetricsExtension)(nil)
	_ plugin.OnVotingStarted        = (*MetricsExtension)(nil)
	_ plugin.OnVoted                = (*MetricsExtension)(nil)
	_ plugin.OnVotingEnded          = (*MetricsExtension)(nil)
	_ plugin.OnOperationFailed      = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records contract-wide metrics.
// Register it as a VoteMax plugin to track token, exchange and voting activity.
type MetricsExtension struct {
	factory MetricFactory

	// Ledger metrics
	Transfers      Counter
	Mints          Counter
	Burns          Counter
	TokensMinted   Counter
	TokensBurned   Counter
	Approvals      Counter
	AdminTransfers Counter

	// Exchange metrics
	Buys          Counter
	Sells         Counter
	BuyTokens     Histogram
	SellTokens    Histogram
	FeesCollected Counter
	PriceChanges  Counter

	// Fee metrics
	FeeChanges Counter
	FeeBurns   Counter
	FeesBurned Counter

	// Governance metrics
	Proposals         Counter
	Votes             Counter
	RoundsEnded       Counter
	RoundParticipants Histogram
	RoundOptions      Histogram

	// Error metrics
	OperationFailures Counter
	StoreErrors       Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions, or NewPrometheusFactory standalone.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		Transfers:      factory.Counter("votemax.ledger.transfers"),
		Mints:          factory.Counter("votemax.ledger.mints"),
		Burns:          factory.Counter("votemax.ledger.burns"),
		TokensMinted:   factory.Counter("votemax.ledger.tokens.minted"),
		TokensBurned:   factory.Counter("votemax.ledger.tokens.burned"),
		Approvals:      factory.Counter("votemax.ledger.approvals"),
		AdminTransfers: factory.Counter("votemax.ledger.admin.transfers"),

		Buys:          factory.Counter("votemax.exchange.buys"),
		Sells:         factory.Counter("votemax.exchange.sells"),
		BuyTokens:     factory.Histogram("votemax.exchange.buy.tokens"),
		SellTokens:    factory.Histogram("votemax.exchange.sell.tokens"),
		FeesCollected: factory.Counter("votemax.exchange.fees.collected"),
		PriceChanges:  factory.Counter("votemax.exchange.price.changes"),

		FeeChanges: factory.Counter("votemax.fee.changes"),
		FeeBurns:   factory.Counter("votemax.fee.burns"),
		FeesBurned: factory.Counter("votemax.fee.burned"),

		Proposals:         factory.Counter("votemax.governance.proposals"),
		Votes:             factory.Counter("votemax.governance.votes"),
		RoundsEnded:       factory.Counter("votemax.governance.rounds.ended"),
		RoundParticipants: factory.Histogram("votemax.governance.round.participants"),
		RoundOptions:      factory.Histogram("votemax.governance.round.options"),

		OperationFailures: factory.Counter("votemax.operation.failures"),
		StoreErrors:       factory.Counter("votemax.store.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	return nil
}

// ──────────────────────────────────────────────────
// Ledger hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer. Mints and burns are counted
// separately from holder-to-holder transfers.
func (m *MetricsExtension) OnTransfer(_ context.Context, t *ledger.Transfer) error {
	switch {
	case t.IsMint():
		m.Mints.Inc()
		m.TokensMinted.Add(t.Amount.Float64())
	case t.IsBurn():
		m.Burns.Inc()
		m.TokensBurned.Add(t.Amount.Float64())
	default:
		m.Transfers.Inc()
	}
	return nil
}

// OnApproval implements plugin.OnApproval.
func (m *MetricsExtension) OnApproval(_ context.Context, _ *ledger.Approval) error {
	m.Approvals.Inc()
	return nil
}

// OnAdministratorChanged implements plugin.OnAdministratorChanged.
func (m *MetricsExtension) OnAdministratorChanged(_ context.Context, _, _ id.AccountID) error {
	m.AdminTransfers.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Exchange and fee hooks
// ──────────────────────────────────────────────────

// OnTokensSwapped implements plugin.OnTokensSwapped.
func (m *MetricsExtension) OnTokensSwapped(_ context.Context, s *exchange.Swap) error {
	if s.IsBuy {
		m.Buys.Inc()
		m.BuyTokens.Observe(s.AmountOut.Float64())
	} else {
		m.Sells.Inc()
		m.SellTokens.Observe(s.AmountIn.Float64())
	}
	m.FeesCollected.Add(s.Fee.Float64())
	return nil
}

// OnPriceChanged implements plugin.OnPriceChanged.
func (m *MetricsExtension) OnPriceChanged(_ context.Context, _ *exchange.PriceChange) error {
	m.PriceChanges.Inc()
	return nil
}

// OnFeeChanged implements plugin.OnFeeChanged.
func (m *MetricsExtension) OnFeeChanged(_ context.Context, _ *fee.Change) error {
	m.FeeChanges.Inc()
	return nil
}

// OnFeeBurned implements plugin.OnFeeBurned.
func (m *MetricsExtension) OnFeeBurned(_ context.Context, b *fee.Burned) error {
	m.FeeBurns.Inc()
	m.FeesBurned.Add(b.Amount.Float64())
	return nil
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnVotingStarted implements plugin.OnVotingStarted.
func (m *MetricsExtension) OnVotingStarted(_ context.Context, _ *governance.Ballot) error {
	m.Proposals.Inc()
	return nil
}

// OnVoted implements plugin.OnVoted.
func (m *MetricsExtension) OnVoted(_ context.Context, _ *governance.Ballot) error {
	m.Votes.Inc()
	return nil
}

// OnVotingEnded implements plugin.OnVotingEnded.
func (m *MetricsExtension) OnVotingEnded(_ context.Context, r *governance.Round) error {
	m.RoundsEnded.Inc()
	m.RoundParticipants.Observe(float64(len(r.Participants)))
	m.RoundOptions.Observe(float64(len(r.Options)))
	return nil
}

// OnOperationFailed implements plugin.OnOperationFailed.
func (m *MetricsExtension) OnOperationFailed(_ context.Context, _ string, err error) error {
	m.OperationFailures.Inc()
	if errors.Is(err, votemax.ErrTransactionFailed) {
		m.StoreErrors.Inc()
	}
	return nil
}
