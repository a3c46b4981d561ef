package audithook

// Action constants for audit events.
const (
	// Ledger actions
	ActionTokensMinted         = "tokens.minted"
	ActionTokensBurned         = "tokens.burned"
	ActionTokensTransferred    = "tokens.transferred"
	ActionAllowanceApproved    = "allowance.approved"
	ActionAdministratorChanged = "administrator.changed"

	// Exchange actions
	ActionTokensBought = "tokens.bought"
	ActionTokensSold   = "tokens.sold"
	ActionPriceChanged = "price.changed"

	// Fee actions
	ActionFeeChanged = "fee.changed"
	ActionFeeBurned  = "fee.burned"

	// Governance actions
	ActionPriceProposed = "vote.proposed"
	ActionVoteCast      = "vote.cast"
	ActionVotingEnded   = "voting.ended"

	// Failures
	ActionOperationFailed = "operation.failed"
)

// Resource constants for audit events.
const (
	ResourceAccount  = "account"
	ResourceToken    = "token"
	ResourceMarket   = "market"
	ResourceFee      = "fee"
	ResourceRound    = "round"
	ResourceContract = "contract"
)

// Category constants for audit events.
const (
	CategoryLedger     = "ledger"
	CategoryExchange   = "exchange"
	CategoryGovernance = "governance"
	CategoryAdmin      = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
