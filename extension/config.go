package extension

import (
	"time"

	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/store/backend"
)

// Config holds the VoteMax extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.votemax" or "votemax" keys).
type Config struct {
	// DisableRoutes leaves Handler nil so the host does not expose the API.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration and initialization on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix the host should mount Handler under (default: "/votemax").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// Driver selects the store backend: memory, postgres, sqlite or mongo (default: memory).
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// DSN is the connection string for the postgres, sqlite and mongo drivers.
	DSN string `json:"dsn" mapstructure:"dsn" yaml:"dsn"`

	// Administrator is the account ID that receives the administrator
	// capability the first time the contract initializes an empty store.
	Administrator string `json:"administrator" mapstructure:"administrator" yaml:"administrator"`

	// TokenName and TokenSymbol override the token metadata written on first start.
	TokenName   string `json:"token_name" mapstructure:"token_name" yaml:"token_name"`
	TokenSymbol string `json:"token_symbol" mapstructure:"token_symbol" yaml:"token_symbol"`

	// TokenPrice is the initial price as a decimal string (default: "100").
	TokenPrice string `json:"token_price" mapstructure:"token_price" yaml:"token_price"`

	// Decimals is the exchange precision (default: 10).
	Decimals uint64 `json:"decimals" mapstructure:"decimals" yaml:"decimals"`

	// FeePercentage is the initial buy fee. Nil keeps the default of 1%.
	FeePercentage *uint64 `json:"fee_percentage" mapstructure:"fee_percentage" yaml:"fee_percentage"`

	// TimeToVote is the initial voting round length (default: 72h).
	TimeToVote time.Duration `json:"time_to_vote" mapstructure:"time_to_vote" yaml:"time_to_vote"`

	// EnableMetrics registers the Prometheus metrics plugin on the default registerer.
	EnableMetrics bool `json:"enable_metrics" mapstructure:"enable_metrics" yaml:"enable_metrics"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/votemax",
		Driver:     backend.DriverMemory,
		TimeToVote: governance.DefaultTimeToVote,
	}
}
