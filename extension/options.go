package extension

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/votemax"
	audithook "github.com/xraph/votemax/audit_hook"
	"github.com/xraph/votemax/plugin"
	"github.com/xraph/votemax/store"
)

// Option configures the VoteMax Forge extension.
type Option func(*Extension)

// WithStore sets the store for the contract. It takes precedence over
// the configured driver.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithContractOption passes a votemax.Option through to the underlying contract.
func WithContractOption(opt votemax.Option) Option {
	return func(e *Extension) {
		e.contractOpts = append(e.contractOpts, opt)
	}
}

// WithPlugin registers a contract plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.contractOpts = append(e.contractOpts, votemax.WithPlugin(p))
	}
}

// WithAuditRecorder registers the audit hook writing to r.
func WithAuditRecorder(r audithook.Recorder, opts ...audithook.Option) Option {
	return func(e *Extension) {
		e.contractOpts = append(e.contractOpts, votemax.WithPlugin(audithook.New(r, opts...)))
	}
}

// WithMetricsRegisterer enables the metrics plugin on reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(e *Extension) {
		e.registerer = reg
		e.config.EnableMetrics = true
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes leaves Handler nil.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for the API.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithDriver selects the store backend and its connection string.
func WithDriver(driver, dsn string) Option {
	return func(e *Extension) {
		e.config.Driver = driver
		e.config.DSN = dsn
	}
}

// WithAdministrator sets the account given the administrator capability on first start.
func WithAdministrator(account string) Option {
	return func(e *Extension) { e.config.Administrator = account }
}
