// Package extension provides the Forge extension adapter for VoteMax.
//
// It implements the forge.Extension interface to integrate the VoteMax
// contract into a Forge application with DI registration and lifecycle
// management. The HTTP API is exposed through Handler for the host to mount.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.votemax" or "votemax" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/api"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/observability"
	"github.com/xraph/votemax/store"
	"github.com/xraph/votemax/store/backend"
	"github.com/xraph/votemax/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "votemax"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Vote Max Token ledger, exchange and price governance"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts VoteMax as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config       Config
	contract     *votemax.Contract
	handler      http.Handler
	store        store.Store
	registerer   prometheus.Registerer
	contractOpts []votemax.Option
}

// New creates a new VoteMax Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Contract returns the underlying contract.
// This is nil until Register is called.
func (e *Extension) Contract() *votemax.Contract { return e.contract }

// Handler returns the HTTP API, or nil when routes are disabled or the
// extension is not registered yet.
func (e *Extension) Handler() http.Handler { return e.handler }

// BasePath returns the prefix Handler should be mounted under.
func (e *Extension) BasePath() string { return e.config.BasePath }

// Register implements [forge.Extension]. It loads configuration, opens
// the store, builds the contract and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		s, err := backend.Open(context.Background(), e.config.Driver, e.config.DSN)
		if err != nil {
			return err
		}
		e.store = s
	}

	opts, err := e.buildContractOpts()
	if err != nil {
		return err
	}

	e.contract = votemax.New(e.store, opts...)
	if !e.config.DisableRoutes {
		e.handler = api.New(e.contract)
	}

	return vessel.Provide(fapp.Container(), func() (*votemax.Contract, error) {
		return e.contract, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.contract == nil {
		return errors.New("votemax: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.contract.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.contract != nil {
		if err := e.contract.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("votemax: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildContractOpts constructs votemax.Option values from the resolved config.
func (e *Extension) buildContractOpts() ([]votemax.Option, error) {
	opts := make([]votemax.Option, 0, len(e.contractOpts)+3)

	if e.config.Administrator != "" {
		admin, err := id.ParseAccountID(e.config.Administrator)
		if err != nil {
			return nil, fmt.Errorf("votemax: administrator: %w", err)
		}
		opts = append(opts, votemax.WithAdministrator(admin))
	}

	defaults := votemax.StandardDefaults()
	defaults.Name = e.config.TokenName
	defaults.Symbol = e.config.TokenSymbol
	defaults.Decimals = e.config.Decimals
	defaults.TimeToVote = e.config.TimeToVote
	if e.config.TokenPrice != "" {
		price, err := types.ParseAmount(e.config.TokenPrice)
		if err != nil {
			return nil, fmt.Errorf("votemax: token_price: %w", err)
		}
		defaults.TokenPrice = price
	} else {
		defaults.TokenPrice = types.Amount{}
	}
	if e.config.FeePercentage != nil {
		defaults.FeePercentage = *e.config.FeePercentage
	}
	opts = append(opts, votemax.WithDefaults(defaults))

	if e.config.EnableMetrics {
		factory := observability.NewPrometheusFactory(e.registerer)
		opts = append(opts, votemax.WithPlugin(observability.NewMetricsExtension(factory)))
	}

	// Append any pass-through contract options.
	opts = append(opts, e.contractOpts...)

	return opts, nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("votemax: configuration is required but not found in config files; " +
				"ensure 'extensions.votemax' or 'votemax' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("votemax: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("driver", e.config.Driver),
		forge.F("time_to_vote", e.config.TimeToVote),
		forge.F("enable_metrics", e.config.EnableMetrics),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.votemax", "votemax"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("votemax: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("votemax: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.Driver == "" {
		cfg.Driver = defaults.Driver
	}
	if cfg.TimeToVote <= 0 {
		cfg.TimeToVote = defaults.TimeToVote
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.EnableMetrics {
		yamlConfig.EnableMetrics = true
	}

	// String fields: YAML takes precedence.
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&yamlConfig.BasePath, programmaticConfig.BasePath)
	fill(&yamlConfig.Driver, programmaticConfig.Driver)
	fill(&yamlConfig.DSN, programmaticConfig.DSN)
	fill(&yamlConfig.Administrator, programmaticConfig.Administrator)
	fill(&yamlConfig.TokenName, programmaticConfig.TokenName)
	fill(&yamlConfig.TokenSymbol, programmaticConfig.TokenSymbol)
	fill(&yamlConfig.TokenPrice, programmaticConfig.TokenPrice)

	// Numeric fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.Decimals == 0 {
		yamlConfig.Decimals = programmaticConfig.Decimals
	}
	if yamlConfig.FeePercentage == nil {
		yamlConfig.FeePercentage = programmaticConfig.FeePercentage
	}
	if yamlConfig.TimeToVote == 0 {
		yamlConfig.TimeToVote = programmaticConfig.TimeToVote
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
