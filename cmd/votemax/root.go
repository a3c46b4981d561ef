package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/plugin"
	"github.com/xraph/votemax/store/backend"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "votemax",
	Short: "Vote Max Token ledger, exchange and price governance",
	Long: `votemax operates a Vote Max Token contract: an ERC20-style ledger with a
bonding-curve exchange whose price is set by holder votes.

Configuration is read from a YAML file (--config), VOTEMAX_* environment
variables and flags, in increasing order of precedence.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./votemax.yaml)")
	flags.String("driver", backend.DriverSQLite, "store driver: "+strings.Join(backend.Drivers(), ", "))
	flags.String("dsn", "file:votemax.db", "store connection string")
	flags.String("administrator", "", "account given the administrator capability on first start")
	flags.String("as", "", "account performing the operation")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"driver":        "driver",
		"dsn":           "dsn",
		"administrator": "administrator",
		"account":       "as",
		"log_level":     "log-level",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag)) //nolint:errcheck // flag names are static
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("votemax")
	}

	viper.SetEnvPrefix("VOTEMAX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			fmt.Fprintf(os.Stderr, "votemax: read config: %v\n", err)
		}
	}
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openContract opens the configured store and starts a contract on it.
// The caller must Stop the returned contract.
func openContract(ctx context.Context, plugins ...plugin.Plugin) (*votemax.Contract, error) {
	s, err := backend.Open(ctx, viper.GetString("driver"), viper.GetString("dsn"))
	if err != nil {
		return nil, err
	}

	logger := newLogger()
	opts := []votemax.Option{votemax.WithLogger(logger)}
	if raw := viper.GetString("administrator"); raw != "" {
		admin, err := id.ParseAccountID(raw)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("administrator: %w", err)
		}
		opts = append(opts, votemax.WithAdministrator(admin))
	}
	for _, p := range plugins {
		opts = append(opts, votemax.WithPlugin(p))
	}

	c := votemax.New(s, opts...)
	if err := c.Start(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return c, nil
}

// actingAccount returns the account given with --as or VOTEMAX_ACCOUNT.
func actingAccount() (id.AccountID, error) {
	raw := viper.GetString("account")
	if raw == "" {
		return id.Nil, fmt.Errorf("no acting account: pass --as or set VOTEMAX_ACCOUNT")
	}
	return id.ParseAccountID(raw)
}
