// Package cmdutil holds the config, logging and startup steps shared by the
// sqlchat commands that talk to a database.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/sqlchat/pkg/bootstrap"
	"github.com/papercomputeco/sqlchat/pkg/config"
	"github.com/papercomputeco/sqlchat/pkg/credentials"
	"github.com/papercomputeco/sqlchat/pkg/logger"
)

// FlagAPIKey is the flag that overrides stored and environment API keys.
const FlagAPIKey = "api-key"

// AddSessionFlags registers the database and completion flags plus --api-key.
func AddSessionFlags(cmd *cobra.Command) {
	config.AddFlags(cmd, config.SessionFlags)
	cmd.Flags().String(FlagAPIKey, "", "Completion provider API key (default: stored credentials or environment)")
}

// LoadConfig resolves the Config for cmd: flags from each FlagSet, then
// SQLCHAT_* env, then config.toml, then defaults.
func LoadConfig(cmd *cobra.Command, sets ...config.FlagSet) (*config.Config, *viper.Viper, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	for _, fs := range sets {
		config.BindRegisteredFlags(v, cmd, fs, fs.Keys())
	}

	return config.FromViper(v), v, nil
}

// NewLogger builds the CLI logger: colorized output on w, debug level when
// --debug is set.
func NewLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(w),
	)
}

// Start opens the runtime for cfg using the credentials in the config dir.
func Start(ctx context.Context, cmd *cobra.Command, cfg *config.Config, log *slog.Logger) (*bootstrap.Runtime, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	apiKey, _ := cmd.Flags().GetString(FlagAPIKey)

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	return bootstrap.Start(ctx, bootstrap.Options{
		Config:      cfg,
		Credentials: creds,
		APIKey:      apiKey,
		Logger:      log,
	})
}
