// Package configcmder provides the config command for managing persistent
// sqlchat configuration stored in the .sqlchat/ directory.
package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sqlchat/pkg/cliui"
	"github.com/papercomputeco/sqlchat/pkg/config"
)

const configLongDesc string = `Manage persistent sqlchat configuration.

Configuration is stored as config.toml in the .sqlchat/ directory and provides
default values for command flags. CLI flags and SQLCHAT_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  database.driver, database.host, database.port, database.user,
  database.password, database.name, database.dsn,
  llm.provider, llm.model, llm.base_url,
  server.listen, server.mcp,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  sqlchat config set <key> <value>    Set a configuration value
  sqlchat config get <key>            Get a configuration value
  sqlchat config list                 List all configuration values

Examples:
  sqlchat config set database.driver postgres
  sqlchat config set llm.model gpt-4o
  sqlchat config get llm.provider
  sqlchat config list`

const configShortDesc string = "Manage persistent sqlchat configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func printTarget(out io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(out, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}

// displayValue masks secret values; only whether they are set is shown.
func displayValue(key, value string) string {
	if value != "" && config.IsSecretKey(key) {
		return "********"
	}
	return value
}
