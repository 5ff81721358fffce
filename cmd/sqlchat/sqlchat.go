// Package sqlchatcmder is the sqlchat root command.
package sqlchatcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/ask"
	authcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/auth"
	chatcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/chat"
	configcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/config"
	initcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/init"
	schemacmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/schema"
	servecmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/serve"
	versioncmder "github.com/papercomputeco/sqlchat/cmd/version"
)

const sqlchatLongDesc string = `sqlchat answers questions about a relational database in plain language.

Each question is translated into a single SQL statement by a language model
using the live schema of the database, executed, and the result is added to
a running conversation.

Get started:
  sqlchat init --preset postgres   Create a local .sqlchat/ config
  sqlchat auth openai              Store an API key
  sqlchat chat                     Start a conversation
  sqlchat ask "how many users?"    Ask a single question
  sqlchat serve                    Run the HTTP API and MCP server`

const sqlchatShortDesc string = "sqlchat - Ask your database questions"

func NewSqlchatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sqlchat",
		Short:        sqlchatShortDesc,
		Long:         sqlchatLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .sqlchat/ config directory")

	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(schemacmder.NewSchemaCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
