// Package schemacmder provides the schema command, which prints the schema
// description sqlchat embeds in every prompt.
package schemacmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sqlchat/cmd/sqlchat/cmdutil"
	"github.com/papercomputeco/sqlchat/pkg/bootstrap"
	"github.com/papercomputeco/sqlchat/pkg/cliui"
	"github.com/papercomputeco/sqlchat/pkg/config"
	"github.com/papercomputeco/sqlchat/pkg/database"
	"github.com/papercomputeco/sqlchat/pkg/schema"
)

type schemaCommander struct {
	jsonOut  bool
	markdown bool
}

const schemaLongDesc string = `Print the database schema exactly as it is sent to the completion provider.

With --markdown the tables are rendered as a formatted list instead; with
--json the structured description is printed.

Only database settings are needed; no completion provider is contacted.

Examples:
  sqlchat schema
  sqlchat schema --driver postgres --host localhost --database shop --markdown`

const schemaShortDesc string = "Print the database schema description"

func NewSchemaCmd() *cobra.Command {
	cmder := &schemaCommander{}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: schemaShortDesc,
		Long:  schemaLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := cmdutil.LoadConfig(cmd, config.SessionFlags)
			if err != nil {
				return err
			}

			log := cmdutil.NewLogger(cmd, cmd.ErrOrStderr())
			conn, err := database.Open(cmd.Context(), bootstrap.DatabaseOptions(cfg), log)
			if err != nil {
				return err
			}
			defer conn.Close()

			return cmder.run(cmd.Context(), schema.NewInspector(conn, log), cmd.OutOrStdout())
		},
	}

	config.AddFlags(cmd, config.SessionFlags)
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the structured description as JSON")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render the tables as formatted markdown")

	return cmd
}

type describer interface {
	Describe(ctx context.Context) (schema.Description, error)
	DescribeSchema(ctx context.Context) string
}

func (c *schemaCommander) run(ctx context.Context, inspector describer, out io.Writer) error {
	switch {
	case c.jsonOut:
		desc, err := inspector.Describe(ctx)
		if err != nil {
			return err
		}
		if desc == nil {
			desc = schema.Description{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)

	case c.markdown:
		desc, err := inspector.Describe(ctx)
		if err != nil {
			return err
		}
		rendered, err := cliui.RenderMarkdown(Markdown(desc))
		if err != nil {
			return fmt.Errorf("rendering schema: %w", err)
		}
		fmt.Fprint(out, rendered)
		return nil

	default:
		fmt.Fprintln(out, inspector.DescribeSchema(ctx))
		return nil
	}
}

// Markdown renders desc as a heading and one bullet per table.
func Markdown(desc schema.Description) string {
	var b strings.Builder
	b.WriteString("# Schema\n\n")
	if len(desc) == 0 {
		b.WriteString("_No tables._\n")
		return b.String()
	}
	for _, t := range desc {
		fmt.Fprintf(&b, "- **%s**: `%s`\n", t.Name, strings.Join(t.Columns, "`, `"))
	}
	return b.String()
}
