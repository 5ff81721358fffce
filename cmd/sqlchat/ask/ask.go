// Package askcmder provides the ask command: one question, one answer.
package askcmder

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sqlchat/cmd/sqlchat/cmdutil"
	"github.com/papercomputeco/sqlchat/pkg/cliui"
	"github.com/papercomputeco/sqlchat/pkg/config"
	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

type askCommander struct {
	jsonOut bool
}

// Answer is the --json output of the ask command.
type Answer struct {
	Question string            `json:"question"`
	Answer   conversation.Turn `json:"answer"`
}

const askLongDesc string = `Ask your database a single question.

The question is translated into one SQL statement, executed, and the
answer is printed. Translation and execution errors are printed as the
answer and do not change the exit status; only startup failures (missing
credentials, unreachable database) do.

Examples:
  sqlchat ask "How many users signed up this week?"
  sqlchat ask --json "Top 5 products by revenue" | jq .answer.payload`

const askShortDesc string = "Ask a single question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cmdutil.LoadConfig(cmd, config.SessionFlags)
			if err != nil {
				return err
			}

			log := cmdutil.NewLogger(cmd, cmd.ErrOrStderr())
			rt, err := cmdutil.Start(cmd.Context(), cmd, cfg, log)
			if err != nil {
				return err
			}
			defer rt.Close()

			return cmder.run(cmd.Context(), rt.NewSession(), strings.Join(args, " "), cmd.OutOrStdout())
		},
	}

	cmdutil.AddSessionFlags(cmd)
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the answer as JSON")

	return cmd
}

type submitter interface {
	Submit(ctx context.Context, question string) conversation.Turn
}

func (c *askCommander) run(ctx context.Context, session submitter, question string, out io.Writer) error {
	turn := session.Submit(ctx, question)

	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(Answer{Question: question, Answer: turn})
	}

	cmdutil.PrintTurn(out, turn, cliui.ColorEnabled(out))
	return nil
}
