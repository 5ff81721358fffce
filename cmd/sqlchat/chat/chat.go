// Package chatcmder provides the chat command: an interactive conversation
// with the configured database.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/sqlchat/cmd/sqlchat/cmdutil"
	"github.com/papercomputeco/sqlchat/pkg/cliui"
	"github.com/papercomputeco/sqlchat/pkg/config"
	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

// Conversation is the part of a session the chat front ends drive.
type Conversation interface {
	Submit(ctx context.Context, question string) conversation.Turn
	Transcript() []conversation.Turn
}

type chatCommander struct {
	tui bool

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive conversation with your database.

Each question is translated into one SQL statement by the configured
completion provider, executed on the database, and answered with the
generated SQL and its results. Errors are answered too; the conversation
always continues.

Type /schema to print the current schema and /exit (or Ctrl+D) to quit.
Pass --tui for a full-screen interface.

Examples:
  sqlchat chat --host db.internal --user reporter --database shop
  sqlchat chat --driver sqlite --database ./shop.db --provider ollama
  sqlchat chat --tui`

const chatShortDesc string = "Interactive natural-language chat with a database"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := cmdutil.LoadConfig(cmd, config.SessionFlags)
			if err != nil {
				return err
			}

			cmder.logger = cmdutil.NewLogger(cmd, cmd.ErrOrStderr())

			rt, err := cmdutil.Start(cmd.Context(), cmd, cfg, cmder.logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			session := rt.NewSession()
			if cmder.tui {
				return runTUI(cmd.Context(), session, rt.Inspector().DescribeSchema)
			}
			return cmder.runREPL(cmd.Context(), session, rt.Inspector().DescribeSchema, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmdutil.AddSessionFlags(cmd)
	cmd.Flags().BoolVar(&cmder.tui, "tui", false, "Use the full-screen terminal interface")

	return cmd
}

// runREPL reads one question per line until EOF or /exit.
func (c *chatCommander) runREPL(ctx context.Context, session Conversation, describe func(context.Context) string, in io.Reader, out io.Writer) error {
	color := cliui.ColorEnabled(out)
	prompt := func(styled, plain string) string {
		if color {
			return styled
		}
		return plain
	}

	fmt.Fprintln(out)
	for _, turn := range session.Transcript() {
		fmt.Fprint(out, prompt(assistantPrompt, "assistant> "))
		cmdutil.PrintTurn(out, turn, color)
	}
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /schema shows the schema, /exit or Ctrl+D quits."))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, prompt(userPrompt, "you> "))
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(out)
			return nil
		case "/schema":
			fmt.Fprintf(out, "%s\n\n", describe(ctx))
			continue
		}

		var turn conversation.Turn
		if color {
			_ = cliui.Step(out, "Thinking", func() error {
				turn = session.Submit(ctx, input)
				return nil
			})
		} else {
			turn = session.Submit(ctx, input)
		}

		fmt.Fprint(out, prompt(assistantPrompt, "assistant> "))
		cmdutil.PrintTurn(out, turn, color)
		fmt.Fprintln(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}
