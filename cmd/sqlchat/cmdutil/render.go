package cmdutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/sqlchat/pkg/cliui"
	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

const sqlPrefix = "Generated SQL: "

// PrintTurn writes an assistant turn and, when present, its result table.
// With color the generated SQL is highlighted; the text is otherwise
// printed exactly as stored in the transcript.
func PrintTurn(w io.Writer, turn conversation.Turn, color bool) {
	content := turn.Content
	if color && strings.HasPrefix(content, sqlPrefix) {
		sql, rest, _ := strings.Cut(strings.TrimPrefix(content, sqlPrefix), "\n\n")
		content = cliui.KeyStyle.Render(strings.TrimSpace(sqlPrefix)) + " " + cliui.SQLStyle.Render(sql)
		if rest != "" {
			content += "\n\n" + rest
		}
	}
	fmt.Fprintln(w, content)

	if turn.Payload != nil {
		fmt.Fprintln(w, cliui.RenderTable(turn.Payload.Columns, turn.Payload.Rows))
	}
}
