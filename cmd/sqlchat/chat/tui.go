package chatcmder

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/sqlchat/pkg/cliui"
	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

var (
	chatTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	chatUserStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	chatAsstStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
)

type chatKeyMap struct {
	Send   key.Binding
	Schema key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

func defaultChatKeyMap() chatKeyMap {
	return chatKeyMap{
		Send:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),
		Schema: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "schema")),
		Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Schema, k.Scroll, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type answerMsg struct {
	turn conversation.Turn
}

type schemaMsg struct {
	text string
}

type chatModel struct {
	ctx      context.Context
	session  Conversation
	describe func(context.Context) string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	keys     chatKeyMap
	help     help.Model

	pending string
	schema  string
	busy    bool
	width   int
	height  int
}

func runTUI(ctx context.Context, session Conversation, describe func(context.Context) string) error {
	program := bubbletea.NewProgram(newChatModel(ctx, session, describe),
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

func newChatModel(ctx context.Context, session Conversation, describe func(context.Context) string) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask a question about your data"
	input.Prompt = "you> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := chatModel{
		ctx:      ctx,
		session:  session,
		describe: describe,
		input:    input,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		keys:     defaultChatKeyMap(),
		help:     help.New(),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

func (m chatModel) Init() bubbletea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 1)
		m.input.Width = max(msg.Width-8, 10)
		m.refresh()
		return m, nil
	case answerMsg:
		m.busy = false
		m.pending = ""
		m.refresh()
		return m, nil
	case schemaMsg:
		m.schema = msg.text
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m chatModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, bubbletea.Quit
	case key.Matches(msg, m.keys.Scroll):
		var cmd bubbletea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.Schema):
		return m, describeCmd(m.ctx, m.describe)
	case key.Matches(msg, m.keys.Send):
		question := strings.TrimSpace(m.input.Value())
		if m.busy || question == "" {
			return m, nil
		}
		if question == "/exit" {
			return m, bubbletea.Quit
		}
		m.input.Reset()
		m.busy = true
		m.pending = question
		m.refresh()
		return m, bubbletea.Batch(askCmd(m.ctx, m.session, question), m.spinner.Tick)
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func askCmd(ctx context.Context, session Conversation, question string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		return answerMsg{turn: session.Submit(ctx, question)}
	}
}

func describeCmd(ctx context.Context, describe func(context.Context) string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		return schemaMsg{text: describe(ctx)}
	}
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *chatModel) refresh() {
	var b strings.Builder
	if m.schema != "" {
		b.WriteString(cliui.DimStyle.Render(m.schema))
		b.WriteString("\n\n")
	}
	for _, turn := range m.session.Transcript() {
		b.WriteString(renderTurn(turn))
		b.WriteString("\n")
	}
	if m.pending != "" && !m.transcriptEndsWith(m.pending) {
		b.WriteString(renderTurn(conversation.UserTurn(m.pending)))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *chatModel) transcriptEndsWith(question string) bool {
	turns := m.session.Transcript()
	if len(turns) == 0 {
		return false
	}
	last := turns[len(turns)-1]
	return last.Role == conversation.RoleUser && last.Content == question
}

func renderTurn(turn conversation.Turn) string {
	if turn.Role == conversation.RoleUser {
		return chatUserStyle.Render("you> ") + turn.Content + "\n"
	}

	out := chatAsstStyle.Render("assistant> ") + turn.Content + "\n"
	if turn.Payload != nil {
		out += cliui.RenderTable(turn.Payload.Columns, turn.Payload.Rows) + "\n"
	}
	return out
}

func (m chatModel) View() string {
	status := ""
	if m.busy {
		status = m.spinner.View() + " " + cliui.DimStyle.Render("translating and running...")
	}

	return strings.Join([]string{
		chatTitleStyle.Render("sqlchat"),
		m.viewport.View(),
		status,
		m.input.View(),
		m.help.View(m.keys),
	}, "\n")
}
