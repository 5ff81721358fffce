// Package translate turns a natural-language question into one SQL statement
// by asking a completion provider with a fixed prompt.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/papercomputeco/sqlchat/pkg/database"
	"github.com/papercomputeco/sqlchat/pkg/errkind"
	"github.com/papercomputeco/sqlchat/pkg/llm"
	"github.com/papercomputeco/sqlchat/pkg/llm/provider"
)

const promptTemplate = `You are an expert in %s SQL. Convert the following natural language question into a valid SQL query. The database schema is:
%s

Question: %s

Return ONLY one SQL query, with no extra text or explanation.`

// Translator asks a provider for the SQL answering a question.
type Translator struct {
	provider provider.Provider
	model    string
	dialect  database.Dialect
	logger   *slog.Logger
}

func NewTranslator(p provider.Provider, model string, dialect database.Dialect, logger *slog.Logger) *Translator {
	return &Translator{
		provider: p,
		model:    model,
		dialect:  dialect,
		logger:   logger,
	}
}

// Model returns the completion model the translator asks.
func (t *Translator) Model() string {
	return t.model
}

// Translate sends one single-turn, temperature 0 completion request and
// returns the cleaned answer. Provider errors are TranslationFailure.
func (t *Translator) Translate(ctx context.Context, schema, question string) (string, error) {
	req := &llm.ChatRequest{
		Model:       t.model,
		Messages:    []llm.Message{llm.NewTextMessage(llm.RoleUser, BuildPrompt(t.dialect, schema, question))},
		Temperature: llm.Float64(0),
	}

	resp, err := t.provider.Complete(ctx, req)
	if err != nil {
		t.logger.Warn("translation failed", "provider", t.provider.Name(), "model", t.model, "error", err)
		return "", errkind.Wrap(errkind.TranslationFailure, "requesting completion", err)
	}

	sql := CleanSQL(resp.Message.GetText())
	t.logger.Debug("question translated", "provider", t.provider.Name(), "model", t.model, "sql", sql)

	return sql, nil
}

// BuildPrompt embeds schema and question verbatim in the prompt template for dialect.
func BuildPrompt(dialect database.Dialect, schema, question string) string {
	return fmt.Sprintf(promptTemplate, dialect.DisplayName(), schema, question)
}

// CleanSQL trims whitespace and backtick characters from both ends of a
// completion, in any interleaving. It does not parse code fences: a language
// tag after an opening fence is kept.
func CleanSQL(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '`' || unicode.IsSpace(r)
	})
}
