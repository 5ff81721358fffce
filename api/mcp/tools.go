package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/sqlchat/pkg/conversation"
	"github.com/papercomputeco/sqlchat/pkg/schema"
)

var (
	askToolName    = "ask_database"
	askDescription = "Ask the connected relational database a question in natural language. The question is translated into one SQL statement, executed, and the generated SQL plus any result rows are returned. Pass session_id from a previous answer to continue that conversation."

	describeSchemaToolName    = "describe_schema"
	describeSchemaDescription = "Describe the connected database: every table and its columns, in the order the database reports them."
)

// AskInput represents the input arguments for the ask_database tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the natural language question about the data"`
	SessionID string `json:"session_id,omitempty" jsonschema:"an existing session to continue (default: a new session)"`
}

// AskOutput represents the output of the ask_database tool.
type AskOutput struct {
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Columns   []string `json:"columns,omitempty"`
	Rows      [][]any  `json:"rows,omitempty"`
}

// DescribeSchemaInput takes no arguments.
type DescribeSchemaInput struct{}

// DescribeSchemaOutput represents the output of the describe_schema tool.
type DescribeSchemaOutput struct {
	Schema string         `json:"schema"`
	Tables []schema.Table `json:"tables"`
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// jsonResult serializes structured output into a TextContent block as well.
func jsonResult(output any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}

// handleAsk runs one question through a session. Translation and execution
// failures are answers, not tool errors.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return errorResult("question is required"), AskOutput{}, nil
	}

	var session *conversation.Session
	if input.SessionID != "" {
		var ok bool
		session, ok = s.config.Sessions.Get(input.SessionID)
		if !ok {
			return errorResult("unknown session %q", input.SessionID), AskOutput{}, nil
		}
	} else {
		session = s.config.Sessions.Create()
	}

	s.config.Logger.Debug("MCP ask request", "session", session.ID(), "question", input.Question)

	turn := session.Submit(ctx, input.Question)

	output := AskOutput{
		SessionID: session.ID(),
		Answer:    turn.Content,
	}
	if turn.Payload != nil {
		output.Columns = turn.Payload.Columns
		output.Rows = turn.Payload.Rows
	}

	result, err := jsonResult(output)
	if err != nil {
		s.config.Logger.Error("failed to marshal ask output", "error", err)
		return errorResult("Failed to serialize results: %v", err), AskOutput{}, nil
	}
	return result, output, nil
}

func (s *Server) handleDescribeSchema(ctx context.Context, _ *mcp.CallToolRequest, _ DescribeSchemaInput) (*mcp.CallToolResult, DescribeSchemaOutput, error) {
	desc, err := s.config.Schema.Describe(ctx)
	if err != nil {
		s.config.Logger.Warn("schema inspection failed", "error", err)
		return errorResult("Schema inspection failed: %v", err), DescribeSchemaOutput{}, nil
	}

	tables := []schema.Table(desc)
	if tables == nil {
		tables = []schema.Table{}
	}
	output := DescribeSchemaOutput{
		Schema: desc.String(),
		Tables: tables,
	}

	result, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize results: %v", err), DescribeSchemaOutput{}, nil
	}
	return result, output, nil
}
