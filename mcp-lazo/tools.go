package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	lazo "github.com/KajizukaTaichi/lazo/core"
	"github.com/KajizukaTaichi/lazo/session"
)

// tools backs every MCP tool with one shared session. out is the session
// host's output and is only touched on the actor goroutine.
type tools struct {
	actor *session.Actor
	out   *bytes.Buffer
}

// formatResult turns a value into an MCP tool result.
func formatResult(value any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (t *tools) handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var results []session.Result
	var evalErr error
	var output string
	err = t.actor.Do(ctx, func(s *session.Session) {
		results, evalErr = s.Eval(expr)
		output = t.out.String()
		t.out.Reset()
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if evalErr != nil {
		msg := evalErr.Error()
		if output != "" {
			msg = output + "\n" + msg
		}
		return mcp.NewToolResultError(msg), nil
	}

	values := make([]string, len(results))
	for i, r := range results {
		values[i] = r.Value.String()
	}
	return formatResult(map[string]any{"values": values, "output": output})
}

func (t *tools) handleDefine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var val lazo.Value
	var defErr error
	var output string
	err = t.actor.Do(ctx, func(s *session.Session) {
		val, defErr = s.Define(name, expr)
		output = t.out.String()
		t.out.Reset()
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if defErr != nil {
		return mcp.NewToolResultError(defErr.Error()), nil
	}
	return formatResult(map[string]any{"name": name, "value": val.String(), "output": output})
}

func (t *tools) handleSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var symbols []map[string]any
	err := t.actor.Do(ctx, func(s *session.Session) {
		for _, name := range s.Symbols() {
			v, _ := s.Lookup(name)
			symbols = append(symbols, map[string]any{"name": name, "value": v.String()})
		}
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if symbols == nil {
		symbols = []map[string]any{}
	}
	return formatResult(symbols)
}

func (t *tools) handleTraces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 0)
	traces, err := t.actor.Traces(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]map[string]any, len(traces))
	for i, tr := range traces {
		out[i] = tr.ToMap()
	}
	return formatResult(out)
}

func (t *tools) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := t.actor.Do(ctx, func(s *session.Session) {
		s.Reset()
		t.out.Reset()
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("session reset"), nil
}

// register adds every lazo tool to s.
func (t *tools) register(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("lazo_eval",
			mcp.WithDescription("Evaluate Lazo source in the persistent session. Returns the value of each top-level form and anything printed."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Lazo source, e.g. (+ 1 2 3) or several forms"),
			),
		),
		t.handleEval,
	)

	s.AddTool(
		mcp.NewTool("lazo_define",
			mcp.WithDescription("Evaluate one expression and bind its value to a name in the session."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Symbol name to define"),
			),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Expression for the symbol's value, e.g. (lambda (n) (* n n))"),
			),
		),
		t.handleDefine,
	)

	s.AddTool(
		mcp.NewTool("lazo_symbols",
			mcp.WithDescription("List the names defined in the session with their values."),
		),
		t.handleSymbols,
	)

	s.AddTool(
		mcp.NewTool("lazo_traces",
			mcp.WithDescription("Recent evaluations, oldest first, with their results or errors."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of traces to return; all when omitted"),
			),
		),
		t.handleTraces,
	)

	s.AddTool(
		mcp.NewTool("lazo_reset",
			mcp.WithDescription("Drop every definition and all traces."),
		),
		t.handleReset,
	)
}
