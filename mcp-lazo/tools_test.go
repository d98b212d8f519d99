package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lazo "github.com/KajizukaTaichi/lazo/core"
	"github.com/KajizukaTaichi/lazo/session"
)

func newTestTools(t *testing.T) *tools {
	t.Helper()
	out := &bytes.Buffer{}
	host := lazo.NewHost(strings.NewReader(""), out, nil)
	a := session.NewActor(session.New(session.WithHost(host), session.WithMode(session.Stop)))
	t.Cleanup(a.Close)
	return &tools{actor: a, out: out}
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestEval(t *testing.T) {
	tl := newTestTools(t)
	res, err := tl.handleEval(context.Background(), call("lazo_eval", map[string]any{
		"expr": `(print "hi" new-line) (+ 1 2 3) [1 "a"]`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var got struct {
		Values []string `json:"values"`
		Output string   `json:"output"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, []string{"null", "6", `[1 "a"]`}, got.Values)
	assert.Equal(t, "hi\n", got.Output)
}

func TestEvalOutputIsDrainedPerCall(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()
	_, err := tl.handleEval(ctx, call("lazo_eval", map[string]any{"expr": `(print "first")`}))
	require.NoError(t, err)
	res, err := tl.handleEval(ctx, call("lazo_eval", map[string]any{"expr": `(print "second")`}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"output": "second"`)
	assert.NotContains(t, resultText(t, res), "first")
}

func TestEvalError(t *testing.T) {
	tl := newTestTools(t)
	res, err := tl.handleEval(context.Background(), call("lazo_eval", map[string]any{
		"expr": `(print "before") (undefined-fn 1)`,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "before")
	assert.Contains(t, text, "undefined-fn")
}

func TestEvalMissingExpr(t *testing.T) {
	tl := newTestTools(t)
	res, err := tl.handleEval(context.Background(), call("lazo_eval", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDefineAndSymbols(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()

	res, err := tl.handleDefine(ctx, call("lazo_define", map[string]any{
		"name": "sq",
		"expr": "(lambda (n) (* n n))",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	res, err = tl.handleEval(ctx, call("lazo_eval", map[string]any{"expr": "(sq 7)"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"49"`)

	res, err = tl.handleSymbols(ctx, call("lazo_symbols", nil))
	require.NoError(t, err)
	var symbols []map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &symbols))
	require.Len(t, symbols, 1)
	assert.Equal(t, "sq", symbols[0]["name"])
}

func TestDefineOutputIsDrained(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()

	res, err := tl.handleDefine(ctx, call("lazo_define", map[string]any{
		"name": "x",
		"expr": `(eval (print "side") 1)`,
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"output": "side"`)

	res, err = tl.handleEval(ctx, call("lazo_eval", map[string]any{"expr": "x"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"output": ""`)
	assert.NotContains(t, resultText(t, res), "side")
}

func TestDefineBadName(t *testing.T) {
	tl := newTestTools(t)
	res, err := tl.handleDefine(context.Background(), call("lazo_define", map[string]any{
		"name": "(oops",
		"expr": "1",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestTracesAndReset(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()
	for _, src := range []string{"(+ 1 1)", "(* 2 3)", "(- 9 1)"} {
		_, err := tl.handleEval(ctx, call("lazo_eval", map[string]any{"expr": src}))
		require.NoError(t, err)
	}

	res, err := tl.handleTraces(ctx, call("lazo_traces", map[string]any{"limit": 2}))
	require.NoError(t, err)
	var traces []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &traces))
	require.Len(t, traces, 2)
	assert.Equal(t, "(* 2 3)", traces[0]["entry"])
	assert.Equal(t, float64(8), traces[1]["result"])

	res, err = tl.handleReset(ctx, call("lazo_reset", nil))
	require.NoError(t, err)
	assert.Equal(t, "session reset", resultText(t, res))

	res, err = tl.handleTraces(ctx, call("lazo_traces", nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, res))
}

func TestClosedActor(t *testing.T) {
	tl := newTestTools(t)
	tl.actor.Close()
	res, err := tl.handleEval(context.Background(), call("lazo_eval", map[string]any{"expr": "1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), session.ErrClosed.Error())
}
