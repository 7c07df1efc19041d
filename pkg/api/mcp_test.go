package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func testMCPServer(t *testing.T) *server.MCPServer {
	t.Helper()
	srv := NewMCPServer(testRegistry(t), "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	rpc(t, srv, 0, "initialize", map[string]any{
		"protocolVersion": "2025-03-26",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1"},
	})
	return srv
}

func rpc(t *testing.T, srv *server.MCPServer, id int, method string, params any) json.RawMessage {
	t.Helper()
	msg, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": id, "method": method, "params": params})
	require.NoError(t, err)

	data, err := json.Marshal(srv.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	if resp.Error != nil {
		t.Fatalf("%s: %s", method, resp.Error.Message)
	}
	return resp.Result
}

func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) toolResult {
	t.Helper()
	var res toolResult
	raw := rpc(t, srv, 1, "tools/call", map[string]any{"name": name, "arguments": args})
	require.NoError(t, json.Unmarshal(raw, &res))
	require.NotEmpty(t, res.Content, name)
	return res
}

func TestMCP_ListTools(t *testing.T) {
	srv := testMCPServer(t)

	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rpc(t, srv, 1, "tools/list", map[string]any{}), &list))

	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"list_years", "list_parties", "list_districts", "get_votes", "get_metrics", "get_parameters",
	}, names)
}

func TestMCP_ListYears(t *testing.T) {
	res := callTool(t, testMCPServer(t), "list_years", nil)
	require.False(t, res.IsError)
	require.JSONEq(t, "[2017,2013,1977]", res.Content[0].Text)
}

func TestMCP_GetVotes(t *testing.T) {
	srv := testMCPServer(t)

	res := callTool(t, srv, "get_votes", map[string]any{"year": 2017, "party_code": "H"})
	var votes []election.PartyVote
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &votes))
	require.Len(t, votes, 1)
	require.Equal(t, "Oslo", votes[0].District)

	res = callTool(t, srv, "get_votes", map[string]any{"year": 2016, "previous": 2, "party_code": "A"})
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &votes))
	require.Len(t, votes, 2)
}

func TestMCP_GetParameters(t *testing.T) {
	res := callTool(t, testMCPServer(t), "get_parameters", map[string]any{"year": "1977"})
	var params []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &params))
	require.Len(t, params, 1)
	require.Equal(t, float64(155), params[0]["districtSeats"])
}

func TestMCP_InvalidArguments(t *testing.T) {
	srv := testMCPServer(t)

	res := callTool(t, srv, "get_metrics", map[string]any{"year": 2017.5})
	require.True(t, res.IsError)
	require.Contains(t, res.Content[0].Text, "year")

	res = callTool(t, srv, "get_votes", map[string]any{"previous": -1})
	require.True(t, res.IsError)
	require.Contains(t, res.Content[0].Text, "number")
}

func TestOptionalIntArg(t *testing.T) {
	for _, tc := range []struct {
		in     any
		want   int
		ok     bool
		failed bool
	}{
		{in: nil},
		{in: float64(3), want: 3, ok: true},
		{in: "2017", want: 2017, ok: true},
		{in: " ", ok: false},
		{in: "x", failed: true},
		{in: 1.5, failed: true},
		{in: true, failed: true},
	} {
		n, ok, err := optionalIntArg(map[string]any{"k": tc.in}, "k")
		name := fmt.Sprintf("%v", tc.in)
		if tc.failed {
			require.Error(t, err, name)
			continue
		}
		require.NoError(t, err, name)
		require.Equal(t, tc.ok, ok, name)
		require.Equal(t, tc.want, n, name)
	}
}
