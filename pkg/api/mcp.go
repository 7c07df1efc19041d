package api

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/hazyhaar/lavinia/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer returns an MCP server exposing the election query tools.
func NewMCPServer(reg *election.Registry, version string, logger *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer("lavinia", version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, reg, logger)
	return srv
}

// RegisterMCPTools registers the election MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, reg *election.Registry, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e := newEndpoints(reg, logger)
	registerListYears(srv, e)
	registerListParties(srv, e)
	registerListDistricts(srv, e)
	registerGetVotes(srv, e)
	registerGetMetrics(srv, e)
	registerGetParameters(srv, e)
}

func registerListYears(srv *server.MCPServer, e *endpoints) {
	tool := mcp.NewTool("list_years",
		mcp.WithDescription("List every election year with results, most recent first."),
	)
	kit.RegisterMCPTool(srv, tool, e.years, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func registerListParties(srv *server.MCPServer, e *endpoints) {
	tool := mcp.NewTool("list_parties",
		mcp.WithDescription("Map every party code to its party name."),
	)
	kit.RegisterMCPTool(srv, tool, e.parties, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func registerListDistricts(srv *server.MCPServer, e *endpoints) {
	tool := mcp.NewTool("list_districts",
		mcp.WithDescription("List the electoral districts (counties) of an election year."),
		mcp.WithNumber("year", mcp.Description("Election year; omit for every year")),
	)
	kit.RegisterMCPTool(srv, tool, e.districts, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		year, err := intArg(req.GetArguments(), "year", 0)
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &districtsReq{Year: year}}, nil
	})
}

func registerGetVotes(srv *server.MCPServer, e *endpoints) {
	tool := mcp.NewTool("get_votes",
		mcp.WithDescription("Votes per party and district. With previous set, returns the last N elections up to year."),
		mcp.WithNumber("year", mcp.Description("Election year; omit for every year")),
		mcp.WithString("party_code", mcp.Description("Party code filter (e.g. A, H, SP); ALL for every party")),
		mcp.WithString("district", mcp.Description("District name filter; ALL for every district")),
		mcp.WithNumber("previous", mcp.Description("Number of elections up to year to include")),
	)
	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, request any) (any, error) {
		if p, ok := request.(*previousReq); ok {
			return e.previousVotes(ctx, p)
		}
		return e.votes(ctx, request)
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		year, err := intArg(args, "year", 0)
		if err != nil {
			return nil, err
		}
		party := stringArg(args, "party_code", election.All)
		district := stringArg(args, "district", election.All)
		if n, ok, err := optionalIntArg(args, "previous"); err != nil {
			return nil, err
		} else if ok {
			return &kit.MCPDecodeResult{Request: &previousReq{Year: year, Number: n, Party: party, District: district}}, nil
		}
		return &kit.MCPDecodeResult{Request: &votesReq{Year: year, Party: party, District: district}}, nil
	})
}

func registerGetMetrics(srv *server.MCPServer, e *endpoints) {
	tool := mcp.NewTool("get_metrics",
		mcp.WithDescription("District metrics: area, population and predetermined seats."),
		mcp.WithNumber("year", mcp.Description("Election year; omit for every year")),
		mcp.WithString("district", mcp.Description("District name filter; ALL for every district")),
		mcp.WithNumber("previous", mcp.Description("Number of elections up to year to include")),
	)
	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, request any) (any, error) {
		if p, ok := request.(*previousReq); ok {
			return e.previousMetrics(ctx, p)
		}
		return e.metrics(ctx, request)
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		year, err := intArg(args, "year", 0)
		if err != nil {
			return nil, err
		}
		district := stringArg(args, "district", election.All)
		if n, ok, err := optionalIntArg(args, "previous"); err != nil {
			return nil, err
		} else if ok {
			return &kit.MCPDecodeResult{Request: &previousReq{Year: year, Number: n, District: district}}, nil
		}
		return &kit.MCPDecodeResult{Request: &metricsReq{Year: year, District: district}}, nil
	})
}

func registerGetParameters(srv *server.MCPServer, e *endpoints) {
	tool := mcp.NewTool("get_parameters",
		mcp.WithDescription("Seat allocation parameters per election: algorithm, threshold, area factor, seats and total votes."),
		mcp.WithNumber("year", mcp.Description("Election year; omit for every year")),
		mcp.WithNumber("previous", mcp.Description("Number of elections up to year to include")),
	)
	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, request any) (any, error) {
		if p, ok := request.(*previousReq); ok {
			return e.previousParamsV3(ctx, p)
		}
		return e.parametersV3(ctx, request)
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		year, err := intArg(args, "year", 0)
		if err != nil {
			return nil, err
		}
		if n, ok, err := optionalIntArg(args, "previous"); err != nil {
			return nil, err
		} else if ok {
			return &kit.MCPDecodeResult{Request: &previousReq{Year: year, Number: n}}, nil
		}
		return &kit.MCPDecodeResult{Request: &parametersReq{Year: year}}, nil
	})
}

func stringArg(args map[string]any, key, def string) string {
	if v, _ := args[key].(string); strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func intArg(args map[string]any, key string, def int) (int, error) {
	n, ok, err := optionalIntArg(args, key)
	if err != nil || !ok {
		return def, err
	}
	return n, nil
}

// optionalIntArg accepts JSON numbers and numeric strings.
func optionalIntArg(args map[string]any, key string) (int, bool, error) {
	switch v := args[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if v != float64(int(v)) {
			return 0, false, fmt.Errorf("%s must be an integer", key)
		}
		return int(v), true, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false, fmt.Errorf("%s must be an integer", key)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be an integer", key)
	}
}
