// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cohortpulse/cohortpulse/core"
	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

// NewMCPServer initializes and configures the CohortPulse MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.TabularStore, score schema.ScoreConfig) *server.MCPServer {
	s := server.NewMCPServer(
		"CohortPulse Activity Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
		score:   score,
	}

	// --- 1. Tool: get_leaderboard ---
	s.AddTool(mcp.NewTool("get_leaderboard",
		mcp.WithDescription("Get the stored all-time leaderboard of learner activity and scores."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetLeaderboard)

	// --- 2. Tool: get_period_leaderboard ---
	s.AddTool(mcp.NewTool("get_period_leaderboard",
		mcp.WithDescription("Aggregate a leaderboard for a date range from the activity ledger."),
		mcp.WithString("start_date", mcp.Description("Inclusive range start in YYYY-MM-DD form."), mcp.Required()),
		mcp.WithString("end_date", mcp.Description("Inclusive range end in YYYY-MM-DD form."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetPeriodLeaderboard)

	// --- 3. Tool: get_alerts ---
	s.AddTool(mcp.NewTool("get_alerts",
		mcp.WithDescription("Evaluate inactivity, at-risk, and declining alerts for all learners."),
	), h.handleGetAlerts)

	return s
}

// StartMCPServer opens the configured store and serves the CohortPulse MCP
// server over stdio.
func StartMCPServer(ctx context.Context, baseCfg *contract.Config) error {
	store, err := core.OpenStore(ctx, baseCfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	raw, err := store.ReadConfig(ctx)
	if err != nil {
		return err
	}
	score := schema.ParseScoreConfig(raw)

	s := NewMCPServer(baseCfg, store, score)
	return server.ServeStdio(s)
}
