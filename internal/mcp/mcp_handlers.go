package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cohortpulse/cohortpulse/core"
	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/internal/ledger"
	"github.com/cohortpulse/cohortpulse/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.TabularStore
	score   schema.ScoreConfig
}

func (h *toolHandler) handleGetLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grid, err := h.store.ReadAll(ctx, schema.TabLeaderboard)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("leaderboard read failed: %v", err)), nil
	}
	entries, err := core.ParseLeaderboard(grid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("leaderboard parse failed: %v", err)), nil
	}

	if l := request.GetInt("limit", 0); l > 0 && l < len(entries) {
		entries = entries[:l]
	}

	jsonData, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetPeriodLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := request.GetString("start_date", "")
	end := request.GetString("end_date", "")
	if _, err := time.Parse(schema.DateFormat, start); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start_date %q: expected YYYY-MM-DD", start)), nil
	}
	if _, err := time.Parse(schema.DateFormat, end); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end_date %q: expected YYYY-MM-DD", end)), nil
	}
	if end < start {
		return mcp.NewToolResultError(fmt.Sprintf("end_date %s precedes start_date %s", end, start)), nil
	}

	rows, err := ledger.ReadRange(ctx, h.store, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ledger read failed: %v", err)), nil
	}

	entries := core.AggregatePeriod(rows, h.score, start, end)
	if l := request.GetInt("limit", 0); l > 0 && l < len(entries) {
		entries = entries[:l]
	}

	jsonData, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetAlerts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grid, err := h.store.ReadAll(ctx, schema.TabLeaderboard)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("leaderboard read failed: %v", err)), nil
	}
	entries, err := core.ParseLeaderboard(grid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("leaderboard parse failed: %v", err)), nil
	}
	rows, err := ledger.ReadAllRows(ctx, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ledger read failed: %v", err)), nil
	}

	alerts := core.EvaluateAlerts(entries, rows, h.score, time.Now().UTC())
	jsonData, _ := json.MarshalIndent(alerts, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
