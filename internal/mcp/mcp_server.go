// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the flowstate MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, svc *core.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Flowstate Analytics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		svc:     svc,
	}

	// --- 1. Tool: get_weekly_report ---
	s.AddTool(mcp.NewTool("get_weekly_report",
		mcp.WithDescription("Get the weekly flow report: deep work, meeting load, fragmentation score, meeting debt, peak coding window and suggestions."),
	), h.handleGetWeeklyReport)

	// --- 2. Tool: sync_now ---
	s.AddTool(mcp.NewTool("sync_now",
		mcp.WithDescription("Refresh the stored snapshot from the calendar and git repositories."),
		mcp.WithString("scope", mcp.Description("Which sources to refresh. Defaults to 'all'."), mcp.Enum("all", "calendar", "commits")),
	), h.handleSyncNow)

	// --- 3. Tool: get_heatmap ---
	s.AddTool(mcp.NewTool("get_heatmap",
		mcp.WithDescription("Get the normalized 7x24 commit heatmap (row 0 is Sunday) with the peak coding window."),
	), h.handleGetHeatmap)

	// --- 4. Tool: get_settings ---
	s.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Get the deep work target, timezone and email preference of the user."),
	), h.handleGetSettings)

	// --- 5. Tool: update_settings ---
	s.AddTool(mcp.NewTool("update_settings",
		mcp.WithDescription("Update user settings. Omitted fields keep their current value."),
		mcp.WithNumber("target_deep_hours", mcp.Description("Daily deep work goal in hours (0 < hours <= 24).")),
		mcp.WithString("timezone", mcp.Description("IANA timezone used to bucket meetings and commits, e.g. 'America/Chicago'.")),
		mcp.WithBoolean("email_reports", mcp.Description("Whether weekly email reports are wanted.")),
	), h.handleUpdateSettings)

	// --- 6. Tool: get_demo_data ---
	s.AddTool(mcp.NewTool("get_demo_data",
		mcp.WithDescription("Get the fixed showcase report with weekly trends. Needs no synced data."),
	), h.handleGetDemoData)

	return s
}

// StartMCPServer starts the flowstate MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, svc *core.Service) error {
	s := NewMCPServer(baseCfg, svc)
	return server.ServeStdio(s)
}
