package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	svc     *core.Service
}

// userContext acts on behalf of the configured user.
func (h *toolHandler) userContext(ctx context.Context) context.Context {
	return core.WithUser(ctx, h.baseCfg.UserID)
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result failed: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetWeeklyReport(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.svc.Report(h.userContext(ctx))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}
	return jsonResult(report), nil
}

func (h *toolHandler) handleSyncNow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := schema.SyncScope(request.GetString("scope", string(schema.ScopeAll)))
	snap, err := h.svc.Sync(h.userContext(ctx), scope)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
	}
	return jsonResult(snap), nil
}

func (h *toolHandler) handleGetHeatmap(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.svc.Report(h.userContext(ctx))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("heatmap failed: %v", err)), nil
	}
	if !report.HasCommits {
		return mcp.NewToolResultError("heatmap failed: no commit activity synced yet"), nil
	}
	return jsonResult(map[string]any{
		"peak_day":       report.PeakDay,
		"peak_hour":      report.PeakHour,
		"peak_label":     report.PeakLabel,
		"total_commits":  report.TotalCommits,
		"commit_heatmap": report.CommitHeatmap,
	}), nil
}

func (h *toolHandler) handleGetSettings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := h.svc.Settings(h.userContext(ctx))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("settings failed: %v", err)), nil
	}
	return jsonResult(settings), nil
}

func (h *toolHandler) handleUpdateSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var update schema.SettingsUpdate
	if _, ok := args["target_deep_hours"]; ok {
		hours := request.GetFloat("target_deep_hours", 0)
		update.TargetDeepHours = &hours
	}
	if _, ok := args["timezone"]; ok {
		tz := request.GetString("timezone", "")
		update.Timezone = &tz
	}
	if _, ok := args["email_reports"]; ok {
		email := request.GetBool("email_reports", false)
		update.EmailReports = &email
	}

	settings, err := h.svc.UpdateSettings(h.userContext(ctx), update)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid settings: %v", err)), nil
	}
	return jsonResult(settings), nil
}

func (h *toolHandler) handleGetDemoData(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(core.DemoData()), nil
}
