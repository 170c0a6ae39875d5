package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/deadreck/core"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// runOutput is a run result with the final estimated position spelled out.
type runOutput struct {
	schema.RunResult
	FinalPosition schema.Vec3 `json:"final_position"`
}

func newRunOutput(r schema.RunResult) runOutput {
	out := runOutput{RunResult: r}
	if posi, ok := r.Stage(schema.PosiNoGStage); ok {
		out.FinalPosition = posi.Final()
	}
	return out
}

func (h *toolHandler) handleRunDeadReckoning(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Sink = schema.NoSink // Plots would land in the server's working directory
	err := contract.RevalidateRun(cfg,
		request.GetString("path", ""),
		request.GetString("strategy", ""),
		request.GetFloat("trim_seconds", 0),
		request.GetFloat("gravity", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run parameters: %v", err)), nil
	}

	results, err := core.RunLogs(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(newRunOutput(results[0]), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCompareStrategies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateRun(cfg,
		request.GetString("path", ""),
		"",
		request.GetFloat("trim_seconds", 0),
		0,
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid comparison parameters: %v", err)), nil
	}

	comparison, err := core.CompareStrategies(core.WithSuppressHeader(ctx), cfg, h.mgr, cfg.Inputs[0])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	output := struct {
		Source  string                               `json:"source"`
		Best    schema.GravityStrategy               `json:"best,omitempty"`
		Results map[schema.GravityStrategy]runOutput `json:"results"`
	}{Source: comparison.Source, Best: comparison.Best, Results: make(map[schema.GravityStrategy]runOutput)}
	for strategy, r := range comparison.Results {
		output.Results[strategy] = newRunOutput(r)
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
