// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the deadreck MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Dead Reckoning Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: run_dead_reckoning ---
	s.AddTool(mcp.NewTool("run_dead_reckoning",
		mcp.WithDescription("Estimate a trajectory from a sensor log by removing gravity and integrating acceleration twice."),
		mcp.WithString("path", mcp.Description("Path to the sensor log file."), mcp.Required()),
		mcp.WithString("strategy", mcp.Description("Gravity compensation strategy. Defaults to 'rotation'."), mcp.Enum("mean", "rotation")),
		mcp.WithNumber("trim_seconds", mcp.Description("Drop samples recorded before this log time, in seconds.")),
		mcp.WithNumber("gravity", mcp.Description("Gravity magnitude in m/s². Defaults to 9.8.")),
	), h.handleRunDeadReckoning)

	// --- 2. Tool: compare_strategies ---
	s.AddTool(mcp.NewTool("compare_strategies",
		mcp.WithDescription("Run every gravity compensation strategy over one sensor log and compare their drift."),
		mcp.WithString("path", mcp.Description("Path to the sensor log file."), mcp.Required()),
		mcp.WithNumber("trim_seconds", mcp.Description("Drop samples recorded before this log time, in seconds.")),
	), h.handleCompareStrategies)

	return s
}

// StartMCPServer starts the deadreck MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
