package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jarlens/jarlens-mcp/deps"
)

// ScanDepsArgs defines the input parameters for the scan_project_dependencies tool.
type ScanDepsArgs struct {
	ProjectPath       string   `json:"projectPath" jsonschema:"Path inside the project to scan; the build root is detected by walking upward"`
	ExcludeTransitive bool     `json:"excludeTransitive,omitempty" jsonschema:"If true only first-level dependencies are resolved"`
	Configurations    []string `json:"configurations,omitempty" jsonschema:"Restrict to these scope/configuration names (e.g. runtimeClasspath, compile)"`
	IncludeLogTail    bool     `json:"includeLogTail,omitempty" jsonschema:"If true include the tail of the build tool output"`
	Query             string   `json:"query,omitempty" jsonschema:"Case-insensitive substring filter on group:artifact or the artifact path"`
}

// ScanDepsHandler holds the dependencies for the scan tool.
type ScanDepsHandler struct {
	Scanner *deps.Scanner
	Logger  *slog.Logger
}

// Handle processes a scan_project_dependencies request.
func (h *ScanDepsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ScanDepsArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.ProjectPath == "" {
		h.Logger.Warn("scan_project_dependencies called with empty projectPath")
		return errorResult("Error: projectPath parameter is required"), nil, nil
	}

	result, err := h.Scanner.Scan(ctx, args.ProjectPath, deps.Options{
		ExcludeTransitive: args.ExcludeTransitive,
		Configurations:    args.Configurations,
		IncludeLogTail:    args.IncludeLogTail,
		Query:             args.Query,
	})
	if err != nil {
		h.Logger.Error("scan_project_dependencies failed", "path", args.ProjectPath, "error", err)
		return errorResult(fmt.Sprintf("Scan error: %v", err)), nil, nil
	}

	h.Logger.Info("scan_project_dependencies",
		"path", args.ProjectPath,
		"root", result.ProjectRoot,
		"kind", result.Kind,
		"dependencies", len(result.Dependencies),
		"cacheHit", result.CacheHit,
		"elapsed", time.Since(start),
	)

	return textResult(FormatScanResult(result)), nil, nil
}
