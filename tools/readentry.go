package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jarlens/jarlens-mcp/source"
)

// ReadEntryArgs defines the input parameters for the read_jar_entry tool.
type ReadEntryArgs struct {
	ArchivePath string `json:"archivePath" jsonschema:"Path to the jar/zip archive on disk"`
	EntryPath   string `json:"entryPath" jsonschema:"Archive-internal entry path (e.g. com/example/Foo.class)"`
}

// ReadEntryHandler holds the dependencies for the read_jar_entry tool.
type ReadEntryHandler struct {
	Reader *source.Reader
	Logger *slog.Logger
}

// Handle processes a read_jar_entry request.
func (h *ReadEntryHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReadEntryArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.ArchivePath == "" || args.EntryPath == "" {
		h.Logger.Warn("read_jar_entry called with missing parameters")
		return errorResult("Error: archivePath and entryPath parameters are required"), nil, nil
	}

	result, err := h.Reader.ReadEntry(ctx, args.ArchivePath, args.EntryPath)
	if err != nil {
		h.Logger.Error("read_jar_entry failed",
			"archive", args.ArchivePath,
			"entry", args.EntryPath,
			"error", err,
		)
		return errorResult(fmt.Sprintf("Read error: %v", err)), nil, nil
	}

	h.Logger.Info("read_jar_entry",
		"archive", args.ArchivePath,
		"entry", result.EntryPath,
		"tier", result.Tier,
		"elapsed", time.Since(start),
	)

	return textResult(FormatReadResult(result)), nil, nil
}
