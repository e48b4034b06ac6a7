package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jarlens/jarlens-mcp/archive"
)

// ListEntriesArgs defines the input parameters for the list_jar_entries tool.
type ListEntriesArgs struct {
	ArchivePath string `json:"archivePath" jsonschema:"Path to the jar/zip archive on disk"`
	InnerPath   string `json:"innerPath,omitempty" jsonschema:"Archive-internal prefix to list (e.g. com/example); empty lists the root level"`
	Glob        string `json:"glob,omitempty" jsonschema:"Optional glob pattern applied to the listed names (e.g. *.class)"`
	MaxResults  int    `json:"maxResults,omitempty" jsonschema:"Maximum number of entries to return (default 500)"`
}

// ListEntriesHandler holds the dependencies for the list_jar_entries tool.
type ListEntriesHandler struct {
	MaxEntries int
	Logger     *slog.Logger
}

// Handle processes a list_jar_entries request.
func (h *ListEntriesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ListEntriesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.ArchivePath == "" {
		h.Logger.Warn("list_jar_entries called with empty archivePath")
		return errorResult("Error: archivePath parameter is required"), nil, nil
	}

	maxEntries := args.MaxResults
	if maxEntries <= 0 {
		maxEntries = h.MaxEntries
	}

	listing, err := archive.ListEntries(args.ArchivePath, args.InnerPath, archive.ListOptions{
		Glob:       args.Glob,
		MaxEntries: maxEntries,
	})
	if err != nil {
		h.Logger.Error("list_jar_entries failed", "archive", args.ArchivePath, "error", err)
		return errorResult(fmt.Sprintf("Listing error: %v", err)), nil, nil
	}

	h.Logger.Info("list_jar_entries",
		"archive", args.ArchivePath,
		"innerPath", args.InnerPath,
		"entries", len(listing.Entries),
		"truncated", listing.Truncated,
		"elapsed", time.Since(start),
	)

	return textResult(FormatListing(args.ArchivePath, args.InnerPath, listing)), nil, nil
}
