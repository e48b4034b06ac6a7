package tools

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jarlens/jarlens-mcp/archive"
	"github.com/jarlens/jarlens-mcp/deps"
	"github.com/jarlens/jarlens-mcp/source"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// FormatListing formats one folded directory level of an archive as
// human-readable text: directories first, then leaf entries with sizes.
func FormatListing(archivePath string, innerPath string, listing archive.Listing) string {
	var builder strings.Builder

	location := archivePath
	if innerPath != "" {
		location += "!/" + archive.NormalizeEntryPath(innerPath)
	}
	builder.WriteString(fmt.Sprintf("── %s (%d entries) ──\n", location, listing.Total))

	if len(listing.Entries) == 0 {
		builder.WriteString("No entries.\n")
		return builder.String()
	}

	for _, entry := range listing.Entries {
		if entry.IsDir {
			builder.WriteString(fmt.Sprintf("  %s/\n", entry.RelativePath))
		} else {
			builder.WriteString(fmt.Sprintf("  %s  (%s, %s compressed)\n",
				entry.RelativePath,
				formatByteSize(entry.Size),
				formatByteSize(entry.CompressedSize),
			))
		}
	}

	if listing.Truncated {
		builder.WriteString(fmt.Sprintf("\n[showing %d of %d entries]\n", len(listing.Entries), listing.Total))
	}
	return builder.String()
}

// FormatReadResult prepends a provenance header line to the resolved content.
func FormatReadResult(result source.Result) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s (%s) ──\n", result.EntryPath, result.Tier))
	builder.WriteString(result.Content)
	if !strings.HasSuffix(result.Content, "\n") {
		builder.WriteString("\n")
	}
	return builder.String()
}

// FormatScanResult formats resolved dependency records, one coordinate per
// line with the absolute path indented beneath it.
func FormatScanResult(result deps.ScanResult) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("── %s project at %s ──\n", result.Kind, result.ProjectRoot))
	builder.WriteString(fmt.Sprintf("Dependencies: %d (cache hit: %t)\n\n", len(result.Dependencies), result.CacheHit))

	if len(result.Dependencies) == 0 {
		builder.WriteString("No dependencies resolved.\n")
	}

	for _, record := range result.Dependencies {
		coordinate := record.Group + ":" + record.Artifact
		if record.Version != "" {
			coordinate += ":" + record.Version
		}
		if record.Classifier != "" {
			coordinate += " (classifier: " + record.Classifier + ")"
		}
		builder.WriteString(fmt.Sprintf("  %s [%s]\n    %s\n", coordinate, record.Scope, record.Path))
	}

	if result.LogTail != "" {
		builder.WriteString("\nBuild output tail:\n")
		builder.WriteString(result.LogTail)
		builder.WriteString("\n")
	}
	return builder.String()
}

// formatByteSize converts bytes to a human-readable string.
func formatByteSize(bytes uint64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
