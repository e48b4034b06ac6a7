package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jarlens/jarlens-mcp/tools"
)

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	listHandler *tools.ListEntriesHandler,
	readHandler *tools.ReadEntryHandler,
	scanHandler *tools.ScanDepsHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "jarlens-mcp",
			Version: "0.3.0",
		},
		&mcp.ServerOptions{
			Instructions: `This server inspects compiled Java archives (JARs) and resolves project dependencies without touching the project's build configuration. All operations are read-only.

Typical flow:
- Use scan_project_dependencies to map every dependency of a Maven or Gradle project to its absolute jar path (results are cached per project root and options)
- Use list_jar_entries to browse a jar one directory level at a time
- Use read_jar_entry to get source text for an entry: attached -sources jars are preferred, then CFR decompilation, then a javap signature summary`,
		},
	)

	// Register list_jar_entries tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "list_jar_entries",
		Description: `List one directory level of a jar/zip archive. Deeper entries are folded into synthetic directories; results are capped and flagged when truncated.

Parameters:
  - archivePath: path to the archive on disk
  - innerPath: archive-internal prefix (e.g. "com/example"), empty for the root level
  - glob: optional pattern on the listed names (e.g. "*.class")`,
	}, listHandler.Handle)

	// Register read_jar_entry tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "read_jar_entry",
		Description: `Read the best available human-readable text for an archive entry. Non-class entries are returned as-is; .class entries fall back through attached sources, CFR decompilation and javap signatures. The first output line names the provenance tier.`,
	}, readHandler.Handle)

	// Register scan_project_dependencies tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "scan_project_dependencies",
		Description: `Resolve every dependency of the Maven or Gradle project containing projectPath to group:artifact:version coordinates and absolute on-disk jar paths. Expensive build-tool invocations are cached for the process lifetime; use query to filter cheaply.`,
	}, scanHandler.Handle)

	return mcpServer
}
