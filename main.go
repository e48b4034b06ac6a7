package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jarlens/jarlens-mcp/deps"
	"github.com/jarlens/jarlens-mcp/register"
	"github.com/jarlens/jarlens-mcp/runner"
	"github.com/jarlens/jarlens-mcp/server"
	"github.com/jarlens/jarlens-mcp/source"
	"github.com/jarlens/jarlens-mcp/tools"
)

func main() {
	// "register" subcommand installs the binary into an MCP config and exits.
	if len(os.Args) > 1 && os.Args[1] == "register" {
		register.Run("jarlens", os.Args[2:])
		return
	}

	// Parse CLI flags
	var cfrJar string
	var javaCommand string
	var maxEntries int
	var maxChars int
	var logLevel string
	var logFile string

	flag.StringVar(&cfrJar, "cfr", "", "Path to the CFR decompiler jar (default: auto-detect next to the binary)")
	flag.StringVar(&javaCommand, "java", "java", "Java executable used to run the decompiler")
	flag.IntVar(&maxEntries, "max-entries", 500, "Maximum archive entries per listing")
	flag.IntVar(&maxChars, "max-chars", 50000, "Maximum characters of entry content per read")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: jarlens-mcp.log in the working directory)")
	flag.Parse()

	// Default log file: jarlens-mcp.log in the working directory
	if logFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			logFile = filepath.Join(cwd, "jarlens-mcp.log")
		}
	}

	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(logLevel, logFile)

	cfrPath := source.LocateCFR(cfrJar)
	if cfrPath == "" {
		logger.Warn("CFR jar not found, decompilation tier disabled", "override", cfrJar)
	}

	logger.Info("starting jarlens-mcp",
		"cfr", cfrPath,
		"maxEntries", maxEntries,
		"maxChars", maxChars,
	)

	// Create core components
	toolRunner := &runner.Runner{Logger: logger}
	reader := &source.Reader{
		Runner:      toolRunner,
		CFRJar:      cfrPath,
		JavaCommand: javaCommand,
		MaxChars:    maxChars,
		Logger:      logger,
	}
	scanner := deps.NewScanner(toolRunner, logger)

	// Create tool handlers
	listHandler := &tools.ListEntriesHandler{MaxEntries: maxEntries, Logger: logger}
	readHandler := &tools.ReadEntryHandler{Reader: reader, Logger: logger}
	scanHandler := &tools.ScanDepsHandler{Scanner: scanner, Logger: logger}

	// Setup and run MCP server on stdio
	mcpServer := server.Setup(listHandler, readHandler, scanHandler)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
