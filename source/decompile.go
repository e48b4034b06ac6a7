package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jarlens/jarlens-mcp/runner"
)

// decompile runs the bundled CFR jar against the archive, constrained to the
// requested class, into a scratch directory that is removed on every exit
// path. Returns (nil, nil) when no CFR jar was located at startup.
func (r *Reader) decompile(ctx context.Context, archivePath string, entryPath string) (*Result, error) {
	if r.CFRJar == "" {
		return nil, nil
	}

	scratchDir, err := os.MkdirTemp("", "jarlens-cfr-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	className := classNameOf(entryPath)
	// Anchor-match the quoted class name so sibling classes sharing a
	// prefix (Foo vs Foo2, Foo vs Foo$Inner) are not emitted as well.
	filter := "^" + regexp.QuoteMeta(className) + "$"

	args := []string{
		"-jar", r.CFRJar,
		archivePath,
		"--outputdir", scratchDir,
		"--jarfilter", filter,
		"--silent", "true",
	}
	result, err := r.Runner.Run(ctx, r.javaCommand(), args, runner.Options{})
	if err != nil {
		return nil, err
	}

	outputFile := filepath.Join(scratchDir, filepath.FromSlash(strings.TrimSuffix(entryPath, ".class")+".java"))
	data, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, &DecompileError{
			EntryPath: entryPath,
			ExitCode:  result.ExitCode,
			Stderr:    outputTail(result.Stderr, 20),
		}
	}

	header := fmt.Sprintf("// Decompiled by CFR from %s\n\n", filepath.Base(archivePath))
	return &Result{
		Content:   header + r.truncate(string(data)),
		EntryPath: entryPath,
		Tier:      TierDecompiled,
	}, nil
}

// outputTail returns the last maxLines lines of captured tool output.
func outputTail(output string, maxLines int) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	lines := strings.Split(output, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
