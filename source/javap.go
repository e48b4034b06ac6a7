package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jarlens/jarlens-mcp/runner"
)

// signatureSummary asks javap for a members-only view of the class, used
// when decompilation produced no output file.
func (r *Reader) signatureSummary(ctx context.Context, archivePath string, entryPath string) (*Result, error) {
	className := classNameOf(entryPath)

	result, err := r.Runner.Run(ctx, r.javapCommand(), []string{
		"-p",
		"-classpath", archivePath,
		className,
	}, runner.Options{})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 || strings.TrimSpace(result.Stdout) == "" {
		return nil, &DecompileError{
			EntryPath: entryPath,
			ExitCode:  result.ExitCode,
			Stderr:    outputTail(result.Stderr, 20),
		}
	}

	header := fmt.Sprintf("// Signature summary (javap) for %s\n\n", className)
	return &Result{
		Content:   header + r.truncate(result.Stdout),
		EntryPath: entryPath,
		Tier:      TierSignatureSummary,
	}, nil
}
