// Package source produces the best available human-readable text for an
// archive entry. Non-class entries are read directly; compiled classes go
// through an ordered fallback chain: attached source archive, bundled CFR
// decompiler, javap signature summary.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jarlens/jarlens-mcp/archive"
	"github.com/jarlens/jarlens-mcp/runner"
)

// Tier names where the returned content came from.
type Tier string

const (
	TierAttachedSource   Tier = "attached-source"
	TierDecompiled       Tier = "decompiled"
	TierRawResource      Tier = "raw-resource"
	TierSignatureSummary Tier = "signature-summary"
)

// DefaultMaxChars bounds returned content for a token-limited caller.
const DefaultMaxChars = 50000

const truncationMarker = "\n\n[... truncated ...]"

// Result is the outcome of a successful ReadEntry call.
type Result struct {
	Content       string
	EntryPath     string
	Tier          Tier
	SourceArchive string // set for TierAttachedSource
}

// DecompileError reports that every fallback tier was exhausted. ExitCode
// and Stderr come from the decompiler invocation when one was attempted.
type DecompileError struct {
	EntryPath string
	ExitCode  int
	Stderr    string
}

func (e *DecompileError) Error() string {
	msg := fmt.Sprintf("decompilation failed for %s (exit code %d)", e.EntryPath, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Reader resolves archive entries to source text.
type Reader struct {
	Runner       *runner.Runner
	CFRJar       string // path to the bundled CFR jar, empty when not located
	JavaCommand  string // defaults to "java"
	JavapCommand string // defaults to "javap"
	MaxChars     int    // defaults to DefaultMaxChars
	Logger       *slog.Logger
}

// tierFunc is one fallback strategy. A (nil, nil) return means "no result,
// try the next tier"; errors are absorbed between tiers and surface only
// when the whole chain fails.
type tierFunc func(ctx context.Context) (*Result, error)

// ReadEntry returns the best available text for entryPath inside
// archivePath. Fails with archive.ErrNotFound when the archive or the entry
// is missing, and with DecompileError when every tier for a class entry
// comes up empty.
func (r *Reader) ReadEntry(ctx context.Context, archivePath string, entryPath string) (Result, error) {
	entryPath = archive.NormalizeEntryPath(entryPath)

	if !strings.HasSuffix(entryPath, ".class") {
		return r.readRawResource(archivePath, entryPath)
	}

	exists, err := archive.HasEntry(archivePath, entryPath)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{}, fmt.Errorf("entry %s in %s: %w", entryPath, archivePath, archive.ErrNotFound)
	}

	tiers := []tierFunc{
		func(ctx context.Context) (*Result, error) { return r.attachedSource(archivePath, entryPath) },
		func(ctx context.Context) (*Result, error) { return r.decompile(ctx, archivePath, entryPath) },
		func(ctx context.Context) (*Result, error) { return r.signatureSummary(ctx, archivePath, entryPath) },
	}

	var lastDecompErr *DecompileError
	for _, tier := range tiers {
		result, err := tier(ctx)
		if err != nil {
			var decompErr *DecompileError
			if errors.As(err, &decompErr) {
				lastDecompErr = decompErr
			}
			r.Logger.Debug("fallback tier failed", "entry", entryPath, "error", err)
			continue
		}
		if result != nil {
			r.Logger.Info("entry resolved", "entry", entryPath, "tier", result.Tier)
			return *result, nil
		}
	}

	if lastDecompErr != nil {
		return Result{}, lastDecompErr
	}
	return Result{}, &DecompileError{EntryPath: entryPath, ExitCode: -1}
}

// readRawResource serves a non-class entry as truncated text, or a short
// summary when the bytes look binary.
func (r *Reader) readRawResource(archivePath string, entryPath string) (Result, error) {
	data, err := archive.ReadRaw(archivePath, entryPath)
	if err != nil {
		return Result{}, err
	}

	var content string
	if archive.IsBinaryContent(data) {
		content = fmt.Sprintf("Binary entry %s (%d bytes); content not displayable as text.", entryPath, len(data))
	} else {
		content = r.truncate(string(data))
	}
	return Result{Content: content, EntryPath: entryPath, Tier: TierRawResource}, nil
}

// attachedSource looks for a sibling "<base>-sources" archive holding the
// entry's .java counterpart.
func (r *Reader) attachedSource(archivePath string, entryPath string) (*Result, error) {
	sourceArchive := siblingSourcesArchive(archivePath)
	if _, err := os.Stat(sourceArchive); err != nil {
		return nil, nil
	}

	javaPath := strings.TrimSuffix(entryPath, ".class") + ".java"
	exists, err := archive.HasEntry(sourceArchive, javaPath)
	if err != nil || !exists {
		return nil, nil
	}

	data, err := archive.ReadRaw(sourceArchive, javaPath)
	if err != nil {
		return nil, err
	}

	header := fmt.Sprintf("// Source attached from %s\n\n", filepath.Base(sourceArchive))
	return &Result{
		Content:       header + r.truncate(string(data)),
		EntryPath:     javaPath,
		Tier:          TierAttachedSource,
		SourceArchive: sourceArchive,
	}, nil
}

// siblingSourcesArchive derives the conventional sources-archive path:
// foo/bar.jar -> foo/bar-sources.jar.
func siblingSourcesArchive(archivePath string) string {
	ext := filepath.Ext(archivePath)
	base := strings.TrimSuffix(archivePath, ext)
	return base + "-sources" + ext
}

// classNameOf converts an entry path to a fully-qualified dotted class name.
func classNameOf(entryPath string) string {
	return strings.ReplaceAll(strings.TrimSuffix(entryPath, ".class"), "/", ".")
}

func (r *Reader) truncate(content string) string {
	maxChars := r.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if len(content) <= maxChars {
		return content
	}
	return content[:maxChars] + truncationMarker
}

func (r *Reader) javaCommand() string {
	if r.JavaCommand != "" {
		return r.JavaCommand
	}
	return "java"
}

func (r *Reader) javapCommand() string {
	if r.JavapCommand != "" {
		return r.JavapCommand
	}
	return "javap"
}
