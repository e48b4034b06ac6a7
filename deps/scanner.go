// Package deps resolves every dependency artifact of a Maven or Gradle
// project to its absolute on-disk path. Resolution shells out to the build
// tool, so results are cached for the process lifetime keyed by project root
// and normalized scan options.
package deps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jarlens/jarlens-mcp/project"
	"github.com/jarlens/jarlens-mcp/runner"
)

// ErrNoProject reports that no build-system marker was found anywhere in the
// requested path's ancestor chain.
var ErrNoProject = errors.New("no build-system markers found")

// BuildToolError reports a non-zero exit from a resolution command.
type BuildToolError struct {
	Tool       string
	ExitCode   int
	OutputTail string
}

func (e *BuildToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.OutputTail != "" {
		msg += ":\n" + e.OutputTail
	}
	return msg
}

// Record is one resolved dependency artifact.
type Record struct {
	Group      string
	Artifact   string
	Packaging  string
	Classifier string
	Version    string
	Scope      string // Maven scope or Gradle configuration name
	Path       string // absolute on-disk path
}

// Options tunes a scan. Query is a cheap post-filter and never part of the
// cache key.
type Options struct {
	ExcludeTransitive bool
	Configurations    []string
	IncludeLogTail    bool
	Query             string
}

// ScanResult is the outcome of one scan request.
type ScanResult struct {
	RequestedPath string
	ProjectRoot   string
	Kind          project.Kind
	Dependencies  []Record
	CacheHit      bool
	LogTail       string
}

// cacheSize is generous enough that entries live for the whole process in
// practice while the cache stays a typed, bounded object.
const cacheSize = 256

type cachedScan struct {
	dependencies []Record
	logTail      string
}

// Scanner dispatches dependency resolution by detected project kind and
// owns the scan cache. Concurrent scans for the same key are coalesced so
// the build tool runs once per key at a time.
type Scanner struct {
	Runner *runner.Runner
	Logger *slog.Logger

	cache  *lru.Cache[string, cachedScan]
	flight singleflight.Group

	// resolve is the per-kind resolution entry point; tests override it to
	// exercise cache behavior without a build tool installed.
	resolve func(ctx context.Context, detection project.Detection, opts Options) ([]Record, string, error)
}

// NewScanner creates a Scanner with an empty cache.
func NewScanner(run *runner.Runner, logger *slog.Logger) *Scanner {
	cache, err := lru.New[string, cachedScan](cacheSize)
	if err != nil {
		panic(err) // only possible with a non-positive size
	}
	scanner := &Scanner{Runner: run, Logger: logger, cache: cache}
	scanner.resolve = scanner.resolveByKind
	return scanner
}

// Scan resolves the dependencies of the project owning projectPath. Fails
// with ErrNoProject when no build markers exist in the ancestor chain.
func (s *Scanner) Scan(ctx context.Context, projectPath string, opts Options) (ScanResult, error) {
	detection := project.Detect(projectPath)
	if detection.Kind == project.KindNone {
		return ScanResult{}, fmt.Errorf("%s: %w", projectPath, ErrNoProject)
	}

	key := cacheKey(detection.RootDir, opts)
	if cached, ok := s.cache.Get(key); ok {
		s.Logger.Info("dependency scan cache hit", "root", detection.RootDir, "key", key)
		return s.buildResult(projectPath, detection, cached, true, opts), nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		// A coalesced waiter may arrive after the winner populated the cache.
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
		records, logTail, err := s.resolve(ctx, detection, opts)
		if err != nil {
			return nil, err
		}
		entry := cachedScan{dependencies: dedupeByPath(records), logTail: logTail}
		s.cache.Add(key, entry)
		return entry, nil
	})
	if err != nil {
		return ScanResult{}, err
	}

	entry := value.(cachedScan)
	s.Logger.Info("dependency scan complete",
		"root", detection.RootDir,
		"kind", detection.Kind,
		"dependencies", len(entry.dependencies),
	)
	return s.buildResult(projectPath, detection, entry, false, opts), nil
}

func (s *Scanner) resolveByKind(ctx context.Context, detection project.Detection, opts Options) ([]Record, string, error) {
	switch detection.Kind {
	case project.KindMaven:
		return s.resolveMaven(ctx, detection.RootDir, opts)
	case project.KindGradle:
		return s.resolveGradle(ctx, detection.RootDir, opts)
	default:
		return nil, "", fmt.Errorf("%s: %w", detection.RootDir, ErrNoProject)
	}
}

func (s *Scanner) buildResult(requestedPath string, detection project.Detection, entry cachedScan, cacheHit bool, opts Options) ScanResult {
	result := ScanResult{
		RequestedPath: requestedPath,
		ProjectRoot:   detection.RootDir,
		Kind:          detection.Kind,
		Dependencies:  filterByQuery(entry.dependencies, opts.Query),
		CacheHit:      cacheHit,
	}
	if opts.IncludeLogTail {
		result.LogTail = entry.logTail
	}
	return result
}

// cacheKey derives the composite cache key: root directory plus normalized
// options. Query is deliberately excluded.
func cacheKey(rootDir string, opts Options) string {
	return strings.Join([]string{
		rootDir,
		strconv.FormatBool(opts.ExcludeTransitive),
		strings.Join(normalizeConfigurations(opts.Configurations), ","),
		strconv.FormatBool(opts.IncludeLogTail),
	}, "|")
}

// normalizeConfigurations dedupes, drops empties and sorts the requested
// configuration names so equivalent requests share a cache entry.
func normalizeConfigurations(configurations []string) []string {
	seen := make(map[string]bool)
	var normalized []string
	for _, name := range configurations {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		normalized = append(normalized, name)
	}
	sort.Strings(normalized)
	return normalized
}

// dedupeByPath keeps the first record seen for each absolute path.
func dedupeByPath(records []Record) []Record {
	seen := make(map[string]bool)
	deduped := make([]Record, 0, len(records))
	for _, record := range records {
		if seen[record.Path] {
			continue
		}
		seen[record.Path] = true
		deduped = append(deduped, record)
	}
	return deduped
}

// filterByQuery keeps records whose group:artifact coordinate or absolute
// path contains the query, case-insensitively.
func filterByQuery(records []Record, query string) []Record {
	if query == "" {
		return append([]Record(nil), records...)
	}
	query = strings.ToLower(query)
	var filtered []Record
	for _, record := range records {
		coordinate := strings.ToLower(record.Group + ":" + record.Artifact)
		if strings.Contains(coordinate, query) || strings.Contains(strings.ToLower(record.Path), query) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// tailLines returns the last maxLines lines of captured build output.
func tailLines(output string, maxLines int) string {
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
