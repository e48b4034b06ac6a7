package deps

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarlens/jarlens-mcp/project"
	"github.com/jarlens/jarlens-mcp/runner"
)

// newTestScanner returns a scanner whose resolution step is replaced by a
// counting stub, so cache behavior is observable without a build tool.
func newTestScanner(t *testing.T, records []Record) (*Scanner, *int) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scanner := NewScanner(&runner.Runner{Logger: logger}, logger)

	invocations := 0
	scanner.resolve = func(ctx context.Context, detection project.Detection, opts Options) ([]Record, string, error) {
		invocations++
		return records, "resolved 2 artifacts", nil
	}
	return scanner, &invocations
}

func newMavenProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pom.xml"), []byte("<project/>"), 0644); err != nil {
		t.Fatalf("touch pom.xml: %v", err)
	}
	return dir
}

var testRecords = []Record{
	{Group: "com.google.guava", Artifact: "guava", Version: "31.1-jre", Scope: "compile", Path: "/repo/guava.jar"},
	{Group: "org.slf4j", Artifact: "slf4j-api", Version: "2.0.7", Scope: "runtime", Path: "/repo/slf4j-api.jar"},
}

func Test_Scan_NoProjectDetected(t *testing.T) {
	scanner, _ := newTestScanner(t, nil)
	nested := filepath.Join(t.TempDir(), "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, err := scanner.Scan(context.Background(), nested, Options{})
	if !errors.Is(err, ErrNoProject) {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
}

func Test_Scan_CacheMissThenHit(t *testing.T) {
	scanner, invocations := newTestScanner(t, testRecords)
	dir := newMavenProject(t)

	first, err := scanner.Scan(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.CacheHit {
		t.Error("first scan: expected cacheHit=false")
	}

	second, err := scanner.Scan(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second scan: expected cacheHit=true")
	}
	if *invocations != 1 {
		t.Errorf("resolver invoked %d times, want 1", *invocations)
	}
	if len(second.Dependencies) != len(testRecords) {
		t.Errorf("got %d dependencies, want %d", len(second.Dependencies), len(testRecords))
	}
}

func Test_Scan_DifferentConfigurationsGetDistinctCacheEntries(t *testing.T) {
	scanner, invocations := newTestScanner(t, testRecords)
	dir := newMavenProject(t)

	if _, err := scanner.Scan(context.Background(), dir, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	third, err := scanner.Scan(context.Background(), dir, Options{Configurations: []string{"runtime"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.CacheHit {
		t.Error("expected a distinct cache entry for a different configurations filter")
	}
	if *invocations != 2 {
		t.Errorf("resolver invoked %d times, want 2", *invocations)
	}
}

func Test_Scan_QueryIsNotPartOfCacheKey(t *testing.T) {
	scanner, invocations := newTestScanner(t, testRecords)
	dir := newMavenProject(t)

	if _, err := scanner.Scan(context.Background(), dir, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := scanner.Scan(context.Background(), dir, Options{Query: "slf4j"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.CacheHit {
		t.Error("expected query-only change to hit the cache")
	}
	if *invocations != 1 {
		t.Errorf("resolver invoked %d times, want 1", *invocations)
	}
	if len(result.Dependencies) != 1 || result.Dependencies[0].Artifact != "slf4j-api" {
		t.Errorf("query filter not applied to cached result: %+v", result.Dependencies)
	}
}

func Test_Scan_QueryMatchesPathToo(t *testing.T) {
	scanner, _ := newTestScanner(t, testRecords)
	dir := newMavenProject(t)

	result, err := scanner.Scan(context.Background(), dir, Options{Query: "/REPO/GUAVA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Dependencies) != 1 || result.Dependencies[0].Artifact != "guava" {
		t.Errorf("expected case-insensitive path match, got %+v", result.Dependencies)
	}
}

func Test_Scan_ResolverErrorIsNotCached(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scanner := NewScanner(&runner.Runner{Logger: logger}, logger)
	dir := newMavenProject(t)

	calls := 0
	scanner.resolve = func(ctx context.Context, detection project.Detection, opts Options) ([]Record, string, error) {
		calls++
		if calls == 1 {
			return nil, "", &BuildToolError{Tool: "mvn", ExitCode: 1}
		}
		return testRecords, "", nil
	}

	if _, err := scanner.Scan(context.Background(), dir, Options{}); err == nil {
		t.Fatal("expected first scan to fail")
	}
	result, err := scanner.Scan(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("expected retry to resolve, got %v", err)
	}
	if result.CacheHit {
		t.Error("expected cacheHit=false after a failed first attempt")
	}
	if calls != 2 {
		t.Errorf("resolver invoked %d times, want 2", calls)
	}
}

func Test_Scan_LogTailOnlyWhenRequested(t *testing.T) {
	scanner, _ := newTestScanner(t, testRecords)
	dir := newMavenProject(t)

	without, err := scanner.Scan(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if without.LogTail != "" {
		t.Errorf("expected empty log tail, got %q", without.LogTail)
	}

	with, err := scanner.Scan(context.Background(), dir, Options{IncludeLogTail: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if with.LogTail == "" {
		t.Error("expected log tail when requested")
	}
}

func Test_normalizeConfigurations(t *testing.T) {
	got := normalizeConfigurations([]string{"runtime", "compile", "runtime", " ", "api"})
	want := []string{"api", "compile", "runtime"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func Test_cacheKey_NormalizesOptionOrder(t *testing.T) {
	a := cacheKey("/root", Options{Configurations: []string{"b", "a"}})
	b := cacheKey("/root", Options{Configurations: []string{"a", "b", "a"}})
	if a != b {
		t.Errorf("equivalent options produced distinct keys: %q vs %q", a, b)
	}

	c := cacheKey("/root", Options{Configurations: []string{"a"}})
	if a == c {
		t.Error("different configurations produced the same key")
	}

	d := cacheKey("/root", Options{Query: "guava"})
	e := cacheKey("/root", Options{})
	if d != e {
		t.Error("query must not be part of the cache key")
	}
}

func Test_dedupeByPath_KeepsFirstSeen(t *testing.T) {
	records := []Record{
		{Artifact: "a", Scope: "compile", Path: "/repo/x.jar"},
		{Artifact: "a", Scope: "runtime", Path: "/repo/x.jar"},
		{Artifact: "b", Path: "/repo/y.jar"},
	}
	deduped := dedupeByPath(records)
	if len(deduped) != 2 {
		t.Fatalf("got %d records, want 2", len(deduped))
	}
	if deduped[0].Scope != "compile" {
		t.Errorf("first-seen record not kept: %+v", deduped[0])
	}
}
