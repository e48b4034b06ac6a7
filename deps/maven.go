package deps

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jarlens/jarlens-mcp/runner"
)

const buildLogTailLines = 20

// resolveMaven runs dependency:list with absolute artifact paths into a
// private temp file and parses it. The temp file is removed on all paths.
func (s *Scanner) resolveMaven(ctx context.Context, rootDir string, opts Options) ([]Record, string, error) {
	outFile, err := os.CreateTemp("", "jarlens-mvn-deps-")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp output file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	args := []string{
		"-B",
		"dependency:list",
		"-DoutputAbsoluteArtifactFilename=true",
		"-DincludeScope=runtime",
		"-DoutputFile=" + outPath,
		"-DappendOutput=false",
	}
	if opts.ExcludeTransitive {
		args = append(args, "-DexcludeTransitive=true")
	}

	result, err := s.Runner.Run(ctx, "mvn", args, runner.Options{Dir: rootDir})
	if err != nil {
		return nil, "", err
	}

	logTail := tailLines(result.Stdout+"\n"+result.Stderr, buildLogTailLines)
	if result.ExitCode != 0 {
		return nil, "", &BuildToolError{Tool: "mvn", ExitCode: result.ExitCode, OutputTail: logTail}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading dependency list output: %w", err)
	}

	records := ParseMavenList(string(data))
	if scopes := normalizeConfigurations(opts.Configurations); len(scopes) > 0 {
		// dependency:list takes a single includeScope, so a requested scope
		// list is applied as a post-filter on the parsed records.
		records = filterByScopes(records, scopes)
	}
	return records, logTail, nil
}

// ParseMavenList parses dependency:list output into records. Each payload
// line has the shape group:artifact:packaging[:classifier]:version:scope:path
// and is split on ':' from the right, since group identifiers may themselves
// contain colons.
func ParseMavenList(text string) []Record {
	var records []Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "[INFO]"))
		if line == "" || line == "none" {
			continue
		}
		if strings.HasPrefix(line, "The following files") || strings.HasPrefix(line, "---") {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) < 6 {
			continue
		}

		n := len(parts)
		record := Record{
			Path:    parts[n-1],
			Scope:   parts[n-2],
			Version: parts[n-3],
		}
		left := parts[:n-3]
		if len(left) >= 4 {
			record.Classifier = left[len(left)-1]
			record.Packaging = left[len(left)-2]
			record.Artifact = left[len(left)-3]
			record.Group = strings.Join(left[:len(left)-3], ":")
		} else {
			record.Packaging = left[2]
			record.Artifact = left[1]
			record.Group = left[0]
		}
		records = append(records, record)
	}
	return records
}

func filterByScopes(records []Record, scopes []string) []Record {
	wanted := make(map[string]bool, len(scopes))
	for _, scope := range scopes {
		wanted[strings.ToLower(scope)] = true
	}
	var filtered []Record
	for _, record := range records {
		if wanted[strings.ToLower(record.Scope)] {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
