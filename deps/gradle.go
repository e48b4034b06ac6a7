package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/jarlens/jarlens-mcp/runner"
)

// gradleLineMarker prefixes every line the generated task prints, so task
// output survives mixing with Gradle's own logging.
const gradleLineMarker = "jarlens-dep"

// cacheLayoutMarker is the well-known segment of Gradle's artifact cache
// layout; the three segments after it are group, artifact and version.
const cacheLayoutMarker = "modules-2/files-2.1"

// configNamePattern allow-lists configuration names before they are spliced
// into the generated init script. Anything else is rejected, never escaped.
var configNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// initScriptTemplate registers a task printing one delimited line per
// resolved artifact: marker, configuration name, file name, absolute path.
const initScriptTemplate = `allprojects { proj ->
    proj.tasks.register("jarlensResolve") {
        doLast {
            def wanted = [%s] as Set
            proj.configurations.each { cfg ->
                if (!cfg.canBeResolved) { return }
                if (!wanted.isEmpty() && !wanted.contains(cfg.name)) { return }
                def lenient = cfg.resolvedConfiguration.lenientConfiguration
                def artifacts = %s ? lenient.firstLevelModuleDependencies.collectMany { it.moduleArtifacts } : lenient.artifacts
                artifacts.each { art ->
                    println("jarlens-dep\t" + cfg.name + "\t" + art.file.name + "\t" + art.file.absolutePath)
                }
            }
        }
    }
}
`

// resolveGradle injects a generated init script into the project's wrapper
// (or the system gradle) and parses the delimited task output. The script
// file is removed on all paths.
func (s *Scanner) resolveGradle(ctx context.Context, rootDir string, opts Options) ([]Record, string, error) {
	script, err := renderInitScript(opts.Configurations, opts.ExcludeTransitive)
	if err != nil {
		return nil, "", err
	}

	scriptFile, err := os.CreateTemp("", "jarlens-init-*.gradle")
	if err != nil {
		return nil, "", fmt.Errorf("creating init script: %w", err)
	}
	scriptPath := scriptFile.Name()
	defer os.Remove(scriptPath)
	if _, err := scriptFile.WriteString(script); err != nil {
		scriptFile.Close()
		return nil, "", fmt.Errorf("writing init script: %w", err)
	}
	if err := scriptFile.Close(); err != nil {
		return nil, "", fmt.Errorf("closing init script: %w", err)
	}

	command := gradleCommand(rootDir)
	args := []string{"--init-script", scriptPath, "jarlensResolve", "-q"}
	result, err := s.Runner.Run(ctx, command, args, runner.Options{Dir: rootDir})
	if err != nil {
		return nil, "", err
	}

	logTail := tailLines(result.Stdout+"\n"+result.Stderr, buildLogTailLines)
	if result.ExitCode != 0 {
		return nil, "", &BuildToolError{Tool: filepath.Base(command), ExitCode: result.ExitCode, OutputTail: logTail}
	}

	return ParseGradleOutput(result.Stdout), logTail, nil
}

// renderInitScript templates the init script from validated parameters only.
func renderInitScript(configurations []string, firstLevelOnly bool) (string, error) {
	normalized := normalizeConfigurations(configurations)
	quoted := make([]string, 0, len(normalized))
	for _, name := range normalized {
		if !configNamePattern.MatchString(name) {
			return "", fmt.Errorf("invalid configuration name: %q", name)
		}
		quoted = append(quoted, "'"+name+"'")
	}
	return fmt.Sprintf(initScriptTemplate,
		strings.Join(quoted, ", "),
		fmt.Sprintf("%t", firstLevelOnly),
	), nil
}

// gradleCommand prefers the project-local wrapper over the system tool.
func gradleCommand(rootDir string) string {
	wrapper := "gradlew"
	if runtime.GOOS == "windows" {
		wrapper = "gradlew.bat"
	}
	wrapperPath := filepath.Join(rootDir, wrapper)
	if info, err := os.Stat(wrapperPath); err == nil && !info.IsDir() {
		return wrapperPath
	}
	return "gradle"
}

// ParseGradleOutput parses the generated task's delimited lines into
// records, deduplicating by absolute path. Group, artifact and version come
// from the cache-layout segments following the modules-2/files-2.1 marker;
// the classifier is the remainder of the base name after "artifact-version-".
func ParseGradleOutput(text string) []Record {
	seen := make(map[string]bool)
	var records []Record

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, gradleLineMarker+"\t") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			continue
		}
		configuration, fileName, absPath := fields[1], fields[2], fields[3]
		if absPath == "" || seen[absPath] {
			continue
		}
		seen[absPath] = true

		record := Record{
			Scope:     configuration,
			Path:      absPath,
			Packaging: strings.TrimPrefix(filepath.Ext(fileName), "."),
		}

		baseName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		normalizedPath := strings.ReplaceAll(absPath, "\\", "/")
		if idx := strings.Index(normalizedPath, "/"+cacheLayoutMarker+"/"); idx >= 0 {
			rest := normalizedPath[idx+len(cacheLayoutMarker)+2:]
			segments := strings.Split(rest, "/")
			if len(segments) >= 3 {
				record.Group = segments[0]
				record.Artifact = segments[1]
				record.Version = segments[2]
			}
		}
		if record.Artifact == "" {
			// mavenLocal mirrors and composite builds lack the cache layout;
			// keep the file with what the name alone can tell us.
			record.Artifact = baseName
		} else if prefix := record.Artifact + "-" + record.Version; strings.HasPrefix(baseName, prefix+"-") {
			record.Classifier = baseName[len(prefix)+1:]
		}

		records = append(records, record)
	}
	return records
}
