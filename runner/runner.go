// Package runner spawns external build and JVM tools. Before spawning a
// build command it re-detects the project kind and refuses to run a Maven
// command in a Gradle tree (or vice versa), so a stray working directory
// never triggers an unrelated build.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jarlens/jarlens-mcp/project"
)

// NotFoundError reports an executable that could not be launched because it
// does not exist on the search path.
type NotFoundError struct {
	Command string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("executable not found: %s", e.Command)
}

// MismatchError reports a build command invoked against a project owned by
// a different build system.
type MismatchError struct {
	Command  string
	Required project.Kind
	Detected project.Kind
	Root     string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s requires a %s project but detected %s (root: %s)",
		e.Command, e.Required, e.Detected, e.Root)
}

// Result carries the fully captured output of a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Options directs a single invocation. DetectDir overrides the directory the
// project-kind guard inspects; it defaults to Dir, then to the current
// working directory.
type Options struct {
	Dir       string
	DetectDir string
}

// Runner invokes external tools with the project-kind guard applied.
type Runner struct {
	Logger *slog.Logger
}

// Run executes command with args, captures both output streams in memory and
// returns the exit code. A non-zero exit is not an error; the caller owns
// that policy. Launch failures for missing executables map to NotFoundError.
func (r *Runner) Run(ctx context.Context, command string, args []string, opts Options) (Result, error) {
	if err := r.checkKind(command, opts); err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, command, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Debug("running external tool", "command", command, "args", args, "dir", cmd.Dir)
	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return Result{}, &NotFoundError{Command: command}
		}
		return Result{}, fmt.Errorf("running %s: %w", command, err)
	}
	return result, nil
}

// checkKind enforces the build-system guard for build commands; tools that
// are not build commands (java, javap) run under any detected kind.
func (r *Runner) checkKind(command string, opts Options) error {
	required := requiredKind(command)
	if required == project.KindNone {
		return nil
	}

	detectDir := opts.DetectDir
	if detectDir == "" {
		detectDir = opts.Dir
	}
	if detectDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			detectDir = cwd
		}
	}

	detection := project.Detect(detectDir)
	if detection.Kind != required {
		r.Logger.Warn("project kind mismatch",
			"command", command,
			"required", required,
			"detected", detection.Kind,
			"root", detection.RootDir,
		)
		return &MismatchError{
			Command:  filepath.Base(command),
			Required: required,
			Detected: detection.Kind,
			Root:     detection.RootDir,
		}
	}
	return nil
}

// requiredKind maps a command's basename to the build system it belongs to.
// KindNone means the command may run anywhere.
func requiredKind(command string) project.Kind {
	base := strings.ToLower(filepath.Base(command))
	base = strings.TrimSuffix(base, ".exe")
	base = strings.TrimSuffix(base, ".cmd")
	base = strings.TrimSuffix(base, ".bat")

	switch base {
	case "mvn", "mvnw":
		return project.KindMaven
	case "gradle", "gradlew":
		return project.KindGradle
	default:
		return project.KindNone
	}
}
