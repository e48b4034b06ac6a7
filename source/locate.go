package source

import (
	"os"
	"path/filepath"
)

const cfrJarName = "cfr.jar"

// LocateCFR finds the bundled CFR jar. Search order: explicit override,
// JARLENS_CFR_JAR environment variable, next to the running executable, an
// assets directory next to the executable, the current working directory.
// Returns "" when nothing is found; the decompile tier then skips itself.
func LocateCFR(override string) string {
	if override != "" {
		if fileExists(override) {
			return override
		}
		return ""
	}
	if fromEnv := os.Getenv("JARLENS_CFR_JAR"); fromEnv != "" && fileExists(fromEnv) {
		return fromEnv
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		exeDir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(exeDir, cfrJarName),
			filepath.Join(exeDir, "assets", cfrJarName),
		)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, cfrJarName))
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
