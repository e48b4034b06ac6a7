package archive

import "strings"

// NormalizeEntryPath canonicalizes an archive-internal path: backslashes
// become forward slashes, repeated separators collapse, and leading/trailing
// separators are stripped. Zip entries and caller-supplied prefixes go
// through the same normalization so they compare equal.
func NormalizeEntryPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return strings.Trim(path, "/")
}
