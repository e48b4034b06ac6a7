package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound reports a missing or unreadable archive, or a missing entry.
var ErrNotFound = errors.New("not found")

// DefaultMaxEntries caps a single listing so the response stays consumable
// by a token-limited caller.
const DefaultMaxEntries = 500

// Entry is one listed archive member, folded to a single directory level
// relative to the filter prefix.
type Entry struct {
	RelativePath   string
	IsDir          bool
	Size           uint64
	CompressedSize uint64
}

// Listing is the result of ListEntries: directories first, then leaf
// entries, both sorted lexicographically.
type Listing struct {
	Entries   []Entry
	Total     int
	Truncated bool
}

// ListOptions tunes a single listing request.
type ListOptions struct {
	Glob       string // optional doublestar pattern matched against relative paths
	MaxEntries int    // defaults to DefaultMaxEntries
}

// ListEntries enumerates a zip archive one directory level deep relative to
// prefix. Entries below the immediate level collapse into deduplicated
// synthetic directories. Fails with ErrNotFound when the archive cannot be
// opened.
func ListEntries(archivePath string, prefix string, opts ListOptions) (Listing, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return Listing{}, fmt.Errorf("opening archive %s: %w", archivePath, ErrNotFound)
	}
	defer reader.Close()

	prefix = NormalizeEntryPath(prefix)
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if opts.Glob != "" && !doublestar.ValidatePattern(opts.Glob) {
		return Listing{}, fmt.Errorf("invalid glob pattern: %s", opts.Glob)
	}

	dirNames := make(map[string]bool)
	seenLeaf := make(map[string]bool)
	var leaves []Entry

	for _, file := range reader.File {
		name := NormalizeEntryPath(file.Name)
		if name == "" || name == prefix {
			continue
		}
		if prefix != "" {
			if !strings.HasPrefix(name, prefix+"/") {
				continue
			}
			name = name[len(prefix)+1:]
		}
		if idx := strings.IndexByte(name, '/'); idx >= 0 {
			dirNames[name[:idx]] = true
			continue
		}
		if file.FileInfo().IsDir() {
			dirNames[name] = true
			continue
		}
		if seenLeaf[name] {
			continue
		}
		seenLeaf[name] = true
		leaves = append(leaves, Entry{
			RelativePath:   name,
			Size:           file.UncompressedSize64,
			CompressedSize: file.CompressedSize64,
		})
	}

	var entries []Entry
	sortedDirs := make([]string, 0, len(dirNames))
	for name := range dirNames {
		sortedDirs = append(sortedDirs, name)
	}
	sort.Strings(sortedDirs)
	for _, name := range sortedDirs {
		entries = append(entries, Entry{RelativePath: name, IsDir: true})
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].RelativePath < leaves[j].RelativePath })
	entries = append(entries, leaves...)

	if opts.Glob != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			matched, err := doublestar.Match(opts.Glob, entry.RelativePath)
			if err == nil && matched {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	listing := Listing{Total: len(entries)}
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
		listing.Truncated = true
	}
	listing.Entries = entries
	return listing, nil
}

// ReadRaw returns the raw bytes of one entry. The entry path is normalized
// before lookup. Fails with ErrNotFound when the archive cannot be opened or
// the entry is absent.
func ReadRaw(archivePath string, entryPath string) ([]byte, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", archivePath, ErrNotFound)
	}
	defer reader.Close()

	entryPath = NormalizeEntryPath(entryPath)
	for _, file := range reader.File {
		if NormalizeEntryPath(file.Name) != entryPath {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening entry %s: %w", entryPath, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading entry %s: %w", entryPath, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("entry %s in %s: %w", entryPath, archivePath, ErrNotFound)
}

// HasEntry reports whether the archive contains the given (normalized) entry.
func HasEntry(archivePath string, entryPath string) (bool, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return false, fmt.Errorf("opening archive %s: %w", archivePath, ErrNotFound)
	}
	defer reader.Close()

	entryPath = NormalizeEntryPath(entryPath)
	for _, file := range reader.File {
		if NormalizeEntryPath(file.Name) == entryPath {
			return true, nil
		}
	}
	return false, nil
}
