// Package project detects which build system owns a directory tree by
// walking upward until a build-system marker file is found.
package project

import (
	"os"
	"path/filepath"
)

// Kind identifies the build system owning a project directory.
type Kind string

const (
	KindMaven  Kind = "maven"
	KindGradle Kind = "gradle"
	KindNone   Kind = "none"
)

// mavenMarker is the single file identifying a Maven module root.
const mavenMarker = "pom.xml"

// gradleMarkers are the files any one of which identifies a Gradle project.
var gradleMarkers = []string{
	"build.gradle",
	"build.gradle.kts",
	"settings.gradle",
	"settings.gradle.kts",
}

// Detection is the outcome of a marker walk. RootDir is non-empty exactly
// when Kind is not KindNone.
type Detection struct {
	Kind    Kind
	RootDir string
	Markers []string
}

// Detect walks from startPath toward the filesystem root looking for build
// markers. A file startPath begins the walk at its containing directory.
// The closest ancestor with any marker wins; within one directory, Maven
// markers take priority over Gradle markers.
func Detect(startPath string) Detection {
	dir, err := filepath.Abs(startPath)
	if err != nil {
		return Detection{Kind: KindNone}
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		if markers := markersAt(dir); len(markers) > 0 {
			kind := KindGradle
			if markers[0] == mavenMarker {
				kind = KindMaven
			}
			return Detection{Kind: kind, RootDir: dir, Markers: markers}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Detection{Kind: KindNone}
		}
		dir = parent
	}
}

// markersAt returns the build markers present in dir, Maven first so the
// caller's tie-break falls out of the ordering.
func markersAt(dir string) []string {
	var found []string
	if fileExists(filepath.Join(dir, mavenMarker)) {
		found = append(found, mavenMarker)
	}
	for _, marker := range gradleMarkers {
		if fileExists(filepath.Join(dir, marker)) {
			found = append(found, marker)
		}
	}
	return found
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
