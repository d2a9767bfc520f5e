// Package pathutil converts the absolute paths used internally to the
// root-relative paths the CLI prints.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/blocksearch/blocksearch/internal/searchtypes"
)

// ToRelative converts absPath to a path relative to rootDir. Falls back to
// absPath if it's already relative, empty, or outside rootDir.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	// A ".." prefix means the file is outside the root; the absolute path
	// is clearer in that case.
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToRelativeResults converts File/ParentFile on a Result slice from absolute
// to relative, for use at output boundaries (CLI plain-text formatting).
// Creates a new slice without modifying the original results.
func ToRelativeResults(results []searchtypes.Result, rootDir string) []searchtypes.Result {
	if len(results) == 0 {
		return results
	}

	converted := make([]searchtypes.Result, len(results))
	copy(converted, results)

	for i := range converted {
		converted[i].ParentFile = ToRelative(converted[i].ParentFile, rootDir)
		converted[i].File = ToRelative(converted[i].File, rootDir)
	}

	return converted
}
