// Package filelist enumerates candidate files under a root directory,
// honoring ignore conventions, binary/test-file policy, and custom glob
// exclusions, and memoizes the result per process.
package filelist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/blocksearch/blocksearch/internal/debug"
	"github.com/blocksearch/blocksearch/internal/structure"
)

// Cache is a process-wide, read-mostly memoized file lister. The zero value
// is an empty cache ready to use; New returns one.
type Cache struct {
	mu      sync.Mutex
	entries sync.Map // cacheKey -> []string
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{}
}

// List returns an ordered list of candidate files under root, applying the
// rules of §4.1 in order: ignore conventions, binary exclusion, test-file
// policy, then customIgnores globs. Results are memoized by
// (canonical root, allowTests, hash(customIgnores)); a process never
// refreshes an entry once populated.
func (c *Cache) List(root string, allowTests bool, customIgnores []string) ([]string, error) {
	canonical, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	canonical = filepath.Clean(canonical)

	key := cacheKey(canonical, allowTests, customIgnores)
	if cached, ok := c.entries.Load(key); ok {
		return cached.([]string), nil
	}

	files, err := c.scan(canonical, allowTests, customIgnores)
	if err != nil {
		return nil, err
	}

	c.entries.Store(key, files)
	return files, nil
}

func cacheKey(canonicalRoot string, allowTests bool, customIgnores []string) string {
	sorted := append([]string(nil), customIgnores...)
	sort.Strings(sorted)
	h := xxhash.New()
	h.Write([]byte(strings.Join(sorted, "\x00")))
	return fmt.Sprintf("%s|%v|%x", canonicalRoot, allowTests, h.Sum64())
}

func (c *Cache) scan(root string, allowTests bool, customIgnores []string) ([]string, error) {
	artifactDirs := detectBuildArtifactDirs(root)
	globalSet, _ := loadGlobalIgnore()

	var files []string
	var sets []*ignoreSet

	var walk func(dir string) error
	walk = func(dir string) error {
		if set, err := compileIgnoreFile(filepath.Join(dir, ".gitignore")); err == nil {
			sets = append(sets, set)
			defer func() { sets = sets[:len(sets)-1] }()
		} else if !os.IsNotExist(err) {
			debug.Printf("filelist: reading .gitignore in %s: %v", dir, err)
		}
		if set, err := compileIgnoreFile(filepath.Join(dir, ".ignore")); err == nil {
			sets = append(sets, set)
			defer func() { sets = sets[:len(sets)-1] }()
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			debug.Printf("filelist: skipping unreadable dir %s: %v", dir, err)
			return nil
		}

		for _, entry := range entries {
			name := entry.Name()
			full := filepath.Join(dir, name)
			isDir := entry.IsDir()

			if isDir && defaultIgnoreDirs[name] {
				continue
			}
			if isDir && containsString(artifactDirs, name) {
				continue
			}
			if ignoredByAnySet(sets, globalSet, full, isDir) {
				continue
			}

			if isDir {
				if err := walk(full); err != nil {
					debug.Printf("filelist: walk error in %s: %v", full, err)
				}
				continue
			}

			if isBinary(full) {
				continue
			}

			if !allowTests {
				lang := structure.DetectLanguage(full)
				if structure.IsTestFile(full, lang) {
					continue
				}
			}

			if matchesCustomIgnore(full, root, customIgnores) {
				continue
			}

			files = append(files, full)
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func ignoredByAnySet(sets []*ignoreSet, global *ignoreSet, path string, isDir bool) bool {
	if global != nil && global.shouldIgnore(path, isDir) {
		return true
	}
	for _, s := range sets {
		if s.shouldIgnore(path, isDir) {
			return true
		}
	}
	return false
}

func matchesCustomIgnore(full, root string, customIgnores []string) bool {
	if len(customIgnores) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, full)
	if err != nil {
		rel = full
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range customIgnores {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, filepath.Base(full)); ok {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// loadGlobalIgnore reads the global user ignore file named in §4.1 rule 1,
// if present. Absence is not an error.
func loadGlobalIgnore() (*ignoreSet, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil
	}
	path := filepath.Join(home, ".config", "blocksearch", "ignore")
	set, err := compileIgnoreFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return set, err
}
