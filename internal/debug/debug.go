// Package debug provides ambient stage diagnostics gated by the DEBUG and
// CODE_SEARCH_DEBUG environment variables, following the env-var-gated
// logging convention used throughout this codebase.
package debug

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu             sync.Mutex
	output         = os.Stdout
	enabledCache   *bool
	rankingEnabled *bool
)

// Enabled reports whether DEBUG=1 stage diagnostics are active. The result
// is cached per-process since the environment does not change mid-run.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	if enabledCache == nil {
		v := os.Getenv("DEBUG") == "1"
		enabledCache = &v
	}
	return *enabledCache
}

// RankingFieldsEnabled reports whether CODE_SEARCH_DEBUG=1 is set, meaning
// formatters should print ranking fields alongside each result.
func RankingFieldsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	if rankingEnabled == nil {
		v := os.Getenv("CODE_SEARCH_DEBUG") == "1"
		rankingEnabled = &v
	}
	return *rankingEnabled
}

// SetOutput redirects debug output, primarily for tests.
func SetOutput(w *os.File) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Printf writes a formatted debug line when Enabled.
func Printf(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "[debug] "+format+"\n", args...)
}

// Stage logs entry into a pipeline stage by name, with a free-form detail
// string.
func Stage(name string, detail string) {
	Printf("stage=%s %s", name, detail)
}

// resetForTest clears the cached environment snapshot; only used by tests
// that manipulate DEBUG/CODE_SEARCH_DEBUG via os.Setenv.
func resetForTest() {
	mu.Lock()
	defer mu.Unlock()
	enabledCache = nil
	rankingEnabled = nil
}
