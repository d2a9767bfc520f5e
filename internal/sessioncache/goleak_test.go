package sessioncache

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain guards the flock-based append path against leaking an fd or
// goroutine across cache instances.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
