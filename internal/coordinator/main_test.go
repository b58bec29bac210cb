package coordinator_test

import (
	"testing"

	"go.uber.org/goleak"
)

// Verifies that no goroutine and no worker reaper outlives its job by more
// than the verifier's grace period.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
