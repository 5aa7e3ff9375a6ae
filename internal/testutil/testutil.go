package testutil

import (
	"testing"
	"time"
)

// Eventually polls cond until it returns true or the timeout elapses.
// Fails the test with msg on timeout.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}
