package config

import (
	"os"
	"testing"
)

// unsetenv removes keys for the duration of the test. Call t.Setenv on the
// same keys first so the original values are restored on cleanup.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}
