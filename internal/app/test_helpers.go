package app

import (
	"os"
	"testing"

	"github.com/vk/cmdgrid/internal/registry"
	"github.com/vk/cmdgrid/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Logs and
// console replies share the returned buffer.
func SetupAppTest(t *testing.T, cfg *Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(logBuffer, cfg, modules...)

	t.Cleanup(func() {
		if os.Getenv("CMDGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
