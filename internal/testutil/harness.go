package testutil

import (
	"bytes"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/vk/cmdgrid/internal/permission"
	"github.com/vk/cmdgrid/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// NewLogger returns a debug-level text logger writing into buf.
func NewLogger(buf *SafeBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Harness bundles a registry with the collaborators tests usually poke at.
type Harness struct {
	Registry *registry.Registry
	Store    *permission.Memory
	Logs     *SafeBuffer
}

// NewHarness builds a registry backed by an in-memory permission store and a
// captured logger. cfg.Store and cfg.Logger are overwritten.
func NewHarness(t *testing.T, cfg registry.Config) *Harness {
	t.Helper()

	logs := &SafeBuffer{}
	store := permission.NewMemory()
	cfg.Store = store
	cfg.Logger = NewLogger(logs)

	h := &Harness{
		Registry: registry.New(cfg),
		Store:    store,
		Logs:     logs,
	}

	t.Cleanup(func() {
		if os.Getenv("CMDGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return h
}
