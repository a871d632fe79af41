package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A manifest with a syntax error makes app.NewApp panic while the
	// calculator module registers.
	invalidHCL := `
		command "Add" {
			description = "Adds"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tempDir, "calc.hcl"), []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-manifest-path", tempDir}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, strings.NewReader(""), args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to parse"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, strings.NewReader(""), args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, strings.NewReader(""), args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ConsoleSession(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"-color=false", "-prompt", "", "-app-version", "4.2"}
	in := strings.NewReader("calc mul 6 7\ncalc version\ncalc nope\n")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, in, args)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "= 42\nThe plugin version: 4.2\n \nCommand not found!\n", out.String())
}
