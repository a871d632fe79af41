package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/cmdgrid/internal/app"
)

func TestParse_Defaults(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, exit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, app.HostConsole, cfg.Host)
	assert.Equal(t, "dev", cfg.Version)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, "cmdgrid.*", cfg.ParentPermission)
	assert.Equal(t, "cmdgrid.", cfg.PermissionBase)
	assert.Equal(t, "console", cfg.Caller)
	assert.True(t, cfg.Operator)
	assert.Equal(t, 5.0, cfg.RatePerSecond)
	assert.Equal(t, 10, cfg.Burst)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParse_EnvironmentDefaults(t *testing.T) {
	t.Setenv("CMDGRID_HOST", "remote")
	t.Setenv("CMDGRID_REMOTE_URL", "http://localhost:3000")
	t.Setenv("CMDGRID_GRANTS", "alice:calc.mem,bob:-echo.echo")
	t.Setenv("CMDGRID_RATE", "0")

	cfg, _, err := Parse([]string{"-grant", "carol:calc.*"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, app.HostRemote, cfg.Host)
	assert.Equal(t, "http://localhost:3000", cfg.RemoteURL)
	assert.Equal(t, []string{"alice:calc.mem", "bob:-echo.echo", "carol:calc.*"}, cfg.Grants)
	assert.Zero(t, cfg.RatePerSecond)
}

func TestParse_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("CMDGRID_LOCALE", "de-DE")

	cfg, _, err := Parse([]string{"-locale", "en-US", "-log-level", "DEBUG", "-log-format", "json"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, exit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "-remote-url")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined"},
		{name: "positional", args: []string{"extra"}, wantErr: "unexpected argument"},
		{name: "log format", args: []string{"-log-format", "xml"}, wantErr: "invalid log-format"},
		{name: "log level", args: []string{"-log-level", "loud"}, wantErr: "invalid log-level"},
		{name: "host", args: []string{"-host", "telnet"}, wantErr: "unknown host"},
		{name: "remote without url", args: []string{"-host", "remote"}, wantErr: "RemoteURL is required"},
		{name: "bad grant", args: []string{"-grant", "alice"}, wantErr: "invalid grant"},
		{name: "bad env", env: map[string]string{"CMDGRID_BURST": "many"}, wantErr: "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, _, err := Parse(tt.args, &bytes.Buffer{})
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CMDGRID_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CMDGRID_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "loaded", os.Getenv("CMDGRID_TEST_DOTENV"))
}
