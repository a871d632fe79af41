package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/vk/cmdgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Defaults are the flag defaults, read from the environment.
type Defaults struct {
	Host               string   `env:"CMDGRID_HOST" envDefault:"console"`
	Version            string   `env:"CMDGRID_VERSION" envDefault:"dev"`
	Locale             string   `env:"CMDGRID_LOCALE" envDefault:"en-US"`
	LocalesPath        string   `env:"CMDGRID_LOCALES_PATH"`
	ManifestPath       string   `env:"CMDGRID_MANIFEST_PATH"`
	ParentPermission   string   `env:"CMDGRID_PARENT_PERMISSION" envDefault:"cmdgrid.*"`
	PermissionBase     string   `env:"CMDGRID_PERMISSION_BASE" envDefault:"cmdgrid."`
	Grants             []string `env:"CMDGRID_GRANTS" envSeparator:","`
	Caller             string   `env:"CMDGRID_CALLER" envDefault:"console"`
	Operator           bool     `env:"CMDGRID_OPERATOR" envDefault:"true"`
	Color              bool     `env:"CMDGRID_COLOR" envDefault:"true"`
	Prompt             string   `env:"CMDGRID_PROMPT" envDefault:"> "`
	RemoteURL          string   `env:"CMDGRID_REMOTE_URL"`
	RemoteNamespace    string   `env:"CMDGRID_REMOTE_NAMESPACE" envDefault:"/"`
	InsecureSkipVerify bool     `env:"CMDGRID_INSECURE_SKIP_VERIFY"`
	RatePerSecond      float64  `env:"CMDGRID_RATE" envDefault:"5"`
	Burst              int      `env:"CMDGRID_BURST" envDefault:"10"`
	LogFormat          string   `env:"CMDGRID_LOG_FORMAT" envDefault:"text"`
	LogLevel           string   `env:"CMDGRID_LOG_LEVEL" envDefault:"warn"`
	HealthcheckPort    int      `env:"CMDGRID_HEALTHCHECK_PORT" envDefault:"0"`
}

// LoadDotEnv loads variables from the given files (".env" when none are
// given) without overriding the real environment. Missing files are fine.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("No .env file found.", "path", f)
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
		slog.Debug("Loaded .env file.", "path", f)
	}
	return nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var defaults Defaults
	if err := env.Parse(&defaults); err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("parse env: %v", err)}
	}

	flagSet := flag.NewFlagSet("cmdgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
cmdgrid - A command registry and dispatcher with console and socket.io hosts.

Usage:
  cmdgrid [options]

Every input line is "<label> <command> [args...]", for example:
  calc add 1 2
  calc help

Options (defaults may also be set through CMDGRID_* environment variables
or a .env file):
`)
		flagSet.PrintDefaults()
	}

	hostFlag := flagSet.String("host", defaults.Host, "Host to serve commands from. Options: 'console' or 'remote'.")
	versionFlag := flagSet.String("app-version", defaults.Version, "Version reported by the version command.")
	localeFlag := flagSet.String("locale", defaults.Locale, "Locale for command messages, e.g. 'en-US' or 'de-DE'.")
	localesPathFlag := flagSet.String("locales-path", defaults.LocalesPath, "Directory with extra locale .hcl files.")
	manifestPathFlag := flagSet.String("manifest-path", defaults.ManifestPath, "Directory with calculator manifests replacing the built-in one.")
	parentPermFlag := flagSet.String("parent-permission", defaults.ParentPermission, "Permission that implies every attached command permission.")
	permBaseFlag := flagSet.String("permission-base", defaults.PermissionBase, "Prefix for generated command permission names.")
	grants := stringList(defaults.Grants)
	flagSet.Var(&grants, "grant", "Grant a permission as subject:permission, or deny it as subject:-permission. Repeatable.")
	callerFlag := flagSet.String("caller", defaults.Caller, "Caller ID of the console user.")
	operatorFlag := flagSet.Bool("operator", defaults.Operator, "Treat the console user as an operator.")
	colorFlag := flagSet.Bool("color", defaults.Color, "Render color codes as ANSI escapes on the console.")
	promptFlag := flagSet.String("prompt", defaults.Prompt, "Console prompt.")
	remoteURLFlag := flagSet.String("remote-url", defaults.RemoteURL, "socket.io server URL for the remote host.")
	remoteNSFlag := flagSet.String("remote-namespace", defaults.RemoteNamespace, "socket.io namespace for the remote host.")
	insecureFlag := flagSet.Bool("insecure-skip-verify", defaults.InsecureSkipVerify, "Skip TLS certificate verification for the remote host.")
	rateFlag := flagSet.Float64("rate", defaults.RatePerSecond, "Commands per second allowed per caller. 0 disables throttling.")
	burstFlag := flagSet.Int("burst", defaults.Burst, "Burst size for the per-caller throttle.")
	healthPortFlag := flagSet.Int("healthcheck-port", defaults.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", flagSet.Arg(0))}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Host:               strings.ToLower(*hostFlag),
		Version:            *versionFlag,
		Locale:             *localeFlag,
		LocalesPath:        *localesPathFlag,
		ManifestPath:       *manifestPathFlag,
		ParentPermission:   *parentPermFlag,
		PermissionBase:     *permBaseFlag,
		Grants:             grants,
		Caller:             *callerFlag,
		Operator:           *operatorFlag,
		Color:              *colorFlag,
		Prompt:             *promptFlag,
		RemoteURL:          *remoteURLFlag,
		RemoteNamespace:    *remoteNSFlag,
		InsecureSkipVerify: *insecureFlag,
		RatePerSecond:      *rateFlag,
		Burst:              *burstFlag,
		LogFormat:          logFormat,
		LogLevel:           logLevel,
		HealthcheckPort:    *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
