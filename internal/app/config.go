package app

import (
	"errors"
	"fmt"
	"strings"
)

// Hosts an App can run.
const (
	HostConsole = "console"
	HostRemote  = "remote"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Host    string
	Version string

	Locale       string
	LocalesPath  string // extra locale .hcl files
	ManifestPath string // replaces the calculator's embedded manifest

	ParentPermission string
	PermissionBase   string
	// Grants are "subject:permission" pairs applied at startup; a leading
	// '-' on the permission denies it instead.
	Grants []string

	// Console host.
	Caller   string
	Operator bool
	Color    bool
	Prompt   string

	// Remote host.
	RemoteURL          string
	RemoteNamespace    string
	InsecureSkipVerify bool

	RatePerSecond float64
	Burst         int

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// Grant is a parsed Config.Grants entry.
type Grant struct {
	Subject    string
	Permission string
	Value      bool
}

func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Host {
	case "":
		cfg.Host = HostConsole
	case HostConsole, HostRemote:
	default:
		return nil, fmt.Errorf("unknown host %q: must be %q or %q", cfg.Host, HostConsole, HostRemote)
	}
	if cfg.Host == HostRemote && cfg.RemoteURL == "" {
		return nil, errors.New("RemoteURL is required when the remote host is selected")
	}
	if cfg.RatePerSecond < 0 {
		return nil, errors.New("RatePerSecond cannot be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if _, err := ParseGrants(cfg.Grants); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseGrants parses "subject:permission" and "subject:-permission" entries.
func ParseGrants(entries []string) ([]Grant, error) {
	grants := make([]Grant, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		subject, perm, ok := strings.Cut(entry, ":")
		subject, perm = strings.TrimSpace(subject), strings.TrimSpace(perm)
		if !ok || subject == "" || perm == "" || perm == "-" {
			return nil, fmt.Errorf("invalid grant %q: expected subject:permission", entry)
		}
		g := Grant{Subject: subject, Permission: perm, Value: true}
		if strings.HasPrefix(perm, "-") {
			g.Permission = perm[1:]
			g.Value = false
		}
		grants = append(grants, g)
	}
	return grants, nil
}
