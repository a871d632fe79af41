// Package console is a line-oriented host for the command registry. Each
// input line is split on whitespace; the first word is the label the
// command was invoked with and the rest is the command line itself:
//
//	calc add 1 2
//	calc help
//	calc
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/vk/cmdgrid/internal/chat"
	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/registry"
	"github.com/vk/cmdgrid/internal/throttle"
)

// Dispatcher is the part of the registry a host needs.
type Dispatcher interface {
	Dispatch(caller command.Caller, label string, tokens []string) registry.Outcome
	Translate(key, def string, args ...any) string
}

// Config controls the console host.
type Config struct {
	// Caller is the ID the console user is checked against. Defaults to
	// "console".
	Caller string
	// Operator marks the console user as an operator.
	Operator bool
	// Color renders style codes as ANSI escapes instead of stripping them.
	Color bool
	// Prompt is written before every line is read, when not empty.
	Prompt string
	// RatePerSecond and Burst throttle dispatches. Zero disables throttling.
	RatePerSecond float64
	Burst         int
}

// Host reads command lines and writes replies.
type Host struct {
	disp    Dispatcher
	cfg     Config
	limiter *throttle.Limiter
	logger  *slog.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a console host writing replies to out.
func New(disp Dispatcher, cfg Config, out io.Writer, logger *slog.Logger) *Host {
	if cfg.Caller == "" {
		cfg.Caller = "console"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		disp:    disp,
		cfg:     cfg,
		limiter: throttle.New(cfg.RatePerSecond, cfg.Burst),
		logger:  logger.With("host", "console"),
		out:     out,
	}
}

// Run handles lines from in until it is exhausted or ctx is done.
func (h *Host) Run(ctx context.Context, in io.Reader) error {
	h.logger.Debug("Console host started.", "caller", h.cfg.Caller)
	defer h.logger.Debug("Console host stopped.")

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errs <- nil
				return
			}
		}
		errs <- scanner.Err()
	}()

	h.prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-errs; err != nil {
					return fmt.Errorf("failed to read console input: %w", err)
				}
				return ctx.Err()
			}
			h.HandleLine(line)
			h.prompt()
		}
	}
}

// HandleLine dispatches one line. ok is false when the line was blank or
// dropped by the throttle.
func (h *Host) HandleLine(line string) (out registry.Outcome, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return registry.Outcome{}, false
	}

	c := &caller{id: h.cfg.Caller, op: h.cfg.Operator, host: h}
	if !h.limiter.Allow(c.id) {
		h.logger.Debug("Dropping throttled command line.", "caller", c.id)
		c.Send(h.disp.Translate("command_throttled", "&eSlow down! Try again in a moment."))
		return registry.Outcome{}, false
	}

	out = h.disp.Dispatch(c, fields[0], fields[1:])
	h.logger.Debug("Command line dispatched.", "label", fields[0], "command", out.Command, "status", out.Status.String())
	return out, true
}

func (h *Host) prompt() {
	if h.cfg.Prompt == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprint(h.out, h.cfg.Prompt)
}

func (h *Host) println(message string) {
	if h.cfg.Color {
		message = chat.ToANSI(message)
	} else {
		message = chat.Strip(message)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintln(h.out, message)
}

// caller is the console user as seen by commands.
type caller struct {
	id   string
	op   bool
	host *Host
}

func (c *caller) ID() string          { return c.id }
func (c *caller) Operator() bool      { return c.op }
func (c *caller) Send(message string) { c.host.println(message) }
