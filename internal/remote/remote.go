// Package remote dispatches command lines received from a socket.io server.
//
// The server emits the command event with a JSON object:
//
//	{"id": "42", "caller": "alice", "operator": false, "line": "calc add 1 2"}
//
// and receives one reply event per request carrying everything that was
// sent to the caller, with style codes removed.
package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vk/cmdgrid/internal/chat"
	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/registry"
	"github.com/vk/cmdgrid/internal/throttle"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	DefaultCommandEvent = "command"
	DefaultReplyEvent   = "reply"
)

// Dispatcher is the part of the registry a host needs.
type Dispatcher interface {
	Dispatch(caller command.Caller, label string, tokens []string) registry.Outcome
	Translate(key, def string, args ...any) string
}

// Config controls the remote host.
type Config struct {
	URL                string
	Namespace          string
	CommandEvent       string
	ReplyEvent         string
	InsecureSkipVerify bool
	// RatePerSecond and Burst throttle each remote caller. Zero disables
	// throttling.
	RatePerSecond float64
	Burst         int
}

// Request is one command line sent by the server.
type Request struct {
	ID       string `json:"id,omitempty"`
	Caller   string `json:"caller"`
	Operator bool   `json:"operator,omitempty"`
	Line     string `json:"line"`
}

// Reply is what the host emits back for a Request.
type Reply struct {
	ID       string   `json:"id,omitempty"`
	Caller   string   `json:"caller"`
	Command  string   `json:"command,omitempty"`
	Status   string   `json:"status"`
	Handled  bool     `json:"handled"`
	Messages []string `json:"messages"`
}

// Reply statuses not covered by registry.Status.
const (
	StatusInvalid   = "invalid"
	StatusThrottled = "throttled"
)

// Host connects to a socket.io server and serves command requests.
type Host struct {
	disp    Dispatcher
	cfg     Config
	limiter *throttle.Limiter
	logger  *slog.Logger
}

// New creates a remote host. It does not connect until Run.
func New(disp Dispatcher, cfg Config, logger *slog.Logger) *Host {
	if cfg.CommandEvent == "" {
		cfg.CommandEvent = DefaultCommandEvent
	}
	if cfg.ReplyEvent == "" {
		cfg.ReplyEvent = DefaultReplyEvent
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		disp:    disp,
		cfg:     cfg,
		limiter: throttle.New(cfg.RatePerSecond, cfg.Burst),
		logger:  logger.With("host", "remote", "url", cfg.URL, "namespace", cfg.Namespace),
	}
}

// Run connects and serves requests until ctx is done. A failed connection
// attempt is returned as an error.
func (h *Host) Run(ctx context.Context) error {
	parsedURL, err := url.Parse(h.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("invalid remote URL %q", h.cfg.URL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if h.cfg.InsecureSkipVerify {
		h.logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(h.cfg.Namespace, opts)
	defer func() {
		h.logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	var connected atomic.Bool
	failed := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		connected.Store(true)
		h.logger.Info("Connected to remote command server.", "sid", io.Id())
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		connected.Store(false)
		h.logger.Warn("Disconnected from remote command server.", "reason", reason)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case failed <- err:
		default:
		}
	})
	io.On(types.EventName(h.cfg.CommandEvent), func(data ...any) {
		if len(data) == 0 {
			h.logger.Warn("Ignoring empty command event.")
			return
		}
		req, err := decodeRequest(data[0])
		if err != nil {
			h.logger.Warn("Ignoring malformed command event.", "error", err)
			return
		}
		reply := h.Serve(req)
		if err := io.Emit(h.cfg.ReplyEvent, reply); err != nil {
			h.logger.Error("Failed to emit reply.", "error", err, "id", reply.ID)
		}
	})

	h.logger.Debug("Connecting to remote command server.")
	io.Connect()

	select {
	case <-ctx.Done():
		return nil
	case err := <-failed:
		if connected.Load() {
			return fmt.Errorf("remote connection lost: %w", err)
		}
		return fmt.Errorf("failed to connect to %s: %w", h.cfg.URL, err)
	}
}

// Serve dispatches one request and collects the reply.
func (h *Host) Serve(req Request) Reply {
	c := &caller{id: req.Caller, op: req.Operator}
	reply := Reply{ID: req.ID, Caller: req.Caller}

	fields := strings.Fields(req.Line)
	if req.Caller == "" || len(fields) == 0 {
		reply.Status = StatusInvalid
		reply.Messages = []string{}
		return reply
	}

	if !h.limiter.Allow(c.id) {
		h.logger.Debug("Dropping throttled command line.", "caller", c.id)
		c.Send(h.disp.Translate("command_throttled", "&eSlow down! Try again in a moment."))
		reply.Status = StatusThrottled
		reply.Handled = true
		reply.Messages = c.messages()
		return reply
	}

	out := h.disp.Dispatch(c, fields[0], fields[1:])
	h.logger.Debug("Command line dispatched.", "caller", c.id, "command", out.Command, "status", out.Status.String())

	reply.Command = out.Command
	reply.Status = out.Status.String()
	reply.Handled = out.Handled
	reply.Messages = c.messages()
	return reply
}

// decodeRequest accepts whatever the socket.io decoder produced for a JSON
// object, or a JSON string holding one.
func decodeRequest(v any) (Request, error) {
	var raw []byte
	switch data := v.(type) {
	case string:
		raw = []byte(data)
	case []byte:
		raw = data
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return Request{}, err
		}
		raw = b
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// caller buffers everything sent to a remote user during one dispatch.
type caller struct {
	id string
	op bool

	mu   sync.Mutex
	sent []string
}

func (c *caller) ID() string     { return c.id }
func (c *caller) Operator() bool { return c.op }

func (c *caller) Send(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, chat.Strip(message))
}

func (c *caller) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sent))
	copy(out, c.sent)
	return out
}
