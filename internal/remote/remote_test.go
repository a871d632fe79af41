package remote

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/permission"
	"github.com/vk/cmdgrid/internal/registry"
	"github.com/vk/cmdgrid/internal/testutil"
)

func newTestHost(t *testing.T, cfg Config) *Host {
	t.Helper()
	h := testutil.NewHarness(t, registry.Config{Version: "3.1"})
	require.NoError(t, h.Registry.Add(command.Meta{Name: "whoami", Description: "Prints the caller",
		Permission: &command.PermissionSpec{Name: "remote.whoami", Default: permission.DefaultTrue}},
		func(c command.Caller, a *command.Args) (bool, error) {
			c.Send("§b" + c.ID())
			return true, nil
		}))
	require.NoError(t, h.Registry.Add(command.Meta{Name: "ops", Description: "Operators only",
		Permission: &command.PermissionSpec{Name: "remote.ops", Default: permission.DefaultOp}},
		func(c command.Caller, a *command.Args) (bool, error) { return true, nil }))
	return New(h.Registry, cfg, testutil.NewLogger(h.Logs))
}

func TestServe(t *testing.T) {
	host := newTestHost(t, Config{})

	tests := []struct {
		name string
		req  Request
		want Reply
	}{
		{
			name: "handled",
			req:  Request{ID: "1", Caller: "alice", Line: "srv whoami"},
			want: Reply{ID: "1", Caller: "alice", Command: "whoami", Status: "handled", Handled: true, Messages: []string{"alice"}},
		},
		{
			name: "not found",
			req:  Request{ID: "2", Caller: "alice", Line: "srv nope"},
			want: Reply{ID: "2", Caller: "alice", Status: "not_found", Handled: true, Messages: []string{"Command not found!"}},
		},
		{
			name: "denied",
			req:  Request{ID: "3", Caller: "alice", Line: "srv ops"},
			want: Reply{ID: "3", Caller: "alice", Command: "ops", Status: "permission_denied", Handled: true, Messages: []string{"Permission denied!"}},
		},
		{
			name: "operator",
			req:  Request{ID: "4", Caller: "root", Operator: true, Line: "srv ops"},
			want: Reply{ID: "4", Caller: "root", Command: "ops", Status: "handled", Handled: true, Messages: []string{}},
		},
		{
			name: "version",
			req:  Request{Caller: "bob", Line: "srv   version  "},
			want: Reply{Caller: "bob", Command: "version", Status: "handled", Handled: true, Messages: []string{"The plugin version: 3.1", " "}},
		},
		{
			name: "blank line",
			req:  Request{ID: "5", Caller: "bob", Line: "   "},
			want: Reply{ID: "5", Caller: "bob", Status: StatusInvalid, Messages: []string{}},
		},
		{
			name: "missing caller",
			req:  Request{ID: "6", Line: "srv whoami"},
			want: Reply{ID: "6", Status: StatusInvalid, Messages: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := host.Serve(tt.req)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Serve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestServe_Throttled(t *testing.T) {
	host := newTestHost(t, Config{RatePerSecond: 0.001, Burst: 1})

	first := host.Serve(Request{Caller: "alice", Line: "srv whoami"})
	second := host.Serve(Request{Caller: "alice", Line: "srv whoami"})
	other := host.Serve(Request{Caller: "bob", Line: "srv whoami"})

	assert.Equal(t, "handled", first.Status)
	assert.Equal(t, StatusThrottled, second.Status)
	assert.Equal(t, []string{"Slow down! Try again in a moment."}, second.Messages)
	assert.Equal(t, "handled", other.Status)
}

func TestDecodeRequest(t *testing.T) {
	want := Request{ID: "9", Caller: "alice", Operator: true, Line: "srv whoami"}

	fromMap, err := decodeRequest(map[string]any{"id": "9", "caller": "alice", "operator": true, "line": "srv whoami"})
	require.NoError(t, err)
	assert.Equal(t, want, fromMap)

	fromString, err := decodeRequest(`{"id":"9","caller":"alice","operator":true,"line":"srv whoami"}`)
	require.NoError(t, err)
	assert.Equal(t, want, fromString)

	_, err = decodeRequest("not json")
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	host := New(nil, Config{URL: "http://localhost:3000"}, nil)

	assert.Equal(t, DefaultCommandEvent, host.cfg.CommandEvent)
	assert.Equal(t, DefaultReplyEvent, host.cfg.ReplyEvent)
	assert.Equal(t, "/", host.cfg.Namespace)
}

func TestRun_InvalidURL(t *testing.T) {
	host := New(nil, Config{URL: "not a url"}, nil)

	err := host.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid remote URL")
}
