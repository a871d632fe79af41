// Package testutil holds shared fakes and harnesses for tests.
package testutil

import (
	"strings"
	"sync"

	"github.com/vk/cmdgrid/internal/chat"
)

// Caller is a command.Caller that records everything sent to it.
type Caller struct {
	Name string
	Op   bool

	mu       sync.Mutex
	messages []string
}

// NewCaller returns a non-operator caller named name.
func NewCaller(name string) *Caller {
	return &Caller{Name: name}
}

// NewOperator returns an operator caller named name.
func NewOperator(name string) *Caller {
	return &Caller{Name: name, Op: true}
}

// ID implements permission.Subject.
func (c *Caller) ID() string { return c.Name }

// Operator implements permission.Subject.
func (c *Caller) Operator() bool { return c.Op }

// Send implements command.Caller.
func (c *Caller) Send(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Messages returns everything received so far with style markers removed.
func (c *Caller) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.messages))
	for i, m := range c.messages {
		out[i] = chat.Strip(m)
	}
	return out
}

// Raw returns everything received so far, markers included.
func (c *Caller) Raw() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// Transcript joins Messages with newlines.
func (c *Caller) Transcript() string {
	return strings.Join(c.Messages(), "\n")
}

// Reset forgets every recorded message.
func (c *Caller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
