// Package calc is a small calculator whose commands are described by an
// HCL manifest and bound to Calculator methods by name.
package calc

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/manifest"
	"github.com/vk/cmdgrid/internal/registry"
)

//go:embed manifest.hcl
var embeddedManifest []byte

// Module implements the registry.Module interface for this package.
type Module struct {
	// ManifestDir replaces the embedded manifest when set.
	ManifestDir string

	calc *Calculator
}

// Register binds a fresh Calculator to the manifest and registers it.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx).With("module", "calc")

	var (
		defs []manifest.Definition
		err  error
	)
	if m.ManifestDir != "" {
		logger.Debug("Loading calculator manifest from directory.", "dir", m.ManifestDir)
		defs, err = manifest.LoadDir(ctx, m.ManifestDir)
	} else {
		defs, err = manifest.Parse(embeddedManifest, "calc/manifest.hcl")
	}
	if err != nil {
		return fmt.Errorf("calc: %w", err)
	}

	m.calc = &Calculator{}
	if err := r.Register(manifest.Bind(m.calc, defs)); err != nil {
		return fmt.Errorf("calc: %w", err)
	}
	logger.Debug("Calculator registered.", "commands", len(defs))
	return nil
}

// Calculator returns the provider bound by Register, or nil before it.
func (m *Module) Calculator() *Calculator { return m.calc }

// Calculator folds its arguments with one operator and remembers the last
// result.
type Calculator struct {
	mu     sync.Mutex
	memory float64
}

func (c *Calculator) Add(caller command.Caller, a *command.Args) error {
	return c.fold(caller, a, func(x, y float64) (float64, error) { return x + y, nil })
}

func (c *Calculator) Sub(caller command.Caller, a *command.Args) error {
	return c.fold(caller, a, func(x, y float64) (float64, error) { return x - y, nil })
}

func (c *Calculator) Mul(caller command.Caller, a *command.Args) error {
	return c.fold(caller, a, func(x, y float64) (float64, error) { return x * y, nil })
}

func (c *Calculator) Div(caller command.Caller, a *command.Args) error {
	return c.fold(caller, a, func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, command.Errorf("§cCannot divide by zero!")
		}
		return x / y, nil
	})
}

// Memory shows the stored result. "clear" resets it and -set replaces it.
func (c *Calculator) Memory(caller command.Caller, a *command.Args) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case a.HasFlag("clear"):
		c.memory = 0
	case a.HasParam("set"):
		v := a.FloatParam("set", math.NaN())
		if math.IsNaN(v) {
			caller.Send(fmt.Sprintf("§c'%s' is not a number!", a.Param("set", "")))
			return true
		}
		c.memory = v
	}
	caller.Send("§7Memory: §f" + format(c.memory, -1))
	return true
}

// Last returns the stored result.
func (c *Calculator) Last() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory
}

func (c *Calculator) fold(caller command.Caller, a *command.Args, op func(x, y float64) (float64, error)) error {
	operands := a.Flags()
	if len(operands) < 2 {
		return command.Errorf("§cUsage: /%s %s %s", a.BaseLabel, a.Label(), a.Command.Usage())
	}

	values := make([]float64, len(operands))
	for i, s := range operands {
		v := a.Float(i, math.NaN())
		if math.IsNaN(v) {
			return command.Errorf("§c'%s' is not a number!", s)
		}
		values[i] = v
	}

	result := values[0]
	for _, v := range values[1:] {
		var err error
		if result, err = op(result, v); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.memory = result
	c.mu.Unlock()

	caller.Send("§a= " + format(result, a.IntParam("precision", -1)))
	return nil
}

func format(v float64, precision int) string {
	if precision < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
