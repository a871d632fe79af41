// Package manifest reads command metadata from HCL files and binds it to
// the methods of a provider value.
//
// A manifest looks like this:
//
//	command "Add" {
//	  aliases     = ["a", "plus"]
//	  usage       = "<x> <y>"
//	  description = "Adds two numbers"
//
//	  permission {
//	    default       = op
//	    attach_parent = true
//	  }
//	}
//
// The block label names the Go method implementing the command. The
// command name defaults to the method name.
package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/fsutil"
	"github.com/vk/cmdgrid/internal/permission"
	"github.com/zclconf/go-cty/cty"
)

// Extension is the file extension LoadDir looks for.
const Extension = ".hcl"

// Definition is one decoded command block.
type Definition struct {
	// Method is the block label: the name of the method to bind.
	Method string
	Meta   command.Meta
	Range  hcl.Range
}

// evalContext exposes the bare words accepted by `permission.default`.
var evalContext = &hcl.EvalContext{
	Variables: map[string]cty.Value{
		"op":     cty.StringVal(permission.DefaultOp.String()),
		"not_op": cty.StringVal(permission.DefaultNotOp.String()),
	},
}

// Parse decodes a manifest held in memory. filename is only used in
// diagnostics.
func Parse(src []byte, filename string) ([]Definition, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}
	defs, diags := decode(file.Body)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}
	return defs, nil
}

// ParseFile decodes an already parsed HCL file.
func ParseFile(ctx context.Context, file *hcl.File, path string) ([]Definition, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)

	defs, diags := decode(file.Body)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}
	logger.Debug("Decoded command manifest.", "commands", len(defs))
	return defs, nil
}

// LoadDir decodes every manifest under dir, in lexical path order. A
// method declared twice is an error.
func LoadDir(ctx context.Context, dir string) ([]Definition, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := fsutil.FindFilesByExtension(dir, Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests in %s: %w", dir, err)
	}
	logger.Debug("Discovered manifest files.", "dir", dir, "count", len(paths))

	parser := hclparse.NewParser()
	seen := make(map[string]hcl.Range)
	var all []Definition

	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
		}
		defs, err := ParseFile(ctx, file, path)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			if prev, ok := seen[d.Method]; ok {
				return nil, fmt.Errorf("%s: command %q already declared at %s", d.Range, d.Method, prev)
			}
			seen[d.Method] = d.Range
		}
		all = append(all, defs...)
	}
	return all, nil
}

func decode(body hcl.Body) ([]Definition, hcl.Diagnostics) {
	content, diags := body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	defs := make([]Definition, 0, len(content.Blocks))
	seen := make(map[string]*hcl.Block)
	for _, block := range content.Blocks {
		method := block.Labels[0]
		if prev, ok := seen[method]; ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate command block",
				Detail:   fmt.Sprintf("Method %q was already declared at %s.", method, prev.DefRange),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[method] = block

		def, blockDiags := decodeCommand(block)
		diags = append(diags, blockDiags...)
		if blockDiags.HasErrors() {
			continue
		}
		defs = append(defs, def)
	}
	return defs, diags
}

func decodeCommand(block *hcl.Block) (Definition, hcl.Diagnostics) {
	var body commandBody
	diags := gohcl.DecodeBody(block.Body, evalContext, &body)
	if diags.HasErrors() {
		return Definition{}, diags
	}

	def := Definition{
		Method: block.Labels[0],
		Range:  block.DefRange,
		Meta: command.Meta{
			Name:        body.Name,
			Aliases:     body.Aliases,
			Usage:       body.Usage,
			Description: body.Description,
		},
	}
	if def.Meta.Name == "" {
		def.Meta.Name = def.Method
	}

	if p := body.Permission; p != nil {
		policy, permDiags := decodeDefault(p.Default)
		diags = append(diags, permDiags...)
		if permDiags.HasErrors() {
			return Definition{}, diags
		}
		def.Meta.Permission = &command.PermissionSpec{
			Name:         p.Name,
			Default:      policy,
			AttachParent: p.AttachParent,
		}
	}
	return def, diags
}

// decodeDefault evaluates `permission.default`. It accepts booleans, the
// bare words op and not_op, and any string permission.ParseDefault knows.
func decodeDefault(expr hcl.Expression) (permission.Default, hcl.Diagnostics) {
	if expr == nil {
		return permission.DefaultOp, nil
	}
	val, diags := expr.Value(evalContext)
	if diags.HasErrors() {
		return permission.DefaultOp, diags
	}
	if val.IsNull() {
		return permission.DefaultOp, nil
	}

	rng := expr.Range()
	switch {
	case val.Type().Equals(cty.Bool) && val.IsKnown():
		if val.True() {
			return permission.DefaultTrue, nil
		}
		return permission.DefaultFalse, nil
	case val.Type().Equals(cty.String) && val.IsKnown():
		d, err := permission.ParseDefault(val.AsString())
		if err != nil {
			return permission.DefaultOp, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid permission default",
				Detail:   fmt.Sprintf("Got %q; expected true, false, op or not_op.", val.AsString()),
				Subject:  &rng,
			}}
		}
		return d, nil
	}
	return permission.DefaultOp, hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid permission default",
		Detail:   fmt.Sprintf("Expected true, false, op or not_op, got a value of type %s.", val.Type().FriendlyName()),
		Subject:  &rng,
	}}
}
