package manifest

import (
	"github.com/hashicorp/hcl/v2"
)

// fileSchema lists the top-level blocks a manifest may contain.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "command", LabelNames: []string{"method"}},
	},
}

// commandBody is the HCL shape of the body of one `command "<Method>"` block.
type commandBody struct {
	Name        string           `hcl:"name,optional"`
	Aliases     []string         `hcl:"aliases,optional"`
	Usage       string           `hcl:"usage,optional"`
	Description string           `hcl:"description"`
	Permission  *permissionBlock `hcl:"permission,block"`
}

type permissionBlock struct {
	Name         string         `hcl:"name,optional"`
	Default      hcl.Expression `hcl:"default,optional"`
	AttachParent bool           `hcl:"attach_parent,optional"`
}
