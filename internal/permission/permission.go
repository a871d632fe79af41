// Package permission defines the contract the registry consumes from a
// permission store, plus a small in-memory store used by the bundled hosts
// and by tests.
package permission

import (
	"fmt"
	"strings"
)

// Default is the policy applied when a subject has no explicit grant.
type Default int

const (
	// DefaultOp grants the permission to operators only.
	DefaultOp Default = iota
	// DefaultTrue grants the permission to everyone.
	DefaultTrue
	// DefaultFalse grants the permission to no one.
	DefaultFalse
	// DefaultNotOp grants the permission to everyone except operators.
	DefaultNotOp
)

func (d Default) String() string {
	switch d {
	case DefaultTrue:
		return "true"
	case DefaultFalse:
		return "false"
	case DefaultNotOp:
		return "not_op"
	default:
		return "op"
	}
}

// ParseDefault accepts "true", "false", "op" and "not_op" (case-insensitive).
func ParseDefault(s string) (Default, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "op", "":
		return DefaultOp, nil
	case "true":
		return DefaultTrue, nil
	case "false":
		return DefaultFalse, nil
	case "not_op", "notop", "!op":
		return DefaultNotOp, nil
	}
	return DefaultOp, fmt.Errorf("unknown permission default %q", s)
}

// Allows applies the policy to a subject without any explicit grant.
func (d Default) Allows(operator bool) bool {
	switch d {
	case DefaultTrue:
		return true
	case DefaultFalse:
		return false
	case DefaultNotOp:
		return !operator
	default:
		return operator
	}
}

// Permission is an opaque named node. Identity is the name.
type Permission struct {
	Name    string
	Default Default
}

// Subject is anything permissions can be checked against.
type Subject interface {
	ID() string
	Operator() bool
}

// Store is the external permission service.
type Store interface {
	// Create returns the permission with the given name, creating it with
	// def when it does not exist yet.
	Create(name string, def Default) *Permission
	// DeclareParent makes holding parent imply child (with value inherit).
	DeclareParent(child, parent *Permission, inherit bool)
	// Has reports whether subject holds p.
	Has(subject Subject, p *Permission) bool
}
