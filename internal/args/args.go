// Package args turns a flat list of command tokens into a structured,
// read-only bundle of positional flags and named parameters.
//
// The grammar is intentionally small. The first token is the command label.
// Every following token that starts with '-' names a parameter and eats the
// next token as its value; a trailing '-name' with nothing after it degrades
// to a plain flag. Everything else is a positional flag.
package args

import (
	"errors"
	"strings"
)

// ParamPrefix marks a token as the key of a named parameter.
const ParamPrefix = "-"

// ErrEmptyInput is returned by Parse when it is given no tokens at all.
var ErrEmptyInput = errors.New("args: at least one token (the command label) is required")

// Args is the parsed form of a command line. It is immutable once built.
type Args struct {
	label  string
	flags  []string
	params map[string]string
}

// Parse builds an Args from raw tokens. tokens[0] becomes the label and is
// never part of the flags or parameters.
func Parse(tokens []string) (*Args, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}

	a := &Args{
		label:  tokens[0],
		flags:  make([]string, 0, len(tokens)-1),
		params: make(map[string]string),
	}

	for i := 1; i < len(tokens); i++ {
		token := tokens[i]
		if !strings.HasPrefix(token, ParamPrefix) {
			a.flags = append(a.flags, token)
			continue
		}

		key := strings.TrimPrefix(token, ParamPrefix)
		if i+1 < len(tokens) {
			i++
			a.params[key] = tokens[i]
		} else {
			a.flags = append(a.flags, key)
		}
	}

	return a, nil
}

// MustParse is like Parse but panics on empty input. Intended for tests and
// callers that already guarantee a label.
func MustParse(tokens ...string) *Args {
	a, err := Parse(tokens)
	if err != nil {
		panic(err)
	}
	return a
}

// Label returns the token the command was invoked with.
func (a *Args) Label() string { return a.label }

// IsEmpty reports whether there are neither flags nor parameters.
func (a *Args) IsEmpty() bool { return len(a.flags) == 0 && len(a.params) == 0 }

// Size returns the number of flags plus the number of parameters.
func (a *Args) Size() int { return len(a.flags) + len(a.params) }

// Flags returns a copy of the positional flags in input order.
func (a *Args) Flags() []string {
	out := make([]string, len(a.flags))
	copy(out, a.flags)
	return out
}

// Params returns a copy of the named parameters.
func (a *Args) Params() map[string]string {
	out := make(map[string]string, len(a.params))
	for k, v := range a.params {
		out[k] = v
	}
	return out
}

// HasFlag reports whether flag was given positionally.
func (a *Args) HasFlag(flag string) bool {
	for _, f := range a.flags {
		if f == flag {
			return true
		}
	}
	return false
}

// HasFlags reports whether every one of flags was given.
func (a *Args) HasFlags(flags ...string) bool {
	for _, f := range flags {
		if !a.HasFlag(f) {
			return false
		}
	}
	return true
}

// HasParam reports whether a parameter named key was given.
func (a *Args) HasParam(key string) bool {
	_, ok := a.params[key]
	return ok
}

// HasParams reports whether every one of keys was given.
func (a *Args) HasParams(keys ...string) bool {
	for _, k := range keys {
		if !a.HasParam(k) {
			return false
		}
	}
	return true
}

func (a *Args) flag(i int) (string, bool) {
	if i < 0 || i >= len(a.flags) {
		return "", false
	}
	return a.flags[i], true
}
