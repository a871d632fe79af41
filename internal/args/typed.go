package args

import (
	"strconv"
	"strings"
)

// String returns the flag at index i, or def when there is none.
func (a *Args) String(i int, def string) string {
	if v, ok := a.flag(i); ok {
		return v
	}
	return def
}

// Param returns the value of the parameter key, or def when it is absent.
func (a *Args) Param(key, def string) string {
	if v, ok := a.params[key]; ok {
		return v
	}
	return def
}

// Int returns the flag at index i parsed as an int, or def.
func (a *Args) Int(i int, def int) int {
	v, ok := a.flag(i)
	return parseInt(v, ok, def)
}

// IntParam returns the parameter key parsed as an int, or def.
func (a *Args) IntParam(key string, def int) int {
	v, ok := a.params[key]
	return parseInt(v, ok, def)
}

// Int64 returns the flag at index i parsed as an int64, or def.
func (a *Args) Int64(i int, def int64) int64 {
	v, ok := a.flag(i)
	return parseInt64(v, ok, def)
}

// Int64Param returns the parameter key parsed as an int64, or def.
func (a *Args) Int64Param(key string, def int64) int64 {
	v, ok := a.params[key]
	return parseInt64(v, ok, def)
}

// Float returns the flag at index i parsed as a float64, or def.
func (a *Args) Float(i int, def float64) float64 {
	v, ok := a.flag(i)
	return parseFloat(v, ok, def)
}

// FloatParam returns the parameter key parsed as a float64, or def.
func (a *Args) FloatParam(key string, def float64) float64 {
	v, ok := a.params[key]
	return parseFloat(v, ok, def)
}

// Bool reports whether the flag at index i is one of the truthy spellings.
func (a *Args) Bool(i int) bool {
	v, _ := a.flag(i)
	return ParseBool(v)
}

// BoolParam reports whether the parameter key is one of the truthy spellings.
func (a *Args) BoolParam(key string) bool {
	return ParseBool(a.params[key])
}

// ParseBool is true for "true", "yes", "on", "1" and "enable" in any case,
// and false for anything else.
func ParseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1", "enable":
		return true
	}
	return false
}

func parseInt(v string, ok bool, def int) int {
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseInt64(v string, ok bool, def int64) int64 {
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func parseFloat(v string, ok bool, def float64) float64 {
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
