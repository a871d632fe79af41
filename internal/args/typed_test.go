package args

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTyped_Defaults(t *testing.T) {
	a := MustParse("cmd", "abc", "-n", "xyz")

	assert.Equal(t, "fallback", a.String(5, "fallback"))
	assert.Equal(t, "fallback", a.String(-1, "fallback"))
	assert.Equal(t, "fallback", a.Param("missing", "fallback"))

	assert.Equal(t, 7, a.Int(0, 7))
	assert.Equal(t, 7, a.IntParam("n", 7))
	assert.Equal(t, 7, a.IntParam("missing", 7))
	assert.Equal(t, int64(9), a.Int64(0, 9))
	assert.Equal(t, int64(9), a.Int64Param("n", 9))
	assert.Equal(t, 1.5, a.Float(0, 1.5))
	assert.Equal(t, 1.5, a.FloatParam("n", 1.5))
}

func TestTyped_Numbers(t *testing.T) {
	a := MustParse("cmd", "42", "-9000000000", "-big", "9000000000", "-f", "2.25", "-neg", "-3")

	// "-9000000000" names a parameter whose value is "-big".
	assert.Equal(t, 42, a.Int(0, 0))
	assert.Equal(t, int64(42), a.Int64(0, 0))
	assert.Equal(t, 42.0, a.Float(0, 0))
	assert.Equal(t, "-big", a.Param("9000000000", ""))
	assert.Equal(t, 2.25, a.FloatParam("f", 0))
	assert.Equal(t, -3, a.IntParam("neg", 0))
}

func TestTyped_Int64Range(t *testing.T) {
	a := MustParse("cmd", "-big", "9000000000")
	assert.Equal(t, int64(9000000000), a.Int64Param("big", 0))
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "TRUE", "True", "yes", "YeS", "on", "ON", "1", "enable", "Enable"}
	for _, s := range truthy {
		assert.True(t, ParseBool(s), "%q should be true", s)
	}

	falsy := []string{"", "false", "no", "off", "0", "2", "enabled", " true", "y"}
	for _, s := range falsy {
		assert.False(t, ParseBool(s), "%q should be false", s)
	}
}

func TestTyped_Bool(t *testing.T) {
	a := MustParse("cmd", "yes", "nope", "-on", "ENABLE", "-off", "false")

	assert.True(t, a.Bool(0))
	assert.False(t, a.Bool(1))
	assert.False(t, a.Bool(10))
	assert.True(t, a.BoolParam("on"))
	assert.False(t, a.BoolParam("off"))
	assert.False(t, a.BoolParam("absent"))
}
