// Package chat handles the inline style markers used in command output.
//
// Messages carry style codes as a Marker rune followed by one code
// character (0-9, a-f for colors, k-o for formats, r for reset). Literal
// strings in source code use '&' instead, and TranslateAlternateCodes turns
// them into real markers. Hosts then either render the markers for a
// terminal (ToANSI) or drop them (Strip).
package chat

import (
	"strings"

	"github.com/gookit/color"
)

// Marker introduces a style code.
const Marker = '§'

// AltMarker is the human-friendly marker used in literal messages.
const AltMarker = '&'

const codes = "0123456789abcdefklmnorABCDEFKLMNOR"

var palette = map[byte]color.Color{
	'0': color.Black,
	'1': color.Blue,
	'2': color.Green,
	'3': color.Cyan,
	'4': color.Red,
	'5': color.Magenta,
	'6': color.Yellow,
	'7': color.White,
	'8': color.Gray,
	'9': color.LightBlue,
	'a': color.LightGreen,
	'b': color.LightCyan,
	'c': color.LightRed,
	'd': color.LightMagenta,
	'e': color.LightYellow,
	'f': color.LightWhite,
}

var formats = map[byte]color.Color{
	'k': color.OpBlink,
	'l': color.OpBold,
	'm': color.OpStrikethrough,
	'n': color.OpUnderscore,
	'o': color.OpItalic,
}

func isCode(b byte) bool {
	return strings.IndexByte(codes, b) >= 0
}

// TranslateAlternateCodes replaces alt followed by a valid code character
// with Marker and the lower-cased code. Anything else is left untouched.
func TranslateAlternateCodes(alt rune, s string) string {
	if !strings.ContainsRune(s, alt) {
		return s
	}
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] == alt && i+1 < len(rs) && rs[i+1] < 0x80 && isCode(byte(rs[i+1])) {
			b.WriteRune(Marker)
			b.WriteRune(toLower(rs[i+1]))
			i++
			continue
		}
		b.WriteRune(rs[i])
	}
	return b.String()
}

// Strip removes every Marker+code pair.
func Strip(s string) string {
	if !strings.ContainsRune(s, Marker) {
		return s
	}
	var b strings.Builder
	for _, seg := range segments(s) {
		b.WriteString(seg.text)
	}
	return b.String()
}

// ToANSI renders markers as terminal escape sequences. Color codes reset
// any active formats, 'r' resets everything.
func ToANSI(s string) string {
	if !strings.ContainsRune(s, Marker) {
		return s
	}
	var b strings.Builder
	for _, seg := range segments(s) {
		if seg.text == "" {
			continue
		}
		if len(seg.style) == 0 {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(color.New(seg.style...).Render(seg.text))
	}
	return b.String()
}

type segment struct {
	style []color.Color
	text  string
}

func segments(s string) []segment {
	var (
		out   []segment
		style []color.Color
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			cp := make([]color.Color, len(style))
			copy(cp, style)
			out = append(out, segment{style: cp, text: text.String()})
			text.Reset()
		}
	}

	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] != Marker || i+1 >= len(rs) || rs[i+1] >= 0x80 || !isCode(byte(rs[i+1])) {
			text.WriteRune(rs[i])
			continue
		}
		flush()
		code := byte(toLower(rs[i+1]))
		i++
		if code == 'r' {
			style = nil
		} else if c, ok := palette[code]; ok {
			style = []color.Color{c}
		} else {
			style = append(style, formats[code])
		}
	}
	flush()
	return out
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
