package chat

import (
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
)

func TestTranslateAlternateCodes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"&4An internal error occurred!", "§4An internal error occurred!"},
		{"&CRed &lbold", "§cRed §lbold"},
		{"Tom & Jerry", "Tom & Jerry"},
		{"&zunknown", "&zunknown"},
		{"trailing &", "trailing &"},
		{"&&c", "&§c"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TranslateAlternateCodes(AltMarker, tc.in), tc.in)
	}
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "no markers", Strip("no markers"))
	assert.Equal(t, "The command x was not found!", Strip("§cThe command x was not found!"))
	assert.Equal(t, "ab c", Strip("§la§rb §4§oc"))
	assert.Equal(t, "keep §z", Strip("keep §z"))
	assert.Equal(t, "tail§", Strip("tail§"))
}

func TestToANSI_KeepsVisibleText(t *testing.T) {
	in := "§4Error: §lbad §rthing"
	out := ToANSI(in)

	assert.Equal(t, "Error: bad thing", color.ClearCode(out))
	assert.Equal(t, "untouched", ToANSI("untouched"))
}

func TestSegments_StyleTracking(t *testing.T) {
	segs := segments("§cred§lbold§rplain§ngreen?")

	if assert.Len(t, segs, 4) {
		assert.Equal(t, []color.Color{color.LightRed}, segs[0].style)
		assert.Equal(t, []color.Color{color.LightRed, color.OpBold}, segs[1].style)
		assert.Empty(t, segs[2].style)
		assert.Equal(t, []color.Color{color.OpUnderscore}, segs[3].style)
		assert.Equal(t, "green?", segs[3].text)
	}
}
