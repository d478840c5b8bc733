package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleFullBrightnessIsIdentity(t *testing.T) {
	f := Frame{{1, 2, 3}, {200, 100, 50}, White}
	got := f.Scale(100)
	assert.Equal(t, f, got)

	// Scale must copy, not alias.
	got[0] = Black
	assert.Equal(t, Color{1, 2, 3}, f[0])
}

func TestScaleZeroIsBlack(t *testing.T) {
	f := Fill(White, 8)
	assert.True(t, f.Scale(0).IsBlack())
	assert.True(t, f.Scale(-20).IsBlack())
}

func TestScaleHalfRoundsHalfUp(t *testing.T) {
	got := Fill(White, 4).Scale(50)
	for _, c := range got {
		assert.Equal(t, Color{128, 128, 128}, c)
	}
	assert.Equal(t, Color{R: 1}, Frame{{R: 1}}.Scale(50)[0])
	assert.Equal(t, Color{R: 2}, Frame{{R: 3}}.Scale(50)[0])
}

func TestFit(t *testing.T) {
	f := Fill(Red, 3)
	assert.Equal(t, Frame{Red, Red, Red, Black}, f.Fit(4))
	assert.Equal(t, Frame{Red}, f.Fit(1))
	assert.Len(t, f.Fit(3), 3)
}

func TestRGBRoundTrip(t *testing.T) {
	f := Frame{{1, 2, 3}, {4, 5, 6}}
	rgb := f.RGB()
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, rgb)
	assert.Equal(t, f, FromRGB(append(rgb, 9)))
}

func TestMixAlpha(t *testing.T) {
	a := Fill(Red, 2)
	b := Fill(Color{B: 255}, 2)
	dst := make(Frame, 2)
	Mix(dst, a, b, 0.5)
	assert.Equal(t, Color{R: 128, B: 128}, dst[0])
	Mix(dst, a, b, 1)
	assert.Equal(t, b, dst)
}

func TestWhiteCap(t *testing.T) {
	f := Fill(White, 2)
	WhiteCap(f, 0.5)
	assert.Equal(t, Color{R: 127, G: 127, B: 127}, f[0])

	for _, c := range []Color{{R: 255, G: 254, B: 1}, {R: 200, G: 200, B: 199}, {R: 255, G: 255, B: 255}} {
		h := Frame{c}
		WhiteCap(h, 0.7)
		sum := float64(h[0].R) + float64(h[0].G) + float64(h[0].B)
		assert.LessOrEqual(t, sum, 0.7*3*255, "%v", c)
	}

	g := Fill(White, 1)
	WhiteCap(g, 1)
	assert.Equal(t, White, g[0])
}

func TestColorText(t *testing.T) {
	c := Color{R: 0x12, G: 0xab, B: 0xff}
	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#12abff", string(b))

	var back Color
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, c, back)

	_, err = ParseColor("nope")
	assert.Error(t, err)
}

func TestDimAndHue(t *testing.T) {
	assert.Equal(t, Black, Dim(White, 0))
	assert.Equal(t, Red, Hue(0))
	assert.Equal(t, Red, Hue(360))
	assert.Equal(t, Color{G: 255}, Hue(120))
}
