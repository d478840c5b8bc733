package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
)

func TestIndexSerpentine(t *testing.T) {
	l := Layout{Dim: Dim{X: 3, Y: 2, Z: 2}, Order: Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true}}
	assert.Equal(t, 0, l.Index(0, 0, 0))
	assert.Equal(t, 5, l.Index(0, 1, 0))
	assert.Equal(t, 3, l.Index(2, 1, 0))
	// second panel runs bottom-up
	assert.Equal(t, 9, l.Index(0, 0, 1))
	assert.Equal(t, 12, l.Count())
}

func TestRemapMatrix(t *testing.T) {
	l := Layout{Dim: Dim{X: 3, Y: 2}, Order: Serpentine{XFlipEveryRow: true}}
	src := frame.Frame{{R: 0}, {R: 1}, {R: 2}, {R: 3}, {R: 4}, {R: 5}, {R: 6}}
	dst := make(frame.Frame, len(src))
	l.Remap(dst, src)
	assert.Equal(t, frame.Frame{{R: 0}, {R: 1}, {R: 2}, {R: 5}, {R: 4}, {R: 3}, {R: 6}}, dst)
}

func TestStripIsIdentity(t *testing.T) {
	l := Strip(4)
	assert.True(t, l.Identity())
	src := frame.Fill(frame.Red, 4)
	dst := make(frame.Frame, 4)
	l.Remap(dst, src)
	assert.Equal(t, src, dst)
	assert.Equal(t, 4, l.Count())
}
