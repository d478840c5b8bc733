// Package layout maps logical pixel coordinates to the physical wiring order of strips and matrices.
package layout

import "github.com/coreman2200/funtimes-lightstream/internal/frame"

type Dim struct{ X, Y, Z int }

type Serpentine struct {
	XFlipEveryRow   bool
	YFlipEveryPanel bool
}

type Layout struct {
	Dim   Dim
	Order Serpentine
}

// Strip is a plain run of n pixels with no remapping.
func Strip(n int) Layout {
	return Layout{Dim: Dim{X: n, Y: 1, Z: 1}}
}

// Index maps x,y,z -> linear LED index (0..N-1)
func (l Layout) Index(x, y, z int) int {
	d := l.dim()
	yy := y
	xx := x
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		xx = d.X - 1 - x
	}
	if l.Order.YFlipEveryPanel && (z%2 == 1) {
		yy = d.Y - 1 - y
	}
	perPanel := d.X * d.Y
	return z*perPanel + yy*d.X + xx
}

func (l Layout) Count() int {
	d := l.dim()
	return d.X * d.Y * d.Z
}

// Identity reports whether Remap would leave frames unchanged.
func (l Layout) Identity() bool {
	d := l.dim()
	return (!l.Order.XFlipEveryRow || d.Y < 2) && (!l.Order.YFlipEveryPanel || d.Z < 2)
}

// Remap writes src, in logical row-major order, into dst in wiring order.
// Pixels beyond the layout are copied through unchanged.
func (l Layout) Remap(dst, src frame.Frame) {
	copy(dst, src)
	if l.Identity() {
		return
	}
	d := l.dim()
	i := 0
	for z := 0; z < d.Z; z++ {
		for y := 0; y < d.Y; y++ {
			for x := 0; x < d.X; x++ {
				if i >= len(src) {
					return
				}
				if j := l.Index(x, y, z); j < len(dst) {
					dst[j] = src[i]
				}
				i++
			}
		}
	}
}

// dim treats zero Y and Z as 1 so a strip only needs X.
func (l Layout) dim() Dim {
	d := l.Dim
	d.Y = max(d.Y, 1)
	d.Z = max(d.Z, 1)
	return d
}
