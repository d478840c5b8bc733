// Package frame holds the pixel types shared by effects, the output scheduler and device transports.
package frame

import "math"

// Frame is one complete ordered set of pixel colors for a device.
// A published Frame is never modified in place; transforms return copies.
type Frame []Color

// Fill returns a frame of n pixels set to c.
func Fill(c Color, n int) Frame {
	if n < 0 {
		n = 0
	}
	f := make(Frame, n)
	for i := range f {
		f[i] = c
	}
	return f
}

func (f Frame) Clone() Frame {
	if f == nil {
		return nil
	}
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// Fit returns f when it already has n pixels, otherwise a copy truncated or padded with black.
func (f Frame) Fit(n int) Frame {
	if len(f) == n {
		return f
	}
	out := make(Frame, n)
	copy(out, f)
	return out
}

// Scale returns a copy with every channel multiplied by brightness/100.
func (f Frame) Scale(brightness int) Frame {
	out := make(Frame, len(f))
	if brightness >= 100 {
		copy(out, f)
		return out
	}
	for i, c := range f {
		out[i] = Dim(c, brightness)
	}
	return out
}

// IsBlack reports whether every pixel is off.
func (f Frame) IsBlack() bool {
	for _, c := range f {
		if c != Black {
			return false
		}
	}
	return true
}

// RGB packs the frame as r,g,b bytes, the layout led drivers expect.
func (f Frame) RGB() []byte {
	out := make([]byte, len(f)*3)
	for i, c := range f {
		out[i*3+0] = c.R
		out[i*3+1] = c.G
		out[i*3+2] = c.B
	}
	return out
}

// FromRGB unpacks r,g,b bytes; a trailing partial pixel is ignored.
func FromRGB(rgb []byte) Frame {
	f := make(Frame, len(rgb)/3)
	for i := range f {
		f[i] = Color{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2]}
	}
	return f
}

// Mix blends a and b into dst using alpha (0..1). Lengths follow dst.
func Mix(dst, a, b Frame, alpha float64) {
	if alpha <= 0 {
		copy(dst, a)
		return
	}
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	af := 1.0 - alpha
	for i := range dst {
		if i >= len(a) || i >= len(b) {
			dst[i] = Black
			continue
		}
		dst[i] = Color{
			R: mixChannel(a[i].R, b[i].R, af, alpha),
			G: mixChannel(a[i].G, b[i].G, af, alpha),
			B: mixChannel(a[i].B, b[i].B, af, alpha),
		}
	}
}

func mixChannel(a, b uint8, af, bf float64) uint8 {
	return uint8(math.Round(float64(a)*af + float64(b)*bf))
}

// WhiteCap clamps each pixel in place so r+g+b <= cap*3*255, rounding channels down. cap outside (0,1) disables the limiter.
func WhiteCap(f Frame, cap float64) {
	if cap <= 0 || cap >= 1 {
		return
	}
	limit := cap * 3.0 * 255.0
	for i, c := range f {
		s := float64(c.R) + float64(c.G) + float64(c.B)
		if s > limit && s > 0 {
			scale := limit / s
			f[i] = Color{
				R: uint8(math.Floor(float64(c.R) * scale)),
				G: uint8(math.Floor(float64(c.G) * scale)),
				B: uint8(math.Floor(float64(c.B) * scale)),
			}
		}
	}
}

// EstimateCurrent returns the approximate draw in amps at 20mA per full-scale channel.
func EstimateCurrent(f Frame) float64 {
	var sum float64
	for _, c := range f {
		sum += float64(c.R) + float64(c.G) + float64(c.B)
	}
	return sum / 255.0 * 0.020
}
