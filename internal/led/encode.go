package led

// encoder expands each data bit into 3 SPI bits: 1 -> 110, 0 -> 100.
// At 2.4MHz one SPI bit is ~417ns, which fits the WS2812 T0H/T1H windows.
type encoder struct {
	order ColorOrder
	lut   [256][3]byte
}

func newEncoder(order ColorOrder) *encoder {
	e := &encoder{order: order}
	for v := 0; v < 256; v++ {
		out := uint32(0)
		for i := 7; i >= 0; i-- {
			tri := uint32(0b100)
			if (v>>i)&1 == 1 {
				tri = 0b110
			}
			out = (out << 3) | tri
		}
		e.lut[v] = [3]byte{byte(out >> 16), byte(out >> 8), byte(out)}
	}
	return e
}

// encode returns 9 bytes per pixel, in wire color order.
func (e *encoder) encode(rgb []byte) []byte {
	n := len(rgb) / 3
	enc := make([]byte, n*9)
	for i := 0; i < n; i++ {
		r, g, b := rgb[i*3], rgb[i*3+1], rgb[i*3+2]
		dst := enc[i*9 : i*9+9]
		for c := 0; c < 3; c++ {
			copy(dst[c*3:c*3+3], e.lut[e.order.pick(c, r, g, b)][:])
		}
	}
	return enc
}

// latchBytes is the zero tail that holds the line low for resetUs at speedHz.
func latchBytes(resetUs, speedHz int) int {
	n := resetUs * speedHz / 8 / 1_000_000
	return max(n+1, 128)
}
