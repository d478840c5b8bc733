package led

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("rgb")
	require.NoError(t, err)
	assert.Equal(t, ColorOrder{'R', 'G', 'B'}, o)

	o, err = ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, GRB, o)

	_, err = ParseOrder("RRB")
	assert.Error(t, err)
}

func TestReorder(t *testing.T) {
	dst := make([]byte, 6)
	GRB.Reorder(dst, []byte{1, 2, 3, 4, 5, 6})
	assert.Equal(t, []byte{2, 1, 3, 5, 4, 6}, dst)
}

func TestEncoderBits(t *testing.T) {
	e := newEncoder(ColorOrder{'R', 'G', 'B'})
	// 0x00 -> eight 100 triplets, 0xFF -> eight 110 triplets.
	assert.Equal(t, [3]byte{0x92, 0x49, 0x24}, e.lut[0x00])
	assert.Equal(t, [3]byte{0xDB, 0x6D, 0xB6}, e.lut[0xFF])

	enc := e.encode([]byte{0xFF, 0x00, 0x00})
	require.Len(t, enc, 9)
	assert.Equal(t, []byte{0xDB, 0x6D, 0xB6, 0x92, 0x49, 0x24, 0x92, 0x49, 0x24}, enc)

	grb := newEncoder(GRB).encode([]byte{0xFF, 0x00, 0x00})
	assert.Equal(t, enc[0:3], grb[3:6])
}

func TestLatchBytes(t *testing.T) {
	assert.Equal(t, 128, latchBytes(300, 2400000))
	assert.Equal(t, 376, latchBytes(1000, 3000000))
}

func TestSim(t *testing.T) {
	s := NewSim(2)
	require.NoError(t, s.Write([]byte{1, 2, 3, 4, 5, 6}))
	last, n := s.Last()
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, last)
	assert.Equal(t, 1, n)
	assert.Error(t, s.Write([]byte{1}))
	require.NoError(t, s.Close())
	assert.Error(t, s.Write([]byte{1, 2, 3, 4, 5, 6}))
}

func TestNRZWritesToPort(t *testing.T) {
	var buf bytes.Buffer
	port := spitest.NewRecordRaw(&buf)
	n, err := NewNRZPort(port, 4, "GRB")
	require.NoError(t, err)

	require.NoError(t, n.Write(make([]byte, 12)))
	// 4 SPI bytes per channel byte plus the 3 byte latch
	assert.Equal(t, 4*12+3, buf.Len())
	assert.Error(t, n.Write(make([]byte, 3)))

	require.NoError(t, n.Close())
	assert.Error(t, n.Write(make([]byte, 12)))
	assert.NoError(t, n.Close())
}

func TestOpenSim(t *testing.T) {
	d, err := Open(Config{Kind: "sim", Count: 3})
	require.NoError(t, err)
	assert.IsType(t, &Sim{}, d)

	_, err = Open(Config{Kind: "laser", Count: 3})
	assert.Error(t, err)
	_, err = Open(Config{Count: 0})
	assert.Error(t, err)
}
