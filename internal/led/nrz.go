package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// NRZ drives a WS281x strip through periph's nrzled encoder over any SPI port.
type NRZ struct {
	mu    sync.Mutex
	port  spi.PortCloser
	dev   *nrzled.Dev
	count int
	order ColorOrder
	buf   []byte
}

// NewNRZ initializes the host drivers and opens the named SPI port ("" picks the first one).
func NewNRZ(port string, count int, colorOrder string) (*NRZ, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", port, err)
	}
	n, err := NewNRZPort(p, count, colorOrder)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return n, nil
}

// NRZFreq is the only SPI clock nrzled accepts.
const NRZFreq = 2500 * physic.KiloHertz

// NewNRZPort wraps an already open port. The port is closed by Close.
func NewNRZPort(p spi.PortCloser, count int, colorOrder string) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	order, err := ParseOrder(colorOrder)
	if err != nil {
		return nil, err
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      NRZFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{port: p, dev: d, count: count, order: order, buf: make([]byte, count*3)}, nil
}

func (n *NRZ) Write(rgb []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dev == nil {
		return fmt.Errorf("nrz closed")
	}
	if len(rgb) != n.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), n.count)
	}
	// nrzled sends channels as given, so reorder to wire order first.
	n.order.Reorder(n.buf, rgb)
	if _, err := n.dev.Write(n.buf); err != nil {
		return fmt.Errorf("nrz write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (n *NRZ) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dev == nil {
		return nil
	}
	herr := n.dev.Halt()
	cerr := n.port.Close()
	n.dev = nil
	if herr != nil {
		return fmt.Errorf("nrz halt: %w", herr)
	}
	return cerr
}
