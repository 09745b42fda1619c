package st7735

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// busFreq is the SPI clock. Register reads over the shared data line are
// only reliable at low clock rates.
const busFreq = 250 * physic.KiloHertz

// NewSPI creates a new ST7735 device connected to a host SPI port.
//
// The port is configured for 250kHz, Mode0, half-duplex (3-wire) transfers.
// Chip select is driven through pins.CS so a transaction can span several
// SPI messages. Frame transfers run on a background goroutine.
//
// opts can be nil to use defaults (128x160 display).
func NewSPI(p spi.Port, pins Pins, opts *Opts) (*Dev, error) {
	c, err := p.Connect(busFreq, spi.Mode0|spi.HalfDuplex|spi.NoCS, 8)
	if err != nil {
		return nil, fmt.Errorf("st7735: %w", err)
	}
	maxTx := bulkChunk
	if lim, ok := c.(conn.Limits); ok && lim.MaxTxSize() > 0 {
		maxTx = lim.MaxTxSize()
	}
	return New(newConnPeripheral(c, maxTx), &connDMA{c: c, maxTx: maxTx}, pins, opts)
}

// connPeripheral adapts a host spi.Conn to the Peripheral register model.
// Words are shifted synchronously, so the transmit buffer is always empty and
// the bus never busy when Status is read.
type connPeripheral struct {
	c       spi.Conn
	maxTx   int
	enabled bool
	dir     Direction
	bits    int
}

func newConnPeripheral(c spi.Conn, maxTx int) *connPeripheral {
	return &connPeripheral{c: c, maxTx: maxTx, enabled: true, bits: 8}
}

func (p *connPeripheral) Status() Status {
	s := TxEmpty
	if p.enabled && p.dir == Receive {
		// The host clocks a byte in on demand.
		s |= RxNotEmpty
	}
	return s
}

func (p *connPeripheral) Enable(on bool) { p.enabled = on }

func (p *connPeripheral) SetDirection(dir Direction) { p.dir = dir }

func (p *connPeripheral) SetWordSize(bits int) { p.bits = bits }

func (p *connPeripheral) Write(word uint16) error {
	w := []byte{byte(word)}
	if p.bits > 8 {
		// spidev carries words wider than 8 bits as little endian 16-bit values.
		w = []byte{byte(word), byte(word >> 8)}
	}
	return p.c.TxPackets([]spi.Packet{{W: w, BitsPerWord: uint8(p.bits)}})
}

func (p *connPeripheral) Read() (byte, error) {
	var r [1]byte
	if err := p.c.TxPackets([]spi.Packet{{R: r[:], BitsPerWord: 8}}); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (p *connPeripheral) WriteBulk(data []byte) error {
	for len(data) > 0 {
		n := min(len(data), p.maxTx)
		if err := p.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// connDMA emulates a DMA channel on a host: the frame is written from a
// goroutine and the completion handler runs on that goroutine.
type connDMA struct {
	c       spi.Conn
	maxTx   int
	src     []byte
	handler func()
	err     error
}

func (d *connDMA) Configure(src []byte) error {
	d.src = src
	return nil
}

func (d *connDMA) Enable() error {
	go d.run(d.src)
	return nil
}

func (d *connDMA) run(src []byte) {
	var err error
	for len(src) > 0 {
		n := min(len(src), d.maxTx)
		if err = d.c.Tx(src[:n], nil); err != nil {
			break
		}
		src = src[n:]
	}
	d.err = err
	if d.handler != nil {
		d.handler()
	}
}

// Disable is a no-op: the goroutine stops on its own once the frame is out.
func (d *connDMA) Disable() {}

func (d *connDMA) SetInterrupt(handler func()) { d.handler = handler }

func (d *connDMA) Err() error { return d.err }
