package st7735

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// readSettleDelay is the pause after switching the word size back to 8 bits
// before the peripheral is re-enabled for a multi-byte read. Without it the
// controller misses the first clock edge at 250kHz.
const readSettleDelay = 4 * time.Microsecond

// bulkChunk caps the size of a single bulk write.
const bulkChunk = 4096

// Transport moves bytes between the host and the controller over a
// half-duplex serial peripheral and drives the chip-select and data/command
// lines around each framed transaction.
//
// Every status wait is bounded by the Poller; a flag that never changes
// yields a *BusError wrapping ErrBusStall instead of hanging the caller.
type Transport struct {
	p     Peripheral
	cs    gpio.PinOut
	dc    gpio.PinOut
	poll  Poller
	sleep func(time.Duration)
}

// NewTransport returns a Transport over p. cs and dc are the chip-select
// (active low) and data/command (low = command) lines. A nil poll uses a
// TimeoutPoller with DefaultPollTimeout; a nil sleep uses time.Sleep.
func NewTransport(p Peripheral, cs, dc gpio.PinOut, poll Poller, sleep func(time.Duration)) *Transport {
	if poll == nil {
		poll = TimeoutPoller{Timeout: DefaultPollTimeout}
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Transport{p: p, cs: cs, dc: dc, poll: poll, sleep: sleep}
}

// wait polls the peripheral until flag is set (or cleared when set is false).
func (t *Transport) wait(op string, flag Status, set bool) error {
	err := t.poll.Poll(func() bool {
		return (t.p.Status()&flag != 0) == set
	})
	if err != nil {
		return &BusError{Op: op, Err: err}
	}
	return nil
}

// WriteByte shifts one 8-bit word out and returns once the bus is idle.
func (t *Transport) WriteByte(b byte) error {
	return t.writeWord("write byte", uint16(b))
}

// WriteWord shifts one word out using the current word size and returns once
// the bus is idle. It is used for the 9-bit register address of multi-byte
// reads.
func (t *Transport) WriteWord(w uint16) error {
	return t.writeWord("write word", w)
}

func (t *Transport) writeWord(op string, w uint16) error {
	t.p.SetDirection(Transmit)
	if err := t.wait(op, TxEmpty, true); err != nil {
		return err
	}
	if err := t.p.Write(w); err != nil {
		return &BusError{Op: op, Err: err}
	}
	return t.wait(op, Busy, false)
}

// Stream shifts data out back to back, waiting for the transmit buffer
// between bytes and for the bus to become idle only at the end.
func (t *Transport) Stream(data []byte) error {
	t.p.SetDirection(Transmit)
	if bw, ok := t.p.(BulkWriter); ok {
		for len(data) > 0 {
			n := min(len(data), bulkChunk)
			if err := bw.WriteBulk(data[:n]); err != nil {
				return &BusError{Op: "stream", Err: err}
			}
			data = data[n:]
		}
		return t.wait("stream", Busy, false)
	}
	for _, b := range data {
		if err := t.wait("stream", TxEmpty, true); err != nil {
			return err
		}
		if err := t.p.Write(uint16(b)); err != nil {
			return &BusError{Op: "stream", Err: err}
		}
	}
	return t.wait("stream", Busy, false)
}

// StreamRepeat shifts pattern out count times in a row, without requiring a
// buffer of the full expanded size.
func (t *Transport) StreamRepeat(pattern []byte, count int) error {
	if len(pattern) == 0 || count <= 0 {
		return nil
	}
	if _, ok := t.p.(BulkWriter); ok {
		per := max(bulkChunk/len(pattern), 1)
		chunk := make([]byte, 0, per*len(pattern))
		for range min(per, count) {
			chunk = append(chunk, pattern...)
		}
		for count > 0 {
			n := min(per, count)
			if err := t.Stream(chunk[:n*len(pattern)]); err != nil {
				return err
			}
			count -= n
		}
		return nil
	}
	t.p.SetDirection(Transmit)
	for range count {
		for _, b := range pattern {
			if err := t.wait("stream", TxEmpty, true); err != nil {
				return err
			}
			if err := t.p.Write(uint16(b)); err != nil {
				return &BusError{Op: "stream", Err: err}
			}
		}
	}
	return t.wait("stream", Busy, false)
}

// ReadBytes reads len(buf) bytes from register addr.
//
// Reads of two bytes or more need a dummy clock cycle between the address and
// the data phase: the address is sent shifted left by one as a 9-bit word.
// The data line is then turned around, which only takes effect while the
// peripheral is disabled, and the bytes are clocked in one by one.
// Chip-select is held low for the whole exchange. The bus is always returned
// to 8-bit transmit mode, also on failure.
func (t *Transport) ReadBytes(addr byte, buf []byte) (err error) {
	n := len(buf)
	if n == 0 {
		return fmt.Errorf("%w: empty read of register 0x%02X", ErrInvalidBuffer, addr)
	}
	if err := t.command(); err != nil {
		return err
	}
	if err := t.selectChip(); err != nil {
		return err
	}
	defer func() {
		csErr := t.deselectChip()
		t.p.SetWordSize(8)
		t.p.SetDirection(Transmit)
		t.p.Enable(true)
		if err == nil {
			err = csErr
		}
	}()

	if n >= 2 {
		t.p.SetWordSize(9)
		err = t.writeWord("read address", uint16(addr)<<1)
	} else {
		err = t.writeWord("read address", uint16(addr))
	}
	if err != nil {
		return err
	}

	t.p.Enable(false)
	if n >= 2 {
		t.p.SetWordSize(8)
		t.sleep(readSettleDelay)
	}
	t.p.SetDirection(Receive)
	if err := t.data(); err != nil {
		return err
	}
	t.p.Enable(true)

	for i := range buf {
		if err := t.wait("read", RxNotEmpty, true); err != nil {
			return err
		}
		b, err := t.p.Read()
		if err != nil {
			return &BusError{Op: "read", Err: err}
		}
		buf[i] = b
	}
	return nil
}

// command selects the command register (DC low).
func (t *Transport) command() error {
	if err := t.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("st7735: failed to pull DC low: %w", err)
	}
	return nil
}

// data selects the data register (DC high).
func (t *Transport) data() error {
	if err := t.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("st7735: failed to pull DC high: %w", err)
	}
	return nil
}

func (t *Transport) selectChip() error {
	if err := t.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("st7735: failed to pull CS low: %w", err)
	}
	return nil
}

func (t *Transport) deselectChip() error {
	if err := t.cs.Out(gpio.High); err != nil {
		return fmt.Errorf("st7735: failed to pull CS high: %w", err)
	}
	return nil
}

// frame runs fn as one chip-select framed transaction with DC set for a
// command or data payload.
func (t *Transport) frame(isCommand bool, fn func() error) error {
	var err error
	if isCommand {
		err = t.command()
	} else {
		err = t.data()
	}
	if err != nil {
		return err
	}
	if err := t.selectChip(); err != nil {
		return err
	}
	err = fn()
	if csErr := t.deselectChip(); err == nil {
		err = csErr
	}
	return err
}
