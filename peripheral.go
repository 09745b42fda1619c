package st7735

import (
	"fmt"
	"time"
)

// Status is a snapshot of the serial peripheral status flags.
type Status uint8

const (
	// TxEmpty is set when the transmit buffer can accept a new word.
	TxEmpty Status = 1 << iota
	// RxNotEmpty is set when a received byte is waiting to be read.
	RxNotEmpty
	// Busy is set while the peripheral is shifting bits on the line.
	Busy
)

func (s Status) String() string {
	return fmt.Sprintf("Status{TXE:%t RXNE:%t BSY:%t}", s&TxEmpty != 0, s&RxNotEmpty != 0, s&Busy != 0)
}

// Direction of the bidirectional data line.
type Direction uint8

const (
	// Transmit drives the data line from the host.
	Transmit Direction = iota
	// Receive releases the data line so the controller can drive it.
	// The peripheral generates clock pulses as long as it is enabled.
	Receive
)

// Peripheral is the register level view of a half-duplex serial controller,
// such as an MCU SPI block configured for a single bidirectional data line.
//
// Implementations are not safe for concurrent use; the driver serializes
// access and never touches the peripheral while a frame transfer owns it.
type Peripheral interface {
	// Status returns the current status flags.
	Status() Status
	// Enable starts or stops the peripheral. In Receive direction enabling
	// the peripheral starts the clock.
	Enable(on bool)
	// SetDirection selects the data line direction.
	SetDirection(dir Direction)
	// SetWordSize sets the number of bits shifted per word, 8 or 9.
	SetWordSize(bits int)
	// Write loads a word into the transmit buffer.
	Write(word uint16) error
	// Read takes the next byte from the receive buffer.
	Read() (byte, error)
}

// BulkWriter is implemented by peripherals that can shift a whole buffer of
// 8-bit words in one operation. Transport uses it for pixel data when present.
type BulkWriter interface {
	WriteBulk(p []byte) error
}

// Poller bounds the busy-wait loops on peripheral status flags.
type Poller interface {
	// Poll calls ready until it reports true. It returns ErrBusStall when the
	// budget is exhausted first.
	Poll(ready func() bool) error
}

// SpinPoller checks the condition at most Limit times without sleeping.
// It never consults the clock, which keeps simulated buses deterministic.
type SpinPoller struct {
	Limit int
}

// Poll implements Poller.
func (p SpinPoller) Poll(ready func() bool) error {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultSpinLimit
	}
	for range limit {
		if ready() {
			return nil
		}
	}
	return ErrBusStall
}

// TimeoutPoller checks the condition until Timeout elapses, sleeping
// Interval between checks. A zero Interval spins.
type TimeoutPoller struct {
	Timeout  time.Duration
	Interval time.Duration
}

// Poll implements Poller.
func (p TimeoutPoller) Poll(ready func() bool) error {
	deadline := time.Now().Add(p.Timeout)
	for {
		if ready() {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrBusStall
		}
		if p.Interval > 0 {
			time.Sleep(p.Interval)
		}
	}
}

const (
	// DefaultSpinLimit is the number of status checks SpinPoller performs
	// when Limit is not set.
	DefaultSpinLimit = 1 << 20
	// DefaultPollTimeout bounds every status wait of the default poller.
	// A byte at 250kHz takes 32µs, so this only trips on a stuck line.
	DefaultPollTimeout = 100 * time.Millisecond
)
