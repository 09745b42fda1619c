package st7735

import (
	"errors"
	"fmt"
)

// Errors reported by the driver. Use errors.Is to test for them; most are
// returned wrapped with call specific context.
var (
	// ErrInvalidRange is returned when an addressing window is inverted or
	// exceeds the panel bounds. No register write is issued.
	ErrInvalidRange = errors.New("st7735: address range out of bounds")
	// ErrBusStall is returned when a status flag of the serial peripheral
	// never reached the expected state within the poll budget.
	ErrBusStall = errors.New("st7735: bus stalled")
	// ErrTransferInProgress is returned when a frame transfer is running and
	// the bus or the frame buffer is still owned by the transfer engine.
	ErrTransferInProgress = errors.New("st7735: frame transfer in progress")
	// ErrUnknownID is returned by ReadID for an unknown selector.
	ErrUnknownID = errors.New("st7735: unknown ID selector")
	// ErrInvalidBuffer is returned when a pixel buffer does not match the
	// size of the area it is written to.
	ErrInvalidBuffer = errors.New("st7735: invalid buffer size")
	// ErrHalted is returned by every operation after Halt.
	ErrHalted = errors.New("st7735: halted")
)

// BusError wraps a failure of the bus transport with the operation that
// triggered it.
type BusError struct {
	Err error  // Underlying error
	Op  string // Operation that failed
}

func (e *BusError) Error() string {
	return fmt.Sprintf("st7735: %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// rangeError reports an invalid [start, end] interval against limit.
func rangeError(axis string, start, end, limit int) error {
	return fmt.Errorf("%w: %s [%d, %d] not within [0, %d]", ErrInvalidRange, axis, start, end, limit-1)
}
