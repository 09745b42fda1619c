package st7735

import "sync/atomic"

// DMAChannel is a bulk transfer engine that moves a memory buffer to the
// serial peripheral without CPU involvement.
//
// The completion callback registered with SetInterrupt runs in interrupt
// context (or on another goroutine for software engines) once the configured
// number of bytes has been moved. It must not block.
type DMAChannel interface {
	// Configure sets the source buffer and transfer length.
	Configure(src []byte) error
	// Enable starts the transfer and returns immediately.
	Enable() error
	// Disable stops the channel. It is called from the completion handler.
	Disable()
	// SetInterrupt registers the transfer complete handler.
	SetInterrupt(handler func())
	// Err reports the error of the last completed transfer, if any.
	Err() error
}

const (
	transferIdle uint32 = iota
	transferRunning
)

// transferState is the only value shared between the caller and the
// completion handler. All accesses are atomic, so a caller observing idle
// also observes every write the handler made before releasing it.
type transferState struct {
	v atomic.Uint32
}

// begin claims the engine. It fails when a transfer is already running.
func (s *transferState) begin() bool {
	return s.v.CompareAndSwap(transferIdle, transferRunning)
}

// complete releases the engine. It must be the last effect of completion.
func (s *transferState) complete() {
	s.v.Store(transferIdle)
}

// poll reports whether no transfer is running.
func (s *transferState) poll() bool {
	return s.v.Load() == transferIdle
}
