package sim

import "sync"

// DMA is a simulated DMA channel feeding a Panel.
//
// The transfer does not progress on its own: tests call Complete to move the
// configured buffer and raise the completion interrupt, optionally from
// another goroutine to model an asynchronous interrupt.
type DMA struct {
	panel *Panel

	mu       sync.Mutex
	src      []byte
	enabled  bool
	handler  func()
	enables  int
	disables int

	// Fail is reported by Err after the next completion.
	Fail error
	// ConfigureErr and EnableErr are returned by Configure and Enable.
	ConfigureErr error
	EnableErr    error
}

// NewDMA returns a channel that writes to p.
func NewDMA(p *Panel) *DMA {
	return &DMA{panel: p}
}

// Configure implements st7735.DMAChannel.
func (d *DMA) Configure(src []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ConfigureErr != nil {
		return d.ConfigureErr
	}
	d.src = src
	return nil
}

// Enable implements st7735.DMAChannel.
func (d *DMA) Enable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.EnableErr != nil {
		return d.EnableErr
	}
	d.enabled = true
	d.enables++
	return nil
}

// Disable implements st7735.DMAChannel.
func (d *DMA) Disable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = false
	d.disables++
}

// SetInterrupt implements st7735.DMAChannel.
func (d *DMA) SetInterrupt(handler func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = handler
}

// Err implements st7735.DMAChannel.
func (d *DMA) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Fail
}

// Pending reports whether the channel is enabled and waiting for Complete.
func (d *DMA) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// Enables returns how many transfers were started.
func (d *DMA) Enables() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enables
}

// Disables returns how many times the channel was stopped.
func (d *DMA) Disables() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disables
}

// Complete shifts the configured buffer into the panel and invokes the
// completion handler. It returns false when no transfer is pending.
func (d *DMA) Complete() bool {
	d.mu.Lock()
	if !d.enabled {
		d.mu.Unlock()
		return false
	}
	src, handler := d.src, d.handler
	d.mu.Unlock()

	d.panel.mu.Lock()
	for _, b := range src {
		d.panel.shift(uint16(b), 8)
	}
	d.panel.mu.Unlock()

	if handler != nil {
		handler()
	}
	return true
}
