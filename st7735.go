// Package st7735 controls a ST7735 color TFT display over a 3-wire SPI bus.
//
// The ST7735 is a 132x162 RGB controller usually fitted to 128x160 panels.
// This driver runs it in 18 bits per pixel mode and supports both blocking
// pixel writes and a DMA backed full frame transfer.
//
// See the examples for how to use this package.
package st7735

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"runtime"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/st7735/image666"
	"periph.io/x/devices/v3/st7735/internal/syncutil"
)

// Panel geometry.
const (
	// Width and Height are the dimensions of the common 1.8" panel.
	Width  = 128
	Height = 160

	// maxWidth and maxHeight are the dimensions of the controller RAM.
	maxWidth  = 132
	maxHeight = 162

	// BytesPerPixel is the number of wire bytes per pixel in 18-bit mode.
	BytesPerPixel = 3
)

// Delays mandated by the controller datasheet.
const (
	// resetPulse is how long RST is held low for a hardware reset.
	resetPulse = 10 * time.Millisecond
	// resetSettle covers the 120ms the controller needs after a reset or
	// SLPOUT before it accepts the next command, with some margin.
	resetSettle = 130 * time.Millisecond
)

// Opts is the configuration for the ST7735 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 128, must be ≤132)
	H int // Height (default: 160, must be ≤162)

	// Initial memory access order
	MirrorX bool // Mirror columns
	MirrorY bool // Mirror rows

	// Poller bounds every wait on a peripheral status flag.
	// Default: TimeoutPoller with DefaultPollTimeout.
	Poller Poller

	// Sleep is the delay source used for reset and settle times.
	// Default: time.Sleep.
	Sleep func(time.Duration)
}

// Pins are the control lines of the display besides the serial bus itself.
type Pins struct {
	CS  gpio.PinOut // Chip select, active low (required)
	DC  gpio.PinOut // Data/Command select, low = command (required)
	RST gpio.PinOut // Reset, active low (optional, nil if not used)
	BL  gpio.PinOut // Backlight enable (optional, nil if not used)
}

// AddressWindow is the region of display RAM targeted by the next memory
// write. Bounds are inclusive.
type AddressWindow struct {
	ColStart, ColEnd int
	RowStart, RowEnd int
}

// Rect returns the window as an image.Rectangle.
func (w AddressWindow) Rect() image.Rectangle {
	return image.Rect(w.ColStart, w.RowStart, w.ColEnd+1, w.RowEnd+1)
}

// Dev is the device handle for the ST7735 display.
type Dev struct {
	mu syncutil.Mutex

	// Communication
	t     *Transport
	dma   DMAChannel
	rst   gpio.PinOut
	bl    gpio.PinOut
	sleep func(time.Duration)

	// Display geometry
	rect   image.Rectangle
	window AddressWindow

	// Frame transfer, shared with the completion handler
	xfer       transferState
	xferResult atomic.Value // transferResult

	// State
	mirrorX, mirrorY bool
	halted           bool
}

type transferResult struct {
	err error
}

var _ display.Drawer = (*Dev)(nil)

// New creates a new ST7735 device on the half-duplex peripheral p and
// runs the initialization sequence.
//
// dma is the bulk transfer channel used by StartFrameTransfer; it can be nil
// when only blocking writes are needed. opts can be nil to use defaults
// (128x160 panel).
func New(p Peripheral, dma DMAChannel, pins Pins, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	w, h := opts.W, opts.H
	if w == 0 {
		w = Width
	}
	if h == 0 {
		h = Height
	}
	if w < 0 || w > maxWidth {
		return nil, errors.New("st7735: width must be between 1 and 132")
	}
	if h < 0 || h > maxHeight {
		return nil, errors.New("st7735: height must be between 1 and 162")
	}
	if pins.CS == nil || pins.DC == nil {
		return nil, errors.New("st7735: CS and DC lines are required")
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	d := &Dev{
		t:       NewTransport(p, pins.CS, pins.DC, opts.Poller, sleep),
		dma:     dma,
		rst:     pins.RST,
		bl:      pins.BL,
		sleep:   sleep,
		rect:    image.Rect(0, 0, w, h),
		mirrorX: opts.MirrorX,
		mirrorY: opts.MirrorY,
	}
	if dma != nil {
		dma.SetInterrupt(d.handleTransferComplete)
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init resets the controller and runs the initialization sequence again.
// It also clears a previous Halt.
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.xfer.poll() {
		return ErrTransferInProgress
	}
	if err := d.init(); err != nil {
		return err
	}
	d.halted = false
	return nil
}

// init sends the initialization sequence to the display.
func (d *Dev) init() error {
	// Idle lines: chip deselected, reset released, bus in 8-bit transmit mode.
	if err := d.t.deselectChip(); err != nil {
		return err
	}
	if d.rst != nil {
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("st7735: failed to pull RST high: %w", err)
		}
	}
	d.t.p.SetWordSize(8)
	d.t.p.SetDirection(Transmit)
	d.t.p.Enable(true)

	// Hardware reset sequence (if RST pin is provided)
	if d.rst != nil {
		if err := d.hwReset(); err != nil {
			return err
		}
		d.sleep(resetSettle)
	}

	if err := d.sendCommand(SWRESET); err != nil {
		return err
	}
	d.sleep(resetSettle)

	if err := d.sendCommand(SLPOUT); err != nil {
		return err
	}
	d.sleep(resetSettle)

	if err := d.setFullWindow(); err != nil {
		return err
	}
	if d.mirrorX || d.mirrorY {
		if err := d.setMirror(d.mirrorX, d.mirrorY); err != nil {
			return err
		}
	}

	if err := d.sendCommand(DISPON); err != nil {
		return err
	}
	Debugf("initialized %dx%d panel", d.rect.Dx(), d.rect.Dy())
	return nil
}

// lock acquires the device for a bus operation.
func (d *Dev) lock() error {
	d.mu.Lock()
	if d.halted {
		d.mu.Unlock()
		return ErrHalted
	}
	if !d.xfer.poll() {
		d.mu.Unlock()
		return ErrTransferInProgress
	}
	return nil
}

// SendCommand sends a single command byte in its own transaction.
func (d *Dev) SendCommand(cmd Command) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.sendCommand(cmd)
}

// SendData sends a single data byte in its own transaction.
func (d *Dev) SendData(b byte) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.t.frame(false, func() error { return d.t.WriteByte(b) })
}

// WriteRegister sends addr as a command followed by all of data in a single
// chip-select frame.
func (d *Dev) WriteRegister(addr Command, data []byte) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.writeRegister(addr, data)
}

// ReadRegister reads len(buf) bytes from register addr.
func (d *Dev) ReadRegister(addr Command, buf []byte) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.t.ReadBytes(byte(addr), buf)
}

// ReadID returns the raw bytes of the selected identification register.
//
// IDAll reads ID1, ID2 and ID3 in one transaction through RDDID. This
// combined read depends on the dummy clock cycle being honored by the panel
// and is not confirmed on all revisions; prefer ID1, ID2 and ID3.
func (d *Dev) ReadID(sel IDSelector) ([]byte, error) {
	var (
		reg Command
		n   int
	)
	switch sel {
	case IDAll:
		reg, n = RDDID, 3
	case ID1:
		reg, n = RDID1, 1
	case ID2:
		reg, n = RDID2, 1
	case ID3:
		reg, n = RDID3, 1
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownID, sel)
	}
	if err := d.lock(); err != nil {
		return nil, err
	}
	defer d.mu.Unlock()
	buf := make([]byte, n)
	if err := d.t.ReadBytes(byte(reg), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// sendCommand sends a single command byte.
func (d *Dev) sendCommand(cmd Command) error {
	return d.t.frame(true, func() error { return d.t.WriteByte(byte(cmd)) })
}

// writeRegister sends a command and streams its parameters in one frame.
func (d *Dev) writeRegister(addr Command, data []byte) error {
	if err := d.sendCommand(addr); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.t.frame(false, func() error { return d.t.Stream(data) })
}

// Window returns the last addressing window accepted by the controller.
func (d *Dev) Window() AddressWindow {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window
}

// SetColumnAddress sets the column range [xs, xe] of the addressing window.
// Inverted or out of bounds ranges return ErrInvalidRange and leave the
// controller untouched.
func (d *Dev) SetColumnAddress(xs, xe int) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.setColumnAddress(xs, xe)
}

// SetRowAddress sets the row range [ys, ye] of the addressing window.
// Inverted or out of bounds ranges return ErrInvalidRange and leave the
// controller untouched.
func (d *Dev) SetRowAddress(ys, ye int) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.setRowAddress(ys, ye)
}

func (d *Dev) checkColumns(xs, xe int) error {
	if xs < 0 || xe < xs || xe > d.rect.Dx()-1 {
		return rangeError("columns", xs, xe, d.rect.Dx())
	}
	return nil
}

func (d *Dev) checkRows(ys, ye int) error {
	if ys < 0 || ye < ys || ye > d.rect.Dy()-1 {
		return rangeError("rows", ys, ye, d.rect.Dy())
	}
	return nil
}

func (d *Dev) setColumnAddress(xs, xe int) error {
	if err := d.checkColumns(xs, xe); err != nil {
		return err
	}
	if err := d.writeRegister(CASET, []byte{0, byte(xs), 0, byte(xe)}); err != nil {
		return err
	}
	d.window.ColStart, d.window.ColEnd = xs, xe
	return nil
}

func (d *Dev) setRowAddress(ys, ye int) error {
	if err := d.checkRows(ys, ye); err != nil {
		return err
	}
	if err := d.writeRegister(RASET, []byte{0, byte(ys), 0, byte(ye)}); err != nil {
		return err
	}
	d.window.RowStart, d.window.RowEnd = ys, ye
	return nil
}

// setWindow validates both ranges before writing either of them.
func (d *Dev) setWindow(xs, ys, xe, ye int) error {
	if err := d.checkColumns(xs, xe); err != nil {
		return err
	}
	if err := d.checkRows(ys, ye); err != nil {
		return err
	}
	if err := d.setColumnAddress(xs, xe); err != nil {
		return err
	}
	return d.setRowAddress(ys, ye)
}

func (d *Dev) fullWindow() AddressWindow {
	return AddressWindow{ColEnd: d.rect.Dx() - 1, RowEnd: d.rect.Dy() - 1}
}

func (d *Dev) setFullWindow() error {
	return d.setWindow(0, 0, d.rect.Dx()-1, d.rect.Dy()-1)
}

// SetMirror sets the column (x) and row (y) mirroring of display memory.
//
// The current MADCTL value is read back first so the other access control
// bits are preserved.
func (d *Dev) SetMirror(x, y bool) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.setMirror(x, y)
}

func (d *Dev) setMirror(x, y bool) error {
	var reg [1]byte
	if err := d.t.ReadBytes(byte(RDDMADCTL), reg[:]); err != nil {
		return err
	}
	v := reg[0] &^ madctlMirrorMask
	if x {
		v |= MADCTL_MX
	}
	if y {
		v |= MADCTL_MY
	}
	if err := d.writeRegister(MADCTL, []byte{v}); err != nil {
		return err
	}
	d.mirrorX, d.mirrorY = x, y
	return nil
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image666.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// FrameSize returns the size in bytes of a full frame buffer.
func (d *Dev) FrameSize() int {
	return d.rect.Dx() * d.rect.Dy() * BytesPerPixel
}

// WriteRect writes a w x h block of pixels in wire format (3 bytes per
// pixel, see image666) with its top left corner at (x0, y0).
// It blocks until every byte has been shifted out.
func (d *Dev) WriteRect(buf []byte, w, h, x0, y0 int) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.writeRect(buf, w, h, x0, y0)
}

func (d *Dev) writeRect(buf []byte, w, h, x0, y0 int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: empty %dx%d rectangle", ErrInvalidRange, w, h)
	}
	if len(buf) != w*h*BytesPerPixel {
		return fmt.Errorf("%w: got %d bytes for %dx%d pixels", ErrInvalidBuffer, len(buf), w, h)
	}
	if err := d.setWindow(x0, y0, x0+w-1, y0+h-1); err != nil {
		return err
	}
	return d.writeRegister(RAMWR, buf)
}

// DrawRectangle fills the rectangle with corners (x0, y0) and (x1, y1),
// both inclusive, with c. The color is streamed repeatedly so no buffer of
// the rectangle size is needed.
func (d *Dev) DrawRectangle(x0, y0, x1, y1 int, c image666.Color) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()

	if err := d.setWindow(x0, y0, x1, y1); err != nil {
		return err
	}
	if err := d.sendCommand(RAMWR); err != nil {
		return err
	}
	pixel := c.Bytes()
	count := (x1 - x0 + 1) * (y1 - y0 + 1)
	return d.t.frame(false, func() error { return d.t.StreamRepeat(pixel[:], count) })
}

// Write writes a full frame of raw pixel data in wire format.
// The data must be exactly FrameSize bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if err := d.lock(); err != nil {
		return 0, err
	}
	defer d.mu.Unlock()
	if len(pixels) != d.FrameSize() {
		return 0, ErrInvalidBuffer
	}
	if err := d.writeRect(pixels, d.rect.Dx(), d.rect.Dy(), 0, 0); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws src onto the dst rectangle of the display. The src image is
// positioned at src point sp within the destination. Only the pixels inside
// dst are transferred.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()

	// Clip to display bounds, moving the source point along with dst.Min.
	r := dst
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}
	sp = sp.Add(dst.Min.Sub(r.Min))

	// Fast path: source is already in wire format and covers the region.
	if img, ok := src.(*image666.Image); ok {
		sr := dst.Sub(dst.Min).Add(sp)
		if sr == img.Rect && img.Stride == 3*sr.Dx() {
			return d.writeRect(img.Pix, dst.Dx(), dst.Dy(), dst.Min.X, dst.Min.Y)
		}
		if sr.In(img.Rect) {
			sub := img.Crop(sr)
			return d.writeRect(sub.Pix, dst.Dx(), dst.Dy(), dst.Min.X, dst.Min.Y)
		}
	}

	region := image666.New(dst)
	draw.Draw(region, dst, src, sp, draw.Src)
	return d.writeRect(region.Pix, dst.Dx(), dst.Dy(), dst.Min.X, dst.Min.Y)
}

// StartFrameTransfer starts a DMA transfer of a full frame and returns
// without waiting for it to finish.
//
// frame must be FrameSize bytes in wire format. It is owned by the transfer
// until IsTransferComplete reports true: the caller must not modify it, and
// every other bus operation fails with ErrTransferInProgress in the meantime.
func (d *Dev) StartFrameTransfer(frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if d.dma == nil {
		return errors.New("st7735: no DMA channel")
	}
	if len(frame) != d.FrameSize() {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidBuffer, len(frame), d.FrameSize())
	}
	if !d.xfer.begin() {
		return ErrTransferInProgress
	}
	started := false
	defer func() {
		if !started {
			d.xfer.complete()
		}
	}()

	if d.window != d.fullWindow() {
		if err := d.setFullWindow(); err != nil {
			return err
		}
	}
	if err := d.sendCommand(RAMWR); err != nil {
		return err
	}
	if err := d.t.data(); err != nil {
		return err
	}
	if err := d.t.selectChip(); err != nil {
		return err
	}
	if err := d.dma.Configure(frame); err != nil {
		_ = d.t.deselectChip()
		return fmt.Errorf("st7735: failed to configure DMA: %w", err)
	}
	d.xferResult.Store(transferResult{})
	d.t.p.SetDirection(Transmit)
	if err := d.dma.Enable(); err != nil {
		_ = d.t.deselectChip()
		return fmt.Errorf("st7735: failed to enable DMA: %w", err)
	}
	started = true
	Debugf("frame transfer started, %d bytes", len(frame))
	return nil
}

// handleTransferComplete is the DMA completion handler. It releases the bus
// and publishes completion; nothing may follow the final store.
func (d *Dev) handleTransferComplete() {
	d.dma.Disable()
	err := d.dma.Err()
	if csErr := d.t.deselectChip(); err == nil {
		err = csErr
	}
	d.xferResult.Store(transferResult{err: err})
	d.xfer.complete()
}

// IsTransferComplete reports whether no frame transfer is running. Once it
// returns true the frame buffer and the bus are free again.
func (d *Dev) IsTransferComplete() bool {
	return d.xfer.poll()
}

// WaitTransfer blocks until the running frame transfer completes or ctx is
// done, and returns the transfer error if any.
func (d *Dev) WaitTransfer(ctx context.Context) error {
	for !d.xfer.poll() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("st7735: waiting for frame transfer: %w", ctx.Err())
		default:
		}
		runtime.Gosched()
	}
	if r, ok := d.xferResult.Load().(transferResult); ok {
		return r.err
	}
	return nil
}

// HWReset pulses the reset line. The controller returns to its power-on
// defaults; call Init to configure it again.
func (d *Dev) HWReset() error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.hwReset()
}

func (d *Dev) hwReset() error {
	if d.rst == nil {
		return errors.New("st7735: no reset line")
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("st7735: failed to pull RST low: %w", err)
	}
	d.sleep(resetPulse)
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("st7735: failed to pull RST high: %w", err)
	}
	return nil
}

// SetBacklight turns the backlight on or off. It only drives the BL line
// and may be called while a frame transfer is running.
func (d *Dev) SetBacklight(on bool) error {
	if d.bl == nil {
		return errors.New("st7735: no backlight line")
	}
	if err := d.bl.Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("st7735: failed to set backlight: %w", err)
	}
	return nil
}

// SetSleep enters (SLPIN) or leaves (SLPOUT) sleep mode and waits for the
// controller to settle.
func (d *Dev) SetSleep(sleep bool) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	cmd := SLPOUT
	if sleep {
		cmd = SLPIN
	}
	if err := d.sendCommand(cmd); err != nil {
		return err
	}
	d.sleep(resetSettle)
	return nil
}

// SetDisplayOn turns the panel output on or off. Display RAM is kept.
func (d *Dev) SetDisplayOn(on bool) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	cmd := DISPOFF
	if on {
		cmd = DISPON
	}
	return d.sendCommand(cmd)
}

// Invert inverts the display colors.
func (d *Dev) Invert(invert bool) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	cmd := INVOFF
	if invert {
		cmd = INVON
	}
	return d.sendCommand(cmd)
}

// Halt turns the display and its backlight off.
// After calling Halt, the display will not respond to further commands
// until Init is called.
func (d *Dev) Halt() error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	if err := d.sendCommand(DISPOFF); err != nil {
		return err
	}
	if d.bl != nil {
		if err := d.bl.Out(gpio.Low); err != nil {
			return fmt.Errorf("st7735: failed to turn backlight off: %w", err)
		}
	}
	d.halted = true
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7735.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
