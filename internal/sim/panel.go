// Package sim simulates an ST7735 controller behind a half-duplex serial
// peripheral, for testing the driver without hardware.
package sim

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/st7735"
	"periph.io/x/devices/v3/st7735/image666"
)

// Default identification bytes reported by the simulated controller.
var DefaultIDs = [3]byte{0x7C, 0x89, 0xF0}

// Transaction is one command and everything exchanged after it until the
// next command.
type Transaction struct {
	Cmd    st7735.Command
	Data   []byte // Bytes written with DC high
	Read   []byte // Bytes clocked in by the host
	Frames int    // Chip-select frames that carried Data
}

// Word is a word shifted out while DC was low.
type Word struct {
	Value uint16
	Bits  int
}

// WireBytes returns the word as it appears on the line, most significant
// byte first, padded to whole bytes.
func (w Word) WireBytes() []byte {
	if w.Bits > 8 {
		return []byte{byte(w.Value >> 8), byte(w.Value)}
	}
	return []byte{byte(w.Value)}
}

// Panel is a simulated ST7735 controller together with the serial
// peripheral that talks to it. It implements st7735.Peripheral.
type Panel struct {
	// Control lines, to be passed to the driver via Pins.
	CS, DC, RST, BL *Line

	mu sync.Mutex

	// Latency is the number of Status calls the bus stays busy after a write.
	Latency int
	// Stall makes the peripheral never report a ready status.
	Stall bool

	// Peripheral registers
	enabled bool
	dir     st7735.Direction
	bits    int
	busy    int
	rx      []byte

	// Controller state
	w, h      int
	ram       []byte
	madctl    byte
	ids       [3]byte
	window    st7735.AddressWindow
	asleep    bool
	displayOn bool
	cmd       st7735.Command
	params    []byte
	ramX      int
	ramY      int
	ramByte   int
	pixel     [3]byte
	framed    bool

	// Log
	txs     []Transaction
	words   []Word
	ops     []string
	resets  int
	ignored int
}

// NewPanel returns a simulated panel of w x h pixels.
func NewPanel(w, h int) *Panel {
	p := &Panel{
		w:    w,
		h:    h,
		ram:  make([]byte, w*h*3),
		ids:  DefaultIDs,
		bits: 8,
	}
	p.CS = newLine("CS", gpio.High, p.onCS)
	p.DC = newLine("DC", gpio.High, nil)
	p.RST = newLine("RST", gpio.High, p.onRST)
	p.BL = newLine("BL", gpio.Low, nil)
	p.reset()
	return p
}

// Pins returns the control lines in the form the driver expects.
func (p *Panel) Pins() st7735.Pins {
	return st7735.Pins{CS: p.CS, DC: p.DC, RST: p.RST, BL: p.BL}
}

// reset restores the controller power-on defaults. RAM is kept.
func (p *Panel) reset() {
	p.madctl = 0
	p.window = st7735.AddressWindow{ColEnd: p.w - 1, RowEnd: p.h - 1}
	p.asleep = true
	p.displayOn = false
	p.cmd = st7735.NOP
	p.params = nil
	p.resets++
}

func (p *Panel) onCS(level gpio.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if level == gpio.High {
		if p.framed && len(p.txs) > 0 {
			p.txs[len(p.txs)-1].Frames++
		}
		p.framed = false
	}
}

func (p *Panel) onRST(level gpio.Level) {
	if level == gpio.Low {
		p.mu.Lock()
		p.reset()
		p.mu.Unlock()
	}
}

// Status implements st7735.Peripheral.
func (p *Panel) Status() st7735.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Stall {
		return st7735.Busy
	}
	var s st7735.Status
	if p.busy > 0 {
		p.busy--
		s |= st7735.Busy
	} else {
		s |= st7735.TxEmpty
	}
	if p.enabled && p.dir == st7735.Receive && len(p.rx) > 0 {
		s |= st7735.RxNotEmpty
	}
	return s
}

// Enable implements st7735.Peripheral.
func (p *Panel) Enable(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if on != p.enabled {
		if on {
			p.ops = append(p.ops, "enable")
		} else {
			p.ops = append(p.ops, "disable")
		}
	}
	p.enabled = on
}

// SetDirection implements st7735.Peripheral.
func (p *Panel) SetDirection(dir st7735.Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dir != p.dir {
		if dir == st7735.Receive {
			p.ops = append(p.ops, "receive")
		} else {
			p.ops = append(p.ops, "transmit")
		}
	}
	p.dir = dir
}

// SetWordSize implements st7735.Peripheral.
func (p *Panel) SetWordSize(bits int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if bits != p.bits {
		p.ops = append(p.ops, fmt.Sprintf("bits %d", bits))
	}
	p.bits = bits
}

// Write implements st7735.Peripheral.
func (p *Panel) Write(word uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || p.dir != st7735.Transmit {
		return fmt.Errorf("sim: write while peripheral not transmitting")
	}
	p.busy = p.Latency
	if p.DC.Read() == gpio.Low {
		p.ops = append(p.ops, fmt.Sprintf("write %#x/%d", word, p.bits))
	}
	p.shift(word, p.bits)
	return nil
}

// Read implements st7735.Peripheral.
func (p *Panel) Read() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.rx) == 0 {
		return 0, fmt.Errorf("sim: receive buffer empty")
	}
	b := p.rx[0]
	p.rx = p.rx[1:]
	p.ops = append(p.ops, fmt.Sprintf("read %#x", b))
	if len(p.txs) > 0 {
		tx := &p.txs[len(p.txs)-1]
		tx.Read = append(tx.Read, b)
	}
	return b, nil
}

// shift delivers one word to the controller according to the line states.
func (p *Panel) shift(word uint16, bits int) {
	if p.CS.Read() == gpio.High {
		p.ignored++
		return
	}
	if p.DC.Read() == gpio.Low {
		p.words = append(p.words, Word{Value: word, Bits: bits})
		cmd := st7735.Command(word)
		if bits == 9 {
			cmd = st7735.Command(word >> 1)
		}
		p.command(cmd)
		return
	}
	p.framed = true
	if len(p.txs) > 0 {
		tx := &p.txs[len(p.txs)-1]
		tx.Data = append(tx.Data, byte(word))
	}
	p.param(byte(word))
}

func (p *Panel) command(cmd st7735.Command) {
	p.txs = append(p.txs, Transaction{Cmd: cmd})
	p.cmd = cmd
	p.params = p.params[:0]
	p.rx = p.rx[:0]
	switch cmd {
	case st7735.SWRESET:
		p.reset()
		// reset() clears the current command, keep it for the log.
		p.cmd = st7735.SWRESET
	case st7735.SLPIN:
		p.asleep = true
	case st7735.SLPOUT:
		p.asleep = false
	case st7735.DISPON:
		p.displayOn = true
	case st7735.DISPOFF:
		p.displayOn = false
	case st7735.RAMWR:
		p.ramX, p.ramY, p.ramByte = p.window.ColStart, p.window.RowStart, 0
	case st7735.RDDID:
		p.rx = append(p.rx, p.ids[:]...)
	case st7735.RDID1:
		p.rx = append(p.rx, p.ids[0])
	case st7735.RDID2:
		p.rx = append(p.rx, p.ids[1])
	case st7735.RDID3:
		p.rx = append(p.rx, p.ids[2])
	case st7735.RDDMADCTL:
		p.rx = append(p.rx, p.madctl)
	}
}

func (p *Panel) param(b byte) {
	switch p.cmd {
	case st7735.CASET, st7735.RASET:
		p.params = append(p.params, b)
		if len(p.params) == 4 {
			start := int(p.params[0])<<8 | int(p.params[1])
			end := int(p.params[2])<<8 | int(p.params[3])
			if p.cmd == st7735.CASET {
				p.window.ColStart, p.window.ColEnd = start, end
			} else {
				p.window.RowStart, p.window.RowEnd = start, end
			}
		}
	case st7735.MADCTL:
		p.madctl = b
	case st7735.RAMWR:
		p.pixel[p.ramByte] = b
		p.ramByte++
		if p.ramByte < 3 {
			return
		}
		p.ramByte = 0
		p.storePixel()
	}
}

func (p *Panel) storePixel() {
	x, y := p.ramX, p.ramY
	if p.madctl&st7735.MADCTL_MX != 0 {
		x = p.w - 1 - x
	}
	if p.madctl&st7735.MADCTL_MY != 0 {
		y = p.h - 1 - y
	}
	if x >= 0 && x < p.w && y >= 0 && y < p.h {
		i := (y*p.w + x) * 3
		copy(p.ram[i:i+3], p.pixel[:])
	}
	p.ramX++
	if p.ramX > p.window.ColEnd {
		p.ramX = p.window.ColStart
		p.ramY++
		if p.ramY > p.window.RowEnd {
			p.ramY = p.window.RowStart
		}
	}
}

// Transactions returns a copy of the transaction log.
func (p *Panel) Transactions() []Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Transaction, len(p.txs))
	copy(out, p.txs)
	return out
}

// Commands returns the commands received, in order.
func (p *Panel) Commands() []st7735.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]st7735.Command, len(p.txs))
	for i, tx := range p.txs {
		out[i] = tx.Cmd
	}
	return out
}

// Words returns the words received while DC was low.
func (p *Panel) Words() []Word {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Word(nil), p.words...)
}

// Ops returns the log of peripheral register changes and data moves.
func (p *Panel) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ops...)
}

// ClearLog forgets all logged transactions, words and operations.
func (p *Panel) ClearLog() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs = nil
	p.words = nil
	p.ops = nil
	p.ignored = 0
}

// Ignored returns the number of words shifted while the chip was not selected.
func (p *Panel) Ignored() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ignored
}

// Resets returns how many times the controller was reset, including power on.
func (p *Panel) Resets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resets
}

// Window returns the controller addressing window.
func (p *Panel) Window() st7735.AddressWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window
}

// MADCTL returns the memory access control register.
func (p *Panel) MADCTL() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.madctl
}

// SetMADCTL presets the memory access control register.
func (p *Panel) SetMADCTL(v byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.madctl = v
}

// SetIDs sets the identification bytes the controller reports.
func (p *Panel) SetIDs(ids [3]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = ids
}

// Asleep reports whether the controller is in sleep mode.
func (p *Panel) Asleep() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asleep
}

// DisplayOn reports whether the panel output is enabled.
func (p *Panel) DisplayOn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayOn
}

// Transmitting reports whether the peripheral is enabled in 8-bit transmit mode.
func (p *Panel) Transmitting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled && p.dir == st7735.Transmit && p.bits == 8
}

// Pixel returns the color stored in display RAM at (x, y).
func (p *Panel) Pixel(x, y int) image666.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := (y*p.w + x) * 3
	return image666.RGB666(p.ram[i]>>2, p.ram[i+1]>>2, p.ram[i+2]>>2)
}

// BulkPanel is a Panel whose peripheral also accepts whole buffers, like a
// controller with a transmit FIFO.
type BulkPanel struct {
	*Panel
	// Chunks records the size of every bulk write.
	Chunks []int
}

// WriteBulk implements st7735.BulkWriter.
func (b *BulkPanel) WriteBulk(data []byte) error {
	b.Chunks = append(b.Chunks, len(data))
	for _, v := range data {
		if err := b.Panel.Write(uint16(v)); err != nil {
			return err
		}
	}
	return nil
}
