package st7735_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/st7735"
	"periph.io/x/devices/v3/st7735/image666"
	"periph.io/x/devices/v3/st7735/internal/sim"
)

// sleepLog records the delays requested by the driver instead of sleeping.
type sleepLog struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepLog) sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
}

func (s *sleepLog) get() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type testRig struct {
	dev    *st7735.Dev
	panel  *sim.Panel
	dma    *sim.DMA
	sleeps *sleepLog
}

// setupDevice builds a driver on top of a simulated 128x160 panel.
func setupDevice(t *testing.T, opts *st7735.Opts) *testRig {
	t.Helper()
	panel := sim.NewPanel(st7735.Width, st7735.Height)
	dma := sim.NewDMA(panel)
	sleeps := &sleepLog{}
	if opts == nil {
		opts = &st7735.Opts{}
	}
	opts.Sleep = sleeps.sleep
	opts.Poller = st7735.SpinPoller{Limit: 1000}
	dev, err := st7735.New(panel, dma, panel.Pins(), opts)
	require.NoError(t, err)
	return &testRig{dev: dev, panel: panel, dma: dma, sleeps: sleeps}
}

func frameOf(c image666.Color) []byte {
	px := c.Bytes()
	return bytes.Repeat(px[:], st7735.Width*st7735.Height)
}

func lastTx(t *testing.T, p *sim.Panel) sim.Transaction {
	t.Helper()
	txs := p.Transactions()
	require.NotEmpty(t, txs)
	return txs[len(txs)-1]
}

func TestNewOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *st7735.Opts
		noCS    bool
		wantErr bool
	}{
		{"nil options (uses defaults)", nil, false, false},
		{"valid 128x160", &st7735.Opts{W: 128, H: 160}, false, false},
		{"valid 132x162 (full RAM)", &st7735.Opts{W: 132, H: 162}, false, false},
		{"valid 1x1 (minimum)", &st7735.Opts{W: 1, H: 1}, false, false},
		{"width > 132", &st7735.Opts{W: 133, H: 160}, false, true},
		{"height > 162", &st7735.Opts{W: 128, H: 163}, false, true},
		{"negative width", &st7735.Opts{W: -1, H: 160}, false, true},
		{"missing chip select", nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := sim.NewPanel(132, 162)
			pins := panel.Pins()
			if tt.noCS {
				pins.CS = nil
			}
			opts := tt.opts
			if opts == nil {
				opts = &st7735.Opts{}
			}
			opts.Sleep = func(time.Duration) {}
			dev, err := st7735.New(panel, nil, pins, opts)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, dev)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, dev)
		})
	}
}

func TestInitSequence(t *testing.T) {
	rig := setupDevice(t, nil)

	assert.Equal(t, []st7735.Command{
		st7735.SWRESET, st7735.SLPOUT, st7735.CASET, st7735.RASET, st7735.DISPON,
	}, rig.panel.Commands())
	assert.Equal(t, []time.Duration{
		10 * time.Millisecond,  // reset pulse
		130 * time.Millisecond, // after hardware reset
		130 * time.Millisecond, // after SWRESET
		130 * time.Millisecond, // after SLPOUT
	}, rig.sleeps.get())

	// Power on, hardware reset and SWRESET.
	assert.Equal(t, 3, rig.panel.Resets())
	assert.False(t, rig.panel.Asleep())
	assert.True(t, rig.panel.DisplayOn())
	assert.True(t, rig.panel.Transmitting())
	assert.Equal(t, gpio.High, rig.panel.CS.Read())

	full := st7735.AddressWindow{ColEnd: 127, RowEnd: 159}
	assert.Equal(t, full, rig.dev.Window())
	assert.Equal(t, full, rig.panel.Window())
	assert.True(t, rig.dev.IsTransferComplete())
}

func TestInitWithoutResetLine(t *testing.T) {
	panel := sim.NewPanel(st7735.Width, st7735.Height)
	sleeps := &sleepLog{}
	pins := panel.Pins()
	pins.RST = nil
	_, err := st7735.New(panel, nil, pins, &st7735.Opts{Sleep: sleeps.sleep})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{130 * time.Millisecond, 130 * time.Millisecond}, sleeps.get())
	assert.Equal(t, 2, panel.Resets())
}

func TestInitMirror(t *testing.T) {
	rig := setupDevice(t, &st7735.Opts{MirrorX: true})

	assert.Contains(t, rig.panel.Commands(), st7735.RDDMADCTL)
	assert.Equal(t, byte(st7735.MADCTL_MX), rig.panel.MADCTL())
}

func TestSetColumnAddress(t *testing.T) {
	rig := setupDevice(t, nil)
	rig.panel.ClearLog()

	require.NoError(t, rig.dev.SetColumnAddress(10, 20))
	tx := lastTx(t, rig.panel)
	assert.Equal(t, st7735.CASET, tx.Cmd)
	assert.Equal(t, []byte{0x00, 10, 0x00, 20}, tx.Data)
	assert.Equal(t, 1, tx.Frames)
	assert.Equal(t, 10, rig.panel.Window().ColStart)
	assert.Equal(t, 20, rig.dev.Window().ColEnd)
}

func TestSetRowAddress(t *testing.T) {
	rig := setupDevice(t, nil)
	rig.panel.ClearLog()

	require.NoError(t, rig.dev.SetRowAddress(0, 159))
	tx := lastTx(t, rig.panel)
	assert.Equal(t, st7735.RASET, tx.Cmd)
	assert.Equal(t, []byte{0x00, 0, 0x00, 159}, tx.Data)
}

func TestInvalidRangeWritesNothing(t *testing.T) {
	rig := setupDevice(t, nil)
	before := rig.dev.Window()
	rig.panel.ClearLog()

	tests := []struct {
		name string
		call func() error
	}{
		{"inverted columns", func() error { return rig.dev.SetColumnAddress(20, 10) }},
		{"columns past edge", func() error { return rig.dev.SetColumnAddress(0, 128) }},
		{"rows past edge", func() error { return rig.dev.SetRowAddress(100, 160) }},
		{"rect past edge", func() error { return rig.dev.WriteRect(make([]byte, 3*10*10), 10, 10, 120, 0) }},
		{"rectangle rows inverted", func() error { return rig.dev.DrawRectangle(0, 10, 5, 5, image666.Red) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, st7735.ErrInvalidRange)
			assert.Empty(t, rig.panel.Transactions())
			assert.Equal(t, before, rig.dev.Window())
		})
	}
}

func TestSetMirrorPreservesOtherBits(t *testing.T) {
	rig := setupDevice(t, nil)
	const other = st7735.MADCTL_BGR | st7735.MADCTL_ML
	rig.panel.SetMADCTL(other)

	tests := []struct {
		x, y bool
		want byte
	}{
		{true, false, other | st7735.MADCTL_MX},
		{false, true, other | st7735.MADCTL_MY},
		{true, true, other | st7735.MADCTL_MX | st7735.MADCTL_MY},
		{false, false, other},
	}
	for _, tt := range tests {
		rig.panel.ClearLog()
		require.NoError(t, rig.dev.SetMirror(tt.x, tt.y))
		assert.Equal(t, tt.want, rig.panel.MADCTL(), "SetMirror(%t, %t)", tt.x, tt.y)

		txs := rig.panel.Transactions()
		require.Len(t, txs, 2)
		assert.Equal(t, st7735.RDDMADCTL, txs[0].Cmd)
		assert.Len(t, txs[0].Read, 1)
		assert.Equal(t, st7735.MADCTL, txs[1].Cmd)
		assert.Equal(t, []byte{tt.want}, txs[1].Data)
	}
}

func TestReadID(t *testing.T) {
	rig := setupDevice(t, nil)

	tests := []struct {
		name     string
		sel      st7735.IDSelector
		want     []byte
		wantWord sim.Word
		wantWire []byte
	}{
		{"all", st7735.IDAll, sim.DefaultIDs[:], sim.Word{Value: 0x0008, Bits: 9}, []byte{0x00, 0x08}},
		{"manufacturer", st7735.ID1, sim.DefaultIDs[:1], sim.Word{Value: 0xDA, Bits: 8}, []byte{0xDA}},
		{"version", st7735.ID2, sim.DefaultIDs[1:2], sim.Word{Value: 0xDB, Bits: 8}, []byte{0xDB}},
		{"driver", st7735.ID3, sim.DefaultIDs[2:], sim.Word{Value: 0xDC, Bits: 8}, []byte{0xDC}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig.panel.ClearLog()
			got, err := rig.dev.ReadID(tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			words := rig.panel.Words()
			require.Len(t, words, 1)
			assert.Equal(t, tt.wantWord, words[0])
			assert.Equal(t, tt.wantWire, words[0].WireBytes())

			// The bus is handed back in its idle state.
			assert.True(t, rig.panel.Transmitting())
			assert.Equal(t, gpio.High, rig.panel.CS.Read())
		})
	}
}

func TestWriteRect(t *testing.T) {
	rig := setupDevice(t, nil)
	rig.panel.ClearLog()

	px := image666.Blue.Bytes()
	buf := bytes.Repeat(px[:], 40*40)
	require.NoError(t, rig.dev.WriteRect(buf, 40, 40, 50, 50))

	txs := rig.panel.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, st7735.CASET, txs[0].Cmd)
	assert.Equal(t, []byte{0, 50, 0, 89}, txs[0].Data)
	assert.Equal(t, st7735.RASET, txs[1].Cmd)
	assert.Equal(t, []byte{0, 50, 0, 89}, txs[1].Data)
	assert.Equal(t, st7735.RAMWR, txs[2].Cmd)
	assert.Len(t, txs[2].Data, 4800)
	assert.Equal(t, 1, txs[2].Frames)

	assert.Equal(t, st7735.AddressWindow{ColStart: 50, ColEnd: 89, RowStart: 50, RowEnd: 89}, rig.dev.Window())
	assert.Equal(t, image666.Blue, rig.panel.Pixel(50, 50))
	assert.Equal(t, image666.Blue, rig.panel.Pixel(89, 89))
	assert.Equal(t, image666.Black, rig.panel.Pixel(90, 89))
}

func TestWriteRectMirrored(t *testing.T) {
	rig := setupDevice(t, nil)
	require.NoError(t, rig.dev.SetMirror(true, false))

	px := image666.Red.Bytes()
	require.NoError(t, rig.dev.WriteRect(px[:], 1, 1, 0, 0))
	assert.Equal(t, image666.Red, rig.panel.Pixel(127, 0))
	assert.Equal(t, image666.Black, rig.panel.Pixel(0, 0))
}

func TestDrawRectangle(t *testing.T) {
	rig := setupDevice(t, nil)
	rig.panel.ClearLog()

	require.NoError(t, rig.dev.DrawRectangle(10, 10, 19, 19, image666.Red))

	tx := lastTx(t, rig.panel)
	assert.Equal(t, st7735.RAMWR, tx.Cmd)
	assert.Equal(t, bytes.Repeat([]byte{0xFC, 0x00, 0x00}, 100), tx.Data)
	assert.Equal(t, 1, tx.Frames)
	assert.Equal(t, image666.Red, rig.panel.Pixel(15, 15))
	assert.Equal(t, image666.Black, rig.panel.Pixel(20, 20))
}

func TestDraw(t *testing.T) {
	rig := setupDevice(t, nil)

	t.Run("region", func(t *testing.T) {
		rig.panel.ClearLog()
		src := image.NewUniform(color.RGBA{R: 0xFF, A: 0xFF})
		require.NoError(t, rig.dev.Draw(image.Rect(0, 0, 4, 4), src, image.Point{}))

		tx := lastTx(t, rig.panel)
		assert.Equal(t, bytes.Repeat([]byte{0xFC, 0x00, 0x00}, 16), tx.Data)
	})

	t.Run("clipped", func(t *testing.T) {
		rig.panel.ClearLog()
		src := image.NewUniform(color.White)
		require.NoError(t, rig.dev.Draw(image.Rect(126, 158, 200, 200), src, image.Point{}))
		assert.Equal(t, image666.White, rig.panel.Pixel(127, 159))
		assert.Equal(t, st7735.AddressWindow{ColStart: 126, ColEnd: 127, RowStart: 158, RowEnd: 159}, rig.dev.Window())
	})

	t.Run("outside", func(t *testing.T) {
		rig.panel.ClearLog()
		require.NoError(t, rig.dev.Draw(image.Rect(200, 200, 300, 300), image.NewUniform(color.White), image.Point{}))
		assert.Empty(t, rig.panel.Transactions())
	})

	t.Run("starts off screen", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 20, 20))
		src.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
		src.Set(10, 10, color.RGBA{G: 0xFF, A: 0xFF})
		require.NoError(t, rig.dev.Draw(image.Rect(-10, -10, 10, 10), src, image.Point{}))

		assert.Equal(t, image666.Green, rig.panel.Pixel(0, 0))
		assert.Equal(t, image666.Black, rig.panel.Pixel(1, 1))
		assert.Equal(t, st7735.AddressWindow{ColEnd: 9, RowEnd: 9}, rig.dev.Window())
	})

	t.Run("wire format source", func(t *testing.T) {
		src := image666.New(image.Rect(0, 0, 20, 20))
		src.SetColor666(5, 5, image666.Blue)
		src.SetColor666(14, 14, image666.Red)
		rig.panel.ClearLog()
		require.NoError(t, rig.dev.Draw(image.Rect(30, 30, 40, 40), src, image.Pt(5, 5)))

		tx := lastTx(t, rig.panel)
		assert.Len(t, tx.Data, 10*10*3)
		assert.Equal(t, image666.Blue, rig.panel.Pixel(30, 30))
		assert.Equal(t, image666.Red, rig.panel.Pixel(39, 39))
	})

	t.Run("wire format source off screen", func(t *testing.T) {
		src := image666.New(image.Rect(0, 0, 8, 8))
		src.SetColor666(3, 3, image666.Blue)
		require.NoError(t, rig.dev.Draw(image.Rect(124, 156, 132, 164), src, image.Point{}))

		assert.Equal(t, image666.Blue, rig.panel.Pixel(127, 159))
		assert.Equal(t, image666.Black, rig.panel.Pixel(124, 156))
	})

	t.Run("full frame", func(t *testing.T) {
		img := image666.New(rig.dev.Bounds())
		img.Fill(image666.Green)
		require.NoError(t, rig.dev.Draw(rig.dev.Bounds(), img, image.Point{}))
		assert.Equal(t, image666.Green, rig.panel.Pixel(0, 0))
		assert.Equal(t, image666.Green, rig.panel.Pixel(127, 159))
	})
}

func TestWrite(t *testing.T) {
	rig := setupDevice(t, nil)

	n, err := rig.dev.Write(frameOf(image666.White))
	require.NoError(t, err)
	assert.Equal(t, rig.dev.FrameSize(), n)
	assert.Equal(t, image666.White, rig.panel.Pixel(64, 80))
}

func TestFrameTransfer(t *testing.T) {
	rig := setupDevice(t, nil)
	rig.panel.ClearLog()

	frame := frameOf(image666.Green)
	require.NoError(t, rig.dev.StartFrameTransfer(frame))

	// Full window is already set, only the memory write is issued.
	assert.Equal(t, []st7735.Command{st7735.RAMWR}, rig.panel.Commands())
	assert.True(t, rig.dma.Pending())
	assert.False(t, rig.dev.IsTransferComplete())
	assert.Equal(t, gpio.Low, rig.panel.CS.Read())

	// The engine and the bus stay owned by the transfer.
	assert.ErrorIs(t, rig.dev.StartFrameTransfer(frame), st7735.ErrTransferInProgress)
	assert.ErrorIs(t, rig.dev.SendCommand(st7735.NOP), st7735.ErrTransferInProgress)
	assert.ErrorIs(t, rig.dev.DrawRectangle(0, 0, 1, 1, image666.Red), st7735.ErrTransferInProgress)
	_, err := rig.dev.ReadID(st7735.ID1)
	assert.ErrorIs(t, err, st7735.ErrTransferInProgress)
	assert.Equal(t, 1, rig.dma.Enables())

	// The backlight is independent of the bus.
	require.NoError(t, rig.dev.SetBacklight(true))
	assert.Equal(t, gpio.High, rig.panel.BL.Read())

	require.True(t, rig.dma.Complete())
	assert.True(t, rig.dev.IsTransferComplete())
	require.NoError(t, rig.dev.WaitTransfer(context.Background()))
	assert.Equal(t, gpio.High, rig.panel.CS.Read())
	assert.Equal(t, 1, rig.dma.Disables())

	tx := lastTx(t, rig.panel)
	assert.Len(t, tx.Data, rig.dev.FrameSize())
	assert.Equal(t, 1, tx.Frames)
	assert.Equal(t, image666.Green, rig.panel.Pixel(0, 0))
	assert.Equal(t, image666.Green, rig.panel.Pixel(127, 159))

	// The bus is usable again.
	require.NoError(t, rig.dev.SendCommand(st7735.NOP))
}

func TestFrameTransferRestoresFullWindow(t *testing.T) {
	rig := setupDevice(t, nil)
	require.NoError(t, rig.dev.DrawRectangle(10, 10, 19, 19, image666.Red))
	rig.panel.ClearLog()

	require.NoError(t, rig.dev.StartFrameTransfer(frameOf(image666.Blue)))
	assert.Equal(t, []st7735.Command{st7735.CASET, st7735.RASET, st7735.RAMWR}, rig.panel.Commands())
	require.True(t, rig.dma.Complete())
	require.NoError(t, rig.dev.WaitTransfer(context.Background()))

	assert.Equal(t, image666.Blue, rig.panel.Pixel(15, 15))
	assert.Equal(t, st7735.AddressWindow{ColEnd: 127, RowEnd: 159}, rig.dev.Window())
}

func TestFrameTransferCompletionOrder(t *testing.T) {
	rig := setupDevice(t, nil)
	require.NoError(t, rig.dev.StartFrameTransfer(frameOf(image666.Red)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		rig.dma.Complete()
	}()

	for !rig.dev.IsTransferComplete() {
		runtime.Gosched()
	}
	// Completion is published only after the chip has been released.
	assert.Equal(t, gpio.High, rig.panel.CS.Read())
	assert.Equal(t, 1, rig.dma.Disables())
	<-done
}

func TestFrameTransferErrors(t *testing.T) {
	t.Run("wrong size", func(t *testing.T) {
		rig := setupDevice(t, nil)
		err := rig.dev.StartFrameTransfer(make([]byte, 10))
		assert.ErrorIs(t, err, st7735.ErrInvalidBuffer)
		assert.True(t, rig.dev.IsTransferComplete())
	})

	t.Run("no channel", func(t *testing.T) {
		panel := sim.NewPanel(st7735.Width, st7735.Height)
		dev, err := st7735.New(panel, nil, panel.Pins(), &st7735.Opts{Sleep: func(time.Duration) {}})
		require.NoError(t, err)
		assert.Error(t, dev.StartFrameTransfer(frameOf(image666.Black)))
	})

	t.Run("enable fails", func(t *testing.T) {
		rig := setupDevice(t, nil)
		rig.dma.EnableErr = errors.New("channel busy")
		err := rig.dev.StartFrameTransfer(frameOf(image666.Black))
		require.Error(t, err)
		assert.True(t, rig.dev.IsTransferComplete())
		assert.Equal(t, gpio.High, rig.panel.CS.Read())
		require.NoError(t, rig.dev.SendCommand(st7735.NOP))
	})

	t.Run("transfer fails", func(t *testing.T) {
		rig := setupDevice(t, nil)
		fault := errors.New("dma fault")
		rig.dma.Fail = fault
		require.NoError(t, rig.dev.StartFrameTransfer(frameOf(image666.Black)))
		require.True(t, rig.dma.Complete())
		assert.ErrorIs(t, rig.dev.WaitTransfer(context.Background()), fault)
		assert.True(t, rig.dev.IsTransferComplete())
	})

	t.Run("wait timeout", func(t *testing.T) {
		rig := setupDevice(t, nil)
		require.NoError(t, rig.dev.StartFrameTransfer(frameOf(image666.Black)))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, rig.dev.WaitTransfer(ctx), context.DeadlineExceeded)
		require.True(t, rig.dma.Complete())
		assert.NoError(t, rig.dev.WaitTransfer(context.Background()))
	})
}

func TestBusStall(t *testing.T) {
	rig := setupDevice(t, nil)
	rig.panel.Stall = true

	err := rig.dev.SendCommand(st7735.NOP)
	require.ErrorIs(t, err, st7735.ErrBusStall)
	var busErr *st7735.BusError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, "write byte", busErr.Op)
	assert.Equal(t, gpio.High, rig.panel.CS.Read())

	_, err = rig.dev.ReadID(st7735.IDAll)
	require.ErrorIs(t, err, st7735.ErrBusStall)
	assert.True(t, rig.panel.Transmitting())
}

func TestSleepAndDisplay(t *testing.T) {
	rig := setupDevice(t, nil)

	require.NoError(t, rig.dev.SetSleep(true))
	assert.True(t, rig.panel.Asleep())
	require.NoError(t, rig.dev.SetSleep(false))
	assert.False(t, rig.panel.Asleep())

	require.NoError(t, rig.dev.SetDisplayOn(false))
	assert.False(t, rig.panel.DisplayOn())
	require.NoError(t, rig.dev.SetDisplayOn(true))
	assert.True(t, rig.panel.DisplayOn())

	rig.panel.ClearLog()
	require.NoError(t, rig.dev.Invert(true))
	require.NoError(t, rig.dev.Invert(false))
	assert.Equal(t, []st7735.Command{st7735.INVON, st7735.INVOFF}, rig.panel.Commands())
}

func TestHWReset(t *testing.T) {
	rig := setupDevice(t, nil)
	resets := rig.panel.Resets()

	require.NoError(t, rig.dev.HWReset())
	assert.Equal(t, resets+1, rig.panel.Resets())
	assert.Equal(t, gpio.High, rig.panel.RST.Read())
	delays := rig.sleeps.get()
	assert.Equal(t, 10*time.Millisecond, delays[len(delays)-1])
}

func TestHaltAndInit(t *testing.T) {
	rig := setupDevice(t, nil)
	require.NoError(t, rig.dev.SetBacklight(true))

	require.NoError(t, rig.dev.Halt())
	assert.False(t, rig.panel.DisplayOn())
	assert.Equal(t, gpio.Low, rig.panel.BL.Read())
	assert.ErrorIs(t, rig.dev.SendCommand(st7735.NOP), st7735.ErrHalted)
	assert.ErrorIs(t, rig.dev.Halt(), st7735.ErrHalted)

	require.NoError(t, rig.dev.Init())
	assert.True(t, rig.panel.DisplayOn())
	require.NoError(t, rig.dev.SendCommand(st7735.NOP))
}

func TestRegisterAccess(t *testing.T) {
	rig := setupDevice(t, nil)
	rig.panel.ClearLog()

	require.NoError(t, rig.dev.WriteRegister(st7735.MADCTL, []byte{st7735.MADCTL_BGR}))
	assert.Equal(t, byte(st7735.MADCTL_BGR), rig.panel.MADCTL())

	var buf [1]byte
	require.NoError(t, rig.dev.ReadRegister(st7735.RDDMADCTL, buf[:]))
	assert.Equal(t, byte(st7735.MADCTL_BGR), buf[0])

	assert.ErrorIs(t, rig.dev.ReadRegister(st7735.RDDID, nil), st7735.ErrInvalidBuffer)

	rig.panel.ClearLog()
	require.NoError(t, rig.dev.SendCommand(st7735.COLMOD))
	require.NoError(t, rig.dev.SendData(0x06))
	tx := lastTx(t, rig.panel)
	assert.Equal(t, st7735.COLMOD, tx.Cmd)
	assert.Equal(t, []byte{0x06}, tx.Data)
	assert.Equal(t, 1, tx.Frames)
}
