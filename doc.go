// Package st7735 controls a ST7735 color TFT display via a 3-wire SPI bus.
//
// The ST7735 is an 18-bit RGB controller with 132×162 pixels of display RAM,
// usually fitted to 128×160 panels. This driver implements the
// display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - 18-bit color (6 bits per channel), 3 bytes per pixel on the wire
// - Single bidirectional data line: registers can be written and read back
// - Addressing window for partial updates
// - Memory mirroring on both axes
// - Display inversion, sleep mode and backlight control
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL         → SPI Clock (SCLK)
//	SDA         → SPI Data (MOSI, shared for reads)
//	DC (A0)     → GPIO
//	CS          → GPIO (chip select is driven by the driver)
//	RES         → Optional: GPIO for hardware reset
//	BL (LED)    → Optional: GPIO for the backlight
//
// Chip select must be a plain GPIO: a register read spans several SPI
// messages that have to share one chip select assertion.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/st7735"
//		"periph.io/x/devices/v3/st7735/image666"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		port, _ := spireg.Open("")
//		dev, _ := st7735.NewSPI(port, st7735.Pins{
//			CS:  gpioreg.ByName("GPIO8"),
//			DC:  gpioreg.ByName("GPIO25"),
//			RST: gpioreg.ByName("GPIO24"),
//			BL:  gpioreg.ByName("GPIO18"),
//		}, nil)
//		defer dev.Halt()
//
//		dev.SetBacklight(true)
//
//		img := image666.New(dev.Bounds())
//		img.Fill(image666.Blue)
//		dev.Draw(dev.Bounds(), img, image.Point{})
//	}
//
// # Writing Pixels
//
// Pixels travel as three bytes, one per channel, with the 6 significant bits
// in the upper part of each byte. The image666 package stores images in this
// layout so they can be sent without conversion.
//
// WriteRect sends a block of pixels to any rectangle of the panel:
//
//	sprite := make([]byte, 40*40*3)
//	// ... fill sprite ...
//	dev.WriteRect(sprite, 40, 40, 50, 50)
//
// DrawRectangle fills a rectangle with one color without a buffer:
//
//	dev.DrawRectangle(0, 0, 127, 19, image666.Red)
//
// # Frame Transfers
//
// StartFrameTransfer hands a full frame to the DMA channel and returns right
// away. The frame must not be modified, and no other bus operation can run,
// until the transfer has completed:
//
//	frame := make([]byte, dev.FrameSize())
//	dev.StartFrameTransfer(frame)
//	// ... prepare the next frame in another buffer ...
//	dev.WaitTransfer(ctx)
//
// IsTransferComplete polls the same state without blocking.
//
// # Reading Registers
//
// The controller answers on the data line after a read command. Reads of
// more than one byte need a dummy clock cycle, which the driver inserts by
// sending the address as a 9-bit word. Reads run at 250kHz.
//
//	id, _ := dev.ReadID(st7735.ID1)
//
// # Debugging
//
// Set ST7735_DEBUG=1 in the environment, or call SetDebugEnabled, to print
// initialization and transfer diagnostics. SetDebugOutput redirects them.
//
// # Datasheet
//
// https://www.displayfuture.com/Display/datasheet/controller/ST7735.pdf
package st7735
