package st7735

import "fmt"

// Command is an ST7735 controller opcode.
type Command byte

// System function commands.
const (
	NOP       Command = 0x00 // No operation
	SWRESET   Command = 0x01 // Software reset
	RDDID     Command = 0x04 // Read display ID (ID1, ID2, ID3)
	RDDST     Command = 0x09 // Read display status
	RDDPM     Command = 0x0A // Read display power mode
	RDDMADCTL Command = 0x0B // Read memory data access control
	RDDCOLMOD Command = 0x0C // Read interface pixel format
	RDDIM     Command = 0x0D // Read display image mode
	RDDSM     Command = 0x0E // Read display signal mode
	RDDSDR    Command = 0x0F // Read self-diagnostic result
	SLPIN     Command = 0x10 // Sleep in and booster off
	SLPOUT    Command = 0x11 // Sleep out and booster on
	PTLON     Command = 0x12 // Partial mode on
	NORON     Command = 0x13 // Partial mode off (normal)
	INVOFF    Command = 0x20 // Display inversion off
	INVON     Command = 0x21 // Display inversion on
	GAMSET    Command = 0x26 // Gamma curve select
	DISPOFF   Command = 0x28 // Display off
	DISPON    Command = 0x29 // Display on
	CASET     Command = 0x2A // Column address set
	RASET     Command = 0x2B // Row address set
	RAMWR     Command = 0x2C // Memory write
	RGBSET    Command = 0x2D // Color LUT for 4k, 65k and 262k colors
	RAMRD     Command = 0x2E // Memory read
	PTLAR     Command = 0x30 // Partial start/end address set
	SCRLAR    Command = 0x33 // Scroll area set
	TEOFF     Command = 0x34 // Tearing effect line off
	TEON      Command = 0x35 // Tearing effect line on
	MADCTL    Command = 0x36 // Memory data access control
	VSCSAD    Command = 0x37 // Scroll start address of RAM
	IDMOFF    Command = 0x38 // Idle mode off
	IDMON     Command = 0x39 // Idle mode on
	COLMOD    Command = 0x3A // Interface pixel format
	RDID1     Command = 0xDA // Read ID1 (manufacturer)
	RDID2     Command = 0xDB // Read ID2 (driver version)
	RDID3     Command = 0xDC // Read ID3 (driver)
)

// Panel function commands.
const (
	FRMCTR1  Command = 0xB1 // Frame rate control, normal mode
	FRMCTR2  Command = 0xB2 // Frame rate control, idle mode
	FRMCTR3  Command = 0xB3 // Frame rate control, partial mode and full colors
	INVCTR   Command = 0xB4 // Display inversion control
	PWCTR1   Command = 0xC0 // Power control 1
	PWCTR2   Command = 0xC1 // Power control 2
	PWCTR3   Command = 0xC2 // Power control 3, normal mode
	PWCTR4   Command = 0xC3 // Power control 4, idle mode
	PWCTR5   Command = 0xC4 // Power control 5, partial mode and full colors
	VMCTR1   Command = 0xC5 // VCOM control 1
	VMOFCTR  Command = 0xC7 // VCOM offset control
	WRID2    Command = 0xD1 // Set LCM version code (ID2)
	WRID3    Command = 0xD2 // Set customer project code (ID3)
	NVCTR1   Command = 0xD9 // NVM control status
	NVCTR2   Command = 0xDE // NVM read command
	NVCTR3   Command = 0xDF // NVM write command
	GAMCTRP1 Command = 0xE0 // Gamma adjustment, positive polarity
	GAMCTRN1 Command = 0xE1 // Gamma adjustment, negative polarity
	GCV      Command = 0xFC // Gate clock variable
)

// MADCTL register bits.
const (
	MADCTL_MY  = 1 << 7 // Row address order (y mirror)
	MADCTL_MX  = 1 << 6 // Column address order (x mirror)
	MADCTL_MV  = 1 << 5 // Row/column exchange
	MADCTL_ML  = 1 << 4 // Vertical refresh order
	MADCTL_BGR = 1 << 3 // BGR color order
	MADCTL_MH  = 1 << 2 // Horizontal refresh order

	madctlMirrorMask = MADCTL_MY | MADCTL_MX
)

var commandNames = map[Command]string{
	NOP: "NOP", SWRESET: "SWRESET", RDDID: "RDDID", RDDST: "RDDST", RDDPM: "RDDPM",
	RDDMADCTL: "RDDMADCTL", RDDCOLMOD: "RDDCOLMOD", RDDIM: "RDDIM", RDDSM: "RDDSM",
	RDDSDR: "RDDSDR", SLPIN: "SLPIN", SLPOUT: "SLPOUT", PTLON: "PTLON", NORON: "NORON",
	INVOFF: "INVOFF", INVON: "INVON", GAMSET: "GAMSET", DISPOFF: "DISPOFF", DISPON: "DISPON",
	CASET: "CASET", RASET: "RASET", RAMWR: "RAMWR", RGBSET: "RGBSET", RAMRD: "RAMRD",
	PTLAR: "PTLAR", SCRLAR: "SCRLAR", TEOFF: "TEOFF", TEON: "TEON", MADCTL: "MADCTL",
	VSCSAD: "VSCSAD", IDMOFF: "IDMOFF", IDMON: "IDMON", COLMOD: "COLMOD",
	RDID1: "RDID1", RDID2: "RDID2", RDID3: "RDID3",
	FRMCTR1: "FRMCTR1", FRMCTR2: "FRMCTR2", FRMCTR3: "FRMCTR3", INVCTR: "INVCTR",
	PWCTR1: "PWCTR1", PWCTR2: "PWCTR2", PWCTR3: "PWCTR3", PWCTR4: "PWCTR4", PWCTR5: "PWCTR5",
	VMCTR1: "VMCTR1", VMOFCTR: "VMOFCTR", WRID2: "WRID2", WRID3: "WRID3",
	NVCTR1: "NVCTR1", NVCTR2: "NVCTR2", NVCTR3: "NVCTR3",
	GAMCTRP1: "GAMCTRP1", GAMCTRN1: "GAMCTRN1", GCV: "GCV",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(0x%02X)", byte(c))
}

// IDSelector selects which identification register ReadID reads.
type IDSelector int

const (
	// IDAll reads ID1, ID2 and ID3 in one RDDID transaction.
	// The combined read has not been validated on every panel revision; the
	// single register selectors are the reliable way to read IDs.
	IDAll IDSelector = iota
	// ID1 is the manufacturer ID.
	ID1
	// ID2 is the driver version ID.
	ID2
	// ID3 is the driver ID.
	ID3
)

func (s IDSelector) String() string {
	switch s {
	case IDAll:
		return "IDAll"
	case ID1:
		return "ID1"
	case ID2:
		return "ID2"
	case ID3:
		return "ID3"
	}
	return fmt.Sprintf("IDSelector(%d)", int(s))
}
