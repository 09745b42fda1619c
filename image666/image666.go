// Package image666 provides an 18-bit RGB image format for the ST7735 display.
package image666

import (
	"image"
	"image/color"
)

// Color is a packed 18-bit RGB color.
// Bits 17-12 hold red, bits 11-6 green and bits 5-0 blue.
type Color uint32

// Common colors.
const (
	Black Color = 0x00000
	White Color = 0x3FFFF
	Red   Color = 0x3F000
	Green Color = 0x00FC0
	Blue  Color = 0x0003F
)

// RGB666 builds a Color from three 6-bit channel values.
// Only the lower 6 bits of each argument are used.
func RGB666(r, g, b uint8) Color {
	return Color(r&0x3F)<<12 | Color(g&0x3F)<<6 | Color(b&0x3F)
}

// Channels returns the 6-bit red, green and blue values.
func (c Color) Channels() (r, g, b uint8) {
	return uint8(c>>12) & 0x3F, uint8(c>>6) & 0x3F, uint8(c) & 0x3F
}

// Bytes returns the three wire bytes of c, each channel shifted left by 2.
func (c Color) Bytes() [3]byte {
	r, g, b := c.Channels()
	return [3]byte{r << 2, g << 2, b << 2}
}

// RGBA implements color.Color.
// Each 6-bit channel is scaled to 16 bits by bit replication.
func (c Color) RGBA() (r, g, b, a uint32) {
	r6, g6, b6 := c.Channels()
	return expand(r6), expand(g6), expand(b6), 0xFFFF
}

func expand(v uint8) uint32 {
	x := uint32(v & 0x3F)
	return x<<10 | x<<4 | x>>2
}

// toColor666 converts any color.Color to Color.
func toColor666(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	// Keep the 6 most significant bits of each 16-bit channel.
	return RGB666(uint8(r>>10), uint8(g>>10), uint8(b>>10))
}

// Model converts colors to Color.
var Model = color.ModelFunc(toColor666)

// Image is an 18-bit RGB image stored in ST7735 wire format, 3 bytes per pixel.
type Image struct {
	Pix    []byte          // Pixel data, R G B per pixel
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// New creates a new Image with the specified bounds.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 3*w*h),
		Stride: 3 * w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
func (p *Image) At(x, y int) color.Color {
	return p.Color666At(x, y)
}

// Color666At returns the Color of the pixel at (x, y).
func (p *Image) Color666At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Black
	}
	i := p.PixOffset(x, y)
	return RGB666(p.Pix[i]>>2, p.Pix[i+1]>>2, p.Pix[i+2]>>2)
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	p.SetColor666(x, y, Model.Convert(c).(Color))
}

// SetColor666 sets the pixel at (x, y) without going through color conversion.
func (p *Image) SetColor666(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	b := c.Bytes()
	copy(p.Pix[i:i+3], b[:])
}

// Fill paints every pixel of the image with c.
func (p *Image) Fill(c Color) {
	b := c.Bytes()
	for i := 0; i+3 <= len(p.Pix); i += 3 {
		copy(p.Pix[i:i+3], b[:])
	}
}

// Crop returns a copy of the pixels inside r, packed with no padding.
// The result can be sent as-is to a rectangular window of the same size.
func (p *Image) Crop(r image.Rectangle) *Image {
	r = r.Intersect(p.Rect)
	dst := New(r)
	if r.Empty() {
		return dst
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := p.PixOffset(r.Min.X, y)
		copy(dst.Pix[(y-r.Min.Y)*dst.Stride:], p.Pix[src:src+dst.Stride])
	}
	return dst
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}
