// Package image666 provides the 18-bit color format used by the ST7735 display controller.
//
// In 18 bits per pixel mode the ST7735 receives each pixel as three bytes, one
// per channel, in red, green, blue order. Only the six most significant bits of
// every byte are used; the two low bits are ignored by the controller and always
// sent as zero by this package.
//
// Wire layout of a single pixel:
//
//	Byte:   0         1         2
//	Bits:   RRRRRR00  GGGGGG00  BBBBBB00
//
// This package provides:
//
// - Color: a packed 6-6-6 color (red in bits 17-12, green in 11-6, blue in 5-0)
// - Model: a color model converting standard Go colors to Color
// - Image: an image.Image whose Pix slice is already in controller wire format
// - Resize: scales any image into an Image of the requested size
//
// Example usage:
//
//	// Create a 128x160 frame
//	img := image666.New(image.Rect(0, 0, 128, 160))
//
//	// Paint a pixel red
//	img.SetColor666(10, 20, image666.Red)
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(image666.Blue), image.Point{}, draw.Src)
//
//	// img.Pix can be handed to the driver as is.
package image666
