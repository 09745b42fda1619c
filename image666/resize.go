package image666

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize scales src to a w x h Image anchored at the origin.
// Catmull-Rom resampling keeps photographs smooth when shrinking them to panel size.
func Resize(src image.Image, w, h int) *Image {
	dst := New(image.Rect(0, 0, w, h))
	if dst.Rect.Empty() {
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
	return dst
}
