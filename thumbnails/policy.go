package thumbnails

import (
	"image"
	"strings"
)

// SizeCheckFn reports whether an image of the passed size is large enough to generate
// a thumbnail of the passed box without enlarging.
type SizeCheckFn func(size image.Point, width, height int) bool

// WidthOnlySizeCheck compares only the image width with both width and height of the box.
// It is the default check, thumbnails that were already generated with it stay valid.
// Use [HeightAwareSizeCheck] to take the image height into account.
func WidthOnlySizeCheck(size image.Point, width, height int) bool {
	return size.X >= width && size.X >= height
}

// HeightAwareSizeCheck compares both dimensions of the image with the box.
func HeightAwareSizeCheck(size image.Point, width, height int) bool {
	return size.X >= width && size.Y >= height
}

// enlargeSize scales the size by max(width/size.X, height/size.Y), so both dimensions
// become >= than the box ones. The result is rounded down.
//
// Integer arithmetic is used to get exact results: the dimension with the larger ratio
// always equals the box dimension.
func enlargeSize(size image.Point, width, height int) (newWidth, newHeight int) {
	if size.X <= 0 || size.Y <= 0 {
		return width, height
	}

	var (
		w, h = int64(size.X), int64(size.Y)
		bw   = int64(width)
		bh   = int64(height)
	)
	if bw*h >= bh*w {
		// width/size.X >= height/size.Y
		newWidth = width
		newHeight = int(h * bw / w)
	} else {
		newWidth = int(w * bh / h)
		newHeight = height
	}
	return max(newWidth, 1), max(newHeight, 1)
}

// CenterOffsetFn returns the position of an image pasted on a canvas.
type CenterOffsetFn func(canvas, img image.Point) image.Point

// computeCenterOffset centers the image horizontally if it is narrower than the canvas.
// Otherwise, it centers the image vertically if it is lower than the canvas. So, only
// one axis is centered even if the image is smaller in both dimensions. Use
// [BothAxesCenterOffset] to center both.
//
// Halves are rounded up.
func computeCenterOffset(canvas, img image.Point) image.Point {
	var offset image.Point
	if canvas.X > img.X {
		offset.X = (canvas.X - img.X + 1) / 2
	} else if canvas.Y > img.Y {
		offset.Y = (canvas.Y - img.Y + 1) / 2
	}
	return offset
}

// BothAxesCenterOffset centers the image on both axes.
func BothAxesCenterOffset(canvas, img image.Point) image.Point {
	var offset image.Point
	if canvas.X > img.X {
		offset.X = (canvas.X - img.X + 1) / 2
	}
	if canvas.Y > img.Y {
		offset.Y = (canvas.Y - img.Y + 1) / 2
	}
	return offset
}

// legacyWebRoot is the alias of the public web directory. It is cut from thumbnail paths
// when there is no base url, so "@frontend/web/uploads/small-a.jpg" becomes
// "/uploads/small-a.jpg". Other aliases are left as is.
const legacyWebRoot = "@frontend/web"

func legacyFrontendWebURL(path string) string {
	return strings.ReplaceAll(path, legacyWebRoot, "")
}
