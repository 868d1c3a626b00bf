package thumbnails

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/ShoshinNikita/rthumb/rthumb"
	"github.com/disintegration/imaging"
)

// Imaging decodes, transforms and encodes images.
type Imaging interface {
	Open(path string) (image.Image, error)
	// Resize resizes the image to the exact size, the aspect ratio is not preserved.
	Resize(img image.Image, width, height int) image.Image
	// Thumbnail fits the image into the box according to the mode. Outbound thumbnails
	// always have the size of the box. Inset thumbnails are never larger than the box.
	Thumbnail(img image.Image, width, height int, mode rthumb.Mode) image.Image
	Create(width, height int, c color.Color) image.Image
	Paste(background, img image.Image, pt image.Point) image.Image
	// Encode encodes the image in a format detected by the filename extension.
	Encode(w io.Writer, img image.Image, filename string) error
}

const jpegQuality = 90

type imagingBackend struct {
	filter imaging.ResampleFilter
}

var _ Imaging = imagingBackend{}

// NewImaging returns the default [Imaging] implementation. Supported formats: jpeg, png,
// gif, tiff and bmp.
func NewImaging() Imaging {
	return imagingBackend{
		filter: imaging.Lanczos,
	}
}

func (b imagingBackend) Open(path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}

func (b imagingBackend) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, b.filter)
}

func (b imagingBackend) Thumbnail(img image.Image, width, height int, mode rthumb.Mode) image.Image {
	if mode == rthumb.ModeInset {
		return imaging.Fit(img, width, height, b.filter)
	}
	return imaging.Fill(img, width, height, imaging.Center, b.filter)
}

func (imagingBackend) Create(width, height int, c color.Color) image.Image {
	return imaging.New(width, height, c)
}

func (imagingBackend) Paste(background, img image.Image, pt image.Point) image.Image {
	return imaging.Paste(background, img, pt)
}

func (imagingBackend) Encode(w io.Writer, img image.Image, filename string) error {
	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		return fmt.Errorf("couldn't detect format of %q: %w", filename, err)
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(jpegQuality))
}
