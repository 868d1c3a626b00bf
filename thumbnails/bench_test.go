package thumbnails

import (
	"fmt"
	"image"
	"testing"

	"github.com/ShoshinNikita/rthumb/rthumb"
	"github.com/disintegration/imaging"
)

// BenchmarkGenerator_transform can be used to compare the cost of thumbnail modes for
// different source sizes.
//
// One-liner:
//
//	go test -run="^\$" -bench="^BenchmarkGenerator_transform\$" -count=10 > _bench.txt && benchstat -col /mode _bench.txt
func BenchmarkGenerator_transform(b *testing.B) {
	g := &Generator{
		imaging:      NewImaging(),
		checkSize:    WidthOnlySizeCheck,
		centerOffset: computeCenterOffset,
	}

	for _, size := range []image.Point{{64, 48}, {640, 480}, {1920, 1080}} {
		img := imaging.New(size.X, size.Y, red)

		for _, mode := range []rthumb.Mode{rthumb.ModeOutbound, rthumb.ModeInset} {
			spec := rthumb.ThumbnailSpec{Width: 200, Height: 200, Mode: mode}

			b.Run(fmt.Sprintf("size=%dx%d/mode=%s", size.X, size.Y, mode), func(b *testing.B) {
				for range b.N {
					g.transform(img, spec, "bench")
				}
			})
		}
	}
}
