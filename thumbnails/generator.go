package thumbnails

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"reflect"
	"time"

	"github.com/ShoshinNikita/rthumb/pkg/cache"
	"github.com/ShoshinNikita/rthumb/pkg/metrics"
	"github.com/ShoshinNikita/rthumb/pkg/misc"
	"github.com/ShoshinNikita/rthumb/pkg/rlog"
	"github.com/ShoshinNikita/rthumb/rthumb"
	"github.com/prometheus/client_golang/prometheus"
)

// Generator generates thumbnails of images stored in the source directory. Thumbnails
// are saved to the destination directory as "<type>-<filename>" and never regenerated:
// an existing file is always considered up to date.
//
// Generator doesn't have any mutable state, so it is safe for concurrent use. However,
// concurrent calls for the same thumbnail can generate it more than once.
type Generator struct {
	cfg   rthumb.BehaviorConfig
	specs rthumb.Specs

	sourceDir string
	baseURL   string
	cache     *cache.DiskCache

	urls rthumb.URLBuilder

	imaging      Imaging
	checkSize    SizeCheckFn
	centerOffset CenterOffsetFn
}

type Option func(*Generator)

func WithImaging(imaging Imaging) Option {
	return func(g *Generator) { g.imaging = imaging }
}

// WithSizeCheck overrides [WidthOnlySizeCheck].
func WithSizeCheck(fn SizeCheckFn) Option {
	return func(g *Generator) { g.checkSize = fn }
}

// WithCenterOffset overrides the default single-axis centering of inset thumbnails.
func WithCenterOffset(fn CenterOffsetFn) Option {
	return func(g *Generator) { g.centerOffset = fn }
}

// NewGenerator validates the specs and resolves all paths of the config. The specs
// can't be changed after that.
func NewGenerator(
	cfg rthumb.BehaviorConfig, specs rthumb.Specs,
	resolver rthumb.AliasResolver, urls rthumb.URLBuilder, opts ...Option,
) (*Generator, error) {

	if resolver == nil || urls == nil {
		return nil, errors.New("alias resolver and url builder are required")
	}

	cfg = cfg.WithDefaults()

	specs, err := specs.Prepare()
	if err != nil {
		return nil, err
	}

	sourceDir, err := resolver.Resolve(cfg.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("couldn't resolve source path: %w", err)
	}
	destinationDir, err := resolver.Resolve(cfg.DestinationPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't resolve destination path: %w", err)
	}
	var baseURL string
	if cfg.BaseURL != "" {
		baseURL, err = resolver.Resolve(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("couldn't resolve base url: %w", err)
		}
	}

	destinationCache, err := cache.NewDiskCache(destinationDir)
	if err != nil {
		return nil, fmt.Errorf("couldn't prepare destination dir: %w", err)
	}

	g := &Generator{
		cfg:   cfg,
		specs: specs,
		//
		sourceDir: sourceDir,
		baseURL:   baseURL,
		cache:     destinationCache,
		//
		urls: urls,
		//
		imaging:      NewImaging(),
		checkSize:    WidthOnlySizeCheck,
		centerOffset: computeCenterOffset,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// DestinationDir returns the absolute path of the directory with thumbnails.
func (g *Generator) DestinationDir() string {
	return g.cache.Dir()
}

// Specs returns the configured thumbnail specs. The returned map must not be modified.
func (g *Generator) Specs() rthumb.Specs {
	return g.specs
}

// GetThumbnail returns the url of the thumbnail for the image stored in the attribute of
// the owner. The thumbnail is generated if it doesn't exist yet.
//
// It returns [rthumb.ErrInvalidConfiguration] if thumbnailType is not configured. Errors
// of image decoding and file operations are wrapped, so [errors.Is] can be used to
// check them (for example, [io/fs.ErrNotExist] for missing images).
func (g *Generator) GetThumbnail(owner rthumb.Owner, attribute, thumbnailType string) (string, error) {
	if isNil(owner) {
		return "", rthumb.ErrInvalidOwner
	}
	if attribute == "" {
		return "", rthumb.ErrInvalidAttribute
	}
	spec, ok := g.specs[thumbnailType]
	if !ok {
		return "", fmt.Errorf("%w: %q", rthumb.ErrInvalidConfiguration, thumbnailType)
	}

	filename, err := owner.GetField(attribute)
	if err != nil {
		return "", fmt.Errorf("couldn't get attribute %q: %w", attribute, err)
	}
	if !filepath.IsLocal(filename) {
		return "", fmt.Errorf("%w: %q", rthumb.ErrInvalidFilename, filename)
	}

	name := thumbnailType + "-" + filename

	err = g.cache.Check(name)
	switch {
	case err == nil:
		rlog.Debugf("thumbnail %q already exists", name)

	case errors.Is(err, cache.ErrCacheMiss):
		err := g.generate(spec, thumbnailType, filename, name)
		if err != nil {
			metrics.ThumbnailsErrors.With(prometheus.Labels{"type": thumbnailType}).Inc()
			return "", err
		}

	default:
		return "", fmt.Errorf("couldn't check thumbnail %q: %w", name, err)
	}

	return g.buildURL(name), nil
}

// isNil reports whether the owner is nil or a nil pointer.
func isNil(owner rthumb.Owner) bool {
	v := reflect.ValueOf(owner)
	return !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil())
}

func (g *Generator) generate(spec rthumb.ThumbnailSpec, thumbnailType, filename, name string) error {
	now := time.Now()

	img, err := g.imaging.Open(filepath.Join(g.sourceDir, filename))
	if err != nil {
		return fmt.Errorf("couldn't open image %q: %w", filename, err)
	}

	img = g.transform(img, spec, thumbnailType)

	var size int64
	err = g.cache.Write(name, func(w io.Writer) error {
		cw := &countingWriter{w: w}
		if err := g.imaging.Encode(cw, img, name); err != nil {
			return fmt.Errorf("couldn't encode thumbnail: %w", err)
		}
		size = cw.n
		return nil
	})
	if err != nil {
		return fmt.Errorf("couldn't save thumbnail %q: %w", name, err)
	}

	dur := time.Since(now)
	metrics.ThumbnailsGenerateDuration.With(prometheus.Labels{"type": thumbnailType}).Observe(dur.Seconds())
	metrics.ThumbnailsSizes.Observe(float64(size))

	rlog.Debugf("thumbnail %q was generated in %s, size: %s", name, dur, misc.FormatFileSize(size))

	return nil
}

// transform enlarges small images, fits them into the box and pads inset thumbnails.
func (g *Generator) transform(img image.Image, spec rthumb.ThumbnailSpec, thumbnailType string) image.Image {
	if size := img.Bounds().Size(); !g.checkSize(size, spec.Width, spec.Height) {
		width, height := enlargeSize(size, spec.Width, spec.Height)
		img = g.imaging.Resize(img, width, height)

		metrics.ThumbnailsEnlarged.With(prometheus.Labels{"type": thumbnailType}).Inc()
	}

	img = g.imaging.Thumbnail(img, spec.Width, spec.Height, spec.Mode)

	if spec.Mode == rthumb.ModeInset {
		canvas := g.imaging.Create(spec.Width, spec.Height, spec.GetBackground())
		offset := g.centerOffset(canvas.Bounds().Size(), img.Bounds().Size())
		img = g.imaging.Paste(canvas, img, offset)
	}
	return img
}

func (g *Generator) buildURL(name string) string {
	if g.cfg.BaseURL != "" {
		return g.urls.BuildURL(misc.JoinName(g.baseURL, name))
	}
	return g.urls.BuildURL(legacyFrontendWebURL(misc.JoinName(g.cfg.DestinationPath, name)))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
