package rthumb

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"maps"
	"slices"
	"strings"
)

type Mode string

const (
	// ModeOutbound fills the whole box and crops the overflow.
	ModeOutbound Mode = "outbound"
	// ModeInset fits the image into the box without cropping. The result is padded
	// to the exact box size.
	ModeInset Mode = "inset"
)

func (m Mode) MarshalText() (text []byte, err error) {
	return []byte(m), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	*m = Mode(text)

	return checkEnum(*m, ModeOutbound, ModeInset)
}

func checkEnum[T comparable](v T, validValues ...T) error {
	if !slices.Contains(validValues, v) {
		return fmt.Errorf("valid values: %v", validValues)
	}
	return nil
}

// Color is a hex color: #rgb, #rrggbb or #rrggbbaa.
type Color color.NRGBA

var White = Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func (c Color) MarshalText() (text []byte, err error) {
	if c.A == 0xff {
		return fmt.Appendf(nil, "#%02x%02x%02x", c.R, c.G, c.B), nil
	}
	return fmt.Appendf(nil, "#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	s, ok := strings.CutPrefix(string(text), "#")
	if !ok {
		return errors.New("color must start with '#'")
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return fmt.Errorf("invalid color %q, valid formats: #rgb, #rrggbb, #rrggbbaa", text)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	*c = Color{R: b[0], G: b[1], B: b[2], A: b[3]}
	return nil
}

func (c Color) String() string {
	text, _ := c.MarshalText()
	return string(text)
}

// ThumbnailSpec describes the target box of a thumbnail type.
type ThumbnailSpec struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Mode   Mode `yaml:"mode"`
	// Background is used to pad inset thumbnails. Optional, white by default.
	Background *Color `yaml:"background"`
}

// GetBackground returns the padding color.
func (s ThumbnailSpec) GetBackground() color.NRGBA {
	if s.Background == nil {
		return color.NRGBA(White)
	}
	return color.NRGBA(*s.Background)
}

func (s ThumbnailSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("width and height must be > 0, got %dx%d", s.Width, s.Height)
	}
	if err := checkEnum(s.Mode, ModeOutbound, ModeInset); err != nil {
		return fmt.Errorf("invalid mode %q: %w", s.Mode, err)
	}
	return nil
}

// Specs maps thumbnail types to their specs.
type Specs map[string]ThumbnailSpec

// Prepare returns a validated copy of the specs with default values set.
func (specs Specs) Prepare() (Specs, error) {
	if len(specs) == 0 {
		return nil, errors.New("at least one thumbnail type must be configured")
	}

	res := make(Specs, len(specs))
	for _, name := range specs.Types() {
		spec := specs[name]
		if name == "" || strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf("invalid thumbnail type %q", name)
		}
		if spec.Mode == "" {
			spec.Mode = ModeOutbound
		}
		if spec.Background != nil {
			bg := *spec.Background
			spec.Background = &bg
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid thumbnail type %q: %w", name, err)
		}
		res[name] = spec
	}
	return res, nil
}

// Types returns sorted thumbnail types.
func (specs Specs) Types() []string {
	return slices.Sorted(maps.Keys(specs))
}

// DefaultSourcePath is used when [BehaviorConfig.SourcePath] is empty.
const DefaultSourcePath = "@frontend/web/uploads"

// BehaviorConfig describes where original images are stored and where thumbnails
// should be saved. All paths can contain aliases.
type BehaviorConfig struct {
	SourcePath string `yaml:"source_path"`
	// DestinationPath is the same as SourcePath by default.
	DestinationPath string `yaml:"destination_path"`
	// BaseURL is used to build thumbnail URLs. If it is empty, URLs are built
	// from DestinationPath.
	BaseURL string `yaml:"base_url"`
}

// WithDefaults returns a copy of the config with default values set.
func (cfg BehaviorConfig) WithDefaults() BehaviorConfig {
	if cfg.SourcePath == "" {
		cfg.SourcePath = DefaultSourcePath
	}
	if cfg.DestinationPath == "" {
		cfg.DestinationPath = cfg.SourcePath
	}
	return cfg
}
