package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// Output formats.
const (
	FormatPNG   = "png"
	FormatSVG   = "svg"
	FormatASCII = "txt"
	FormatJSON  = "json"
)

// Formats lists every format accepted by [Render].
var Formats = []string{FormatPNG, FormatSVG, FormatASCII, FormatJSON}

// palette colors widgets without an explicit color.
var palette = []string{"#dbeafe", "#dcfce7", "#fef3c7", "#fce7f3", "#ede9fe", "#e0f2fe", "#fee2e2"}

const (
	guideColor   = "#94a3b8"
	barrierColor = "#ef4444"
	strokeColor  = "#334155"
)

// Option configures a renderer.
type Option func(*options)

type options struct {
	scale      float64
	labels     bool
	guides     bool
	cellWidth  int
	cellHeight int
}

func defaults() options {
	return options{scale: 1, labels: true, cellWidth: 8, cellHeight: 16}
}

// WithScale multiplies the raster size of PNG output. Values <= 0 are ignored.
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

// WithLabels toggles widget labels.
func WithLabels(on bool) Option { return func(o *options) { o.labels = on } }

// WithGuides draws guidelines and barriers.
func WithGuides(on bool) Option { return func(o *options) { o.guides = on } }

// WithCell sets the size in layout units of one ASCII character cell.
func WithCell(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.cellWidth, o.cellHeight = width, height
		}
	}
}

// box is a drawable widget.
type box struct {
	scene.Placement
	fill  string
	label string
}

// boxes returns the visible widgets of g with their fill and label.
func boxes(g scene.Geometry) []box {
	var out []box
	n := 0
	for _, p := range g.Widgets {
		if p.Kind != "widget" {
			continue
		}
		b := box{Placement: p, fill: p.Color, label: p.Name}
		if p.Text != "" {
			b.label = strings.ReplaceAll(p.Text, "\n", " ")
		}
		if b.fill == "" {
			b.fill = palette[n%len(palette)]
		}
		n++
		if p.Visibility != "" || p.Width <= 0 || p.Height <= 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}

// line is a guideline or barrier. Vertical lines sit at x, horizontal
// lines at y.
type line struct {
	name     string
	vertical bool
	pos      int
	barrier  bool
}

func lines(g scene.Geometry) []line {
	var out []line
	for _, p := range g.Widgets {
		if p.Kind != "guideline" && p.Kind != "barrier" {
			continue
		}
		l := line{name: p.Name, barrier: p.Kind == "barrier"}
		if p.Orientation == "vertical" {
			l.vertical, l.pos = true, p.X
		} else {
			l.pos = p.Y
		}
		out = append(out, l)
	}
	return out
}

// Render draws g in the given format.
func Render(g scene.Geometry, format string, opts ...Option) ([]byte, error) {
	if err := errors.ValidateFormat(format, Formats...); err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return PNG(g, opts...)
	case FormatSVG:
		return SVG(g, opts...), nil
	case FormatASCII:
		return []byte(ASCII(g, opts...)), nil
	case FormatJSON:
		return scene.MarshalGeometry(g)
	}
	return nil, fmt.Errorf("unreachable format %q", format)
}
