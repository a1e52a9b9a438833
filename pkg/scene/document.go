package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// Document is the decoded form of a scene file.
type Document struct {
	Name       string      `toml:"name,omitempty"`
	Layout     Settings    `toml:"layout,omitempty"`
	Root       Root        `toml:"root,omitempty"`
	Guidelines []Guideline `toml:"guideline,omitempty"`
	Barriers   []Barrier   `toml:"barrier,omitempty"`
	Widgets    []Widget    `toml:"widget,omitempty"`
}

// Settings controls how the scene is solved.
type Settings struct {
	// Level is an optimization level as accepted by
	// [layout.ParseOptimizationLevel]. Empty means "standard".
	Level string `toml:"level,omitempty"`
	// WidthMode and HeightMode select a measure pass ("exactly", "at_most",
	// "unspecified") instead of a plain layout of the root's design size.
	WidthMode     string `toml:"width_mode,omitempty"`
	HeightMode    string `toml:"height_mode,omitempty"`
	MaxIterations int    `toml:"max_iterations,omitempty"`
	CharWidth     int    `toml:"char_width,omitempty"`
	LineHeight    int    `toml:"line_height,omitempty"`
}

// Root configures the container's root widget.
type Root struct {
	Width      int    `toml:"width,omitempty"`
	Height     int    `toml:"height,omitempty"`
	Horizontal string `toml:"horizontal,omitempty"`
	Vertical   string `toml:"vertical,omitempty"`
	MinWidth   int    `toml:"min_width,omitempty"`
	MaxWidth   int    `toml:"max_width,omitempty"`
	MinHeight  int    `toml:"min_height,omitempty"`
	MaxHeight  int    `toml:"max_height,omitempty"`
}

// Guideline is a fixed line. Exactly one of Begin, End or Percent is set.
type Guideline struct {
	Name        string   `toml:"name"`
	Orientation string   `toml:"orientation"`
	Begin       *int     `toml:"begin,omitempty"`
	End         *int     `toml:"end,omitempty"`
	Percent     *float64 `toml:"percent,omitempty"`
}

// Barrier is a line that follows the extreme side of its references.
type Barrier struct {
	Name       string   `toml:"name"`
	Side       string   `toml:"side"`
	Margin     int      `toml:"margin,omitempty"`
	AllowsGone bool     `toml:"allows_gone,omitempty"`
	References []string `toml:"references"`
}

// Widget is one box.
type Widget struct {
	Name          string `toml:"name"`
	Text          string `toml:"text,omitempty"`
	ContentWidth  int    `toml:"content_width,omitempty"`
	ContentHeight int    `toml:"content_height,omitempty"`
	Color         string `toml:"color,omitempty"`

	X          int    `toml:"x,omitempty"`
	Y          int    `toml:"y,omitempty"`
	Width      int    `toml:"width,omitempty"`
	Height     int    `toml:"height,omitempty"`
	Horizontal string `toml:"horizontal,omitempty"`
	Vertical   string `toml:"vertical,omitempty"`
	MinWidth   int    `toml:"min_width,omitempty"`
	MaxWidth   int    `toml:"max_width,omitempty"`
	MinHeight  int    `toml:"min_height,omitempty"`
	MaxHeight  int    `toml:"max_height,omitempty"`

	HorizontalBias   *float64 `toml:"horizontal_bias,omitempty"`
	VerticalBias     *float64 `toml:"vertical_bias,omitempty"`
	HorizontalChain  string   `toml:"horizontal_chain,omitempty"`
	VerticalChain    string   `toml:"vertical_chain,omitempty"`
	HorizontalWeight *float64 `toml:"horizontal_weight,omitempty"`
	VerticalWeight   *float64 `toml:"vertical_weight,omitempty"`
	HorizontalMatch  *Match   `toml:"horizontal_match,omitempty"`
	VerticalMatch    *Match   `toml:"vertical_match,omitempty"`

	Ratio      string `toml:"ratio,omitempty"`
	Visibility string `toml:"visibility,omitempty"`
	Baseline   int    `toml:"baseline,omitempty"`

	Connect []Connection `toml:"connect,omitempty"`
}

// Match configures a match_constraint axis.
type Match struct {
	Style   string   `toml:"style,omitempty"`
	Min     int      `toml:"min,omitempty"`
	Max     int      `toml:"max,omitempty"`
	Percent *float64 `toml:"percent,omitempty"`
}

// Connection links one anchor of a widget to an anchor of another.
type Connection struct {
	From       string `toml:"from"`
	To         string `toml:"to"`
	Margin     int    `toml:"margin,omitempty"`
	GoneMargin *int   `toml:"gone_margin,omitempty"`
}

// Decode reads a scene document from r. Keys that are not part of the
// format are rejected so that typos do not silently drop constraints.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown key %q", undecoded[0].String())
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Parse decodes a scene document held in memory.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads the scene file at path. Scenes without a name are named
// after the file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = sceneName(path)
	}
	return doc, nil
}

// Encode writes doc as TOML. Encoding a decoded document yields a canonical
// form: formatting and comments of the source are not preserved.
func Encode(w io.Writer, doc *Document) error {
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Canonical returns the canonical TOML encoding of doc, suitable as a
// content hash input.
func Canonical(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
