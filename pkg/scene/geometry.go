package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Geometry is the solved state of a scene: every frame plus the counters
// of the solve that produced it. It is the unit the pipeline caches and
// the renderers draw.
type Geometry struct {
	Name    string      `json:"name"`
	Level   string      `json:"level"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Widgets []Placement `json:"widgets"`
	Stats   Stats       `json:"stats"`
}

// Placement is the solved frame of one widget, guideline or barrier.
type Placement struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Baseline   *int   `json:"baseline,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	// Orientation is "vertical" or "horizontal" for guidelines and barriers.
	Orientation string `json:"orientation,omitempty"`
	Text        string `json:"text,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Stats mirrors [layout.Stats] in serializable form.
type Stats struct {
	Passes       int  `json:"passes"`
	Direct       int  `json:"direct"`
	Solved       int  `json:"solved"`
	Systems      int  `json:"systems"`
	Iterations   int  `json:"iterations"`
	MeasureCalls int  `json:"measure_calls"`
	CacheHits    int  `json:"cache_hits"`
	Dropped      int  `json:"dropped"`
	Capped       bool `json:"capped,omitempty"`
}

// Frame returns the placement as a layout frame.
func (p Placement) Frame() layout.Frame {
	f := layout.Frame{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, Baseline: -1}
	if p.Baseline != nil {
		f.Baseline = *p.Baseline
	}
	return f
}

// Lookup returns the placement with the given name.
func (g Geometry) Lookup(name string) (Placement, bool) {
	for _, p := range g.Widgets {
		if p.Name == name {
			return p, true
		}
	}
	return Placement{}, false
}

// Geometry captures the current frames of the scene's container.
func (s *Scene) Geometry() Geometry {
	g := Snapshot(s.Container)
	for i := range g.Widgets {
		if sw, ok := s.Doc.widget(g.Widgets[i].Name); ok {
			g.Widgets[i].Text = sw.Text
			g.Widgets[i].Color = sw.Color
		}
	}
	return g
}

// Snapshot captures the frames of any container, in creation order.
func Snapshot(c *layout.Container) Geometry {
	root := c.Root().Frame()
	st := c.Stats()
	g := Geometry{
		Name:   c.Name(),
		Level:  c.OptimizationLevel().String(),
		Width:  root.Width,
		Height: root.Height,
		Stats:  Stats(st),
	}
	for _, w := range c.Children() {
		f := w.Frame()
		p := Placement{
			Name:   w.Name(),
			Kind:   w.Kind().String(),
			X:      f.X,
			Y:      f.Y,
			Width:  f.Width,
			Height: f.Height,
		}
		if f.Baseline >= 0 {
			b := f.Baseline
			p.Baseline = &b
		}
		if g, ok := c.Guideline(w); ok {
			p.Orientation = g.Orientation().String()
		}
		if b, ok := c.Barrier(w); ok {
			p.Orientation = layout.OrientationHorizontal.String()
			if b.Side().Axis() == layout.Horizontal {
				p.Orientation = layout.OrientationVertical.String()
			}
		}
		if v := w.Visibility(); v != layout.Visible {
			p.Visibility = v.String()
		}
		g.Widgets = append(g.Widgets, p)
	}
	return g
}

func (d *Document) widget(name string) (*Widget, bool) {
	for i := range d.Widgets {
		if d.Widgets[i].Name == name {
			return &d.Widgets[i], true
		}
	}
	return nil, false
}

// WriteJSON encodes g as indented JSON.
// This format can be re-read with [ReadJSON].
func WriteJSON(g Geometry, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalGeometry returns the compact JSON form of g.
func MarshalGeometry(g Geometry) ([]byte, error) {
	return json.Marshal(g)
}

// ReadJSON decodes a geometry written by [WriteJSON] or [MarshalGeometry].
func ReadJSON(r io.Reader) (Geometry, error) {
	var g Geometry
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Geometry{}, fmt.Errorf("decode: %w", err)
	}
	return g, nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g Geometry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
