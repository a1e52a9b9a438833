package scene

import (
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Default text metrics of the scene measurer.
const (
	DefaultCharWidth  = 8
	DefaultLineHeight = 16
)

// Scene is a built document: a container ready to be solved.
type Scene struct {
	Doc       *Document
	Container *layout.Container

	level   layout.OptimizationLevel
	measure bool
	modes   [2]layout.MeasureMode
}

// Build creates the container described by d. The options are applied
// after the document's own settings, so callers can override the level,
// the logger or the hooks.
func (d *Document) Build(opts ...layout.Option) (*Scene, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	level, _ := layout.ParseOptimizationLevel(d.Layout.Level)
	s := &Scene{Doc: d, level: level}
	if d.Layout.WidthMode != "" || d.Layout.HeightMode != "" {
		s.measure = true
		s.modes[layout.Horizontal], _ = parseMeasureMode(d.Layout.WidthMode)
		s.modes[layout.Vertical], _ = parseMeasureMode(d.Layout.HeightMode)
	}

	base := []layout.Option{
		layout.WithName(d.Name),
		layout.WithOptimizationLevel(level),
		layout.WithMeasurer(newTextMeasurer(d)),
	}
	if d.Layout.MaxIterations > 0 {
		base = append(base, layout.WithMaxIterations(d.Layout.MaxIterations))
	}
	c := layout.NewContainer(append(base, opts...)...)
	s.Container = c
	s.level = c.OptimizationLevel()

	d.Root.apply(c.Root())

	for _, g := range d.Guidelines {
		o, _ := parseOrientation(g.Orientation)
		gl := c.NewGuideline(g.Name, o)
		switch {
		case g.Begin != nil:
			gl.SetBegin(*g.Begin)
		case g.End != nil:
			gl.SetEnd(*g.End)
		case g.Percent != nil:
			gl.SetPercent(*g.Percent)
		}
	}
	for _, b := range d.Barriers {
		side, _ := layout.ParseAnchorType(b.Side)
		bar, err := c.NewBarrier(b.Name, side)
		if err != nil {
			return nil, fmt.Errorf("barrier %q: %w", b.Name, err)
		}
		bar.SetMargin(b.Margin)
		bar.SetAllowsGoneWidgets(b.AllowsGone)
	}
	for i := range d.Widgets {
		if err := d.Widgets[i].apply(c.NewWidget(d.Widgets[i].Name)); err != nil {
			return nil, fmt.Errorf("widget %q: %w", d.Widgets[i].Name, err)
		}
	}

	lookup := func(name string) *layout.Widget {
		if parentNames[name] {
			return c.Root()
		}
		w, _ := c.Lookup(name)
		return w
	}
	for _, b := range d.Barriers {
		w, _ := c.Lookup(b.Name)
		bar, _ := c.Barrier(w)
		for _, ref := range b.References {
			if err := bar.Add(lookup(ref)); err != nil {
				return nil, fmt.Errorf("barrier %q: %w", b.Name, err)
			}
		}
	}
	for _, sw := range d.Widgets {
		w, _ := c.Lookup(sw.Name)
		for _, conn := range sw.Connect {
			from, _ := layout.ParseAnchorType(conn.From)
			t := parseTarget(conn.To, from)
			if err := w.Connect(from, lookup(t.name), t.anchor, conn.Margin); err != nil {
				return nil, fmt.Errorf("widget %q: %w", sw.Name, err)
			}
			if conn.GoneMargin != nil {
				w.SetGoneMargin(from, *conn.GoneMargin)
			}
		}
	}
	return s, nil
}

func (r Root) apply(w *layout.Widget) {
	h, _ := layout.ParseDimensionBehaviour(r.Horizontal)
	v, _ := layout.ParseDimensionBehaviour(r.Vertical)
	w.SetDimensionBehaviours(h, v)
	w.SetSize(r.Width, r.Height)
	applyBounds(w, r.MinWidth, r.MaxWidth, r.MinHeight, r.MaxHeight)
}

func applyBounds(w *layout.Widget, minW, maxW, minH, maxH int) {
	if minW > 0 {
		w.SetMinWidth(minW)
	}
	if maxW > 0 {
		w.SetMaxWidth(maxW)
	}
	if minH > 0 {
		w.SetMinHeight(minH)
	}
	if maxH > 0 {
		w.SetMaxHeight(maxH)
	}
}

func (w *Widget) apply(lw *layout.Widget) error {
	h, _ := layout.ParseDimensionBehaviour(w.Horizontal)
	v, _ := layout.ParseDimensionBehaviour(w.Vertical)
	lw.SetDimensionBehaviours(h, v)
	lw.SetPosition(w.X, w.Y)
	lw.SetSize(w.Width, w.Height)
	applyBounds(lw, w.MinWidth, w.MaxWidth, w.MinHeight, w.MaxHeight)

	if w.HorizontalBias != nil {
		lw.SetHorizontalBias(*w.HorizontalBias)
	}
	if w.VerticalBias != nil {
		lw.SetVerticalBias(*w.VerticalBias)
	}
	hc, _ := layout.ParseChainStyle(w.HorizontalChain)
	vc, _ := layout.ParseChainStyle(w.VerticalChain)
	lw.SetHorizontalChainStyle(hc)
	lw.SetVerticalChainStyle(vc)
	if w.HorizontalWeight != nil {
		lw.SetHorizontalWeight(*w.HorizontalWeight)
	}
	if w.VerticalWeight != nil {
		lw.SetVerticalWeight(*w.VerticalWeight)
	}
	if m := w.HorizontalMatch; m != nil {
		style, _ := layout.ParseMatchStyle(m.Style)
		lw.SetHorizontalMatchStyle(style, m.Min, m.Max, m.percent())
	}
	if m := w.VerticalMatch; m != nil {
		style, _ := layout.ParseMatchStyle(m.Style)
		lw.SetVerticalMatchStyle(style, m.Min, m.Max, m.percent())
	}
	if w.Visibility != "" {
		vis, _ := layout.ParseVisibility(w.Visibility)
		lw.SetVisibility(vis)
	}
	lw.SetBaselineDistance(w.Baseline)
	if w.Ratio != "" {
		if err := lw.SetDimensionRatio(w.Ratio); err != nil {
			return err
		}
	}
	return nil
}

func (m *Match) percent() float64 {
	if m.Percent == nil {
		return 1
	}
	return *m.Percent
}

// Solve lays the scene out. Scenes with a measure mode run a measure pass
// against the root's design size; all others run a plain layout.
func (s *Scene) Solve() error {
	if !s.measure {
		return s.Container.Layout()
	}
	w, h := s.Container.Root().DesignSize()
	return s.Container.Measure(s.level,
		s.modes[layout.Horizontal], w,
		s.modes[layout.Vertical], h)
}

// Resize changes the root's design size and solves again.
func (s *Scene) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "negative size %dx%d", width, height)
	}
	s.Container.Root().SetSize(width, height)
	return s.Solve()
}

// SetLevel changes the optimization level used by later solves.
func (s *Scene) SetLevel(l layout.OptimizationLevel) {
	s.level = l
	s.Container.SetOptimizationLevel(l)
}

// Level returns the optimization level used by Solve.
func (s *Scene) Level() layout.OptimizationLevel { return s.level }
