package layout

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/observability"
)

// allLevels are the optimization levels every scene must agree on.
var allLevels = []OptimizationLevel{
	OptimizeNone,
	OptimizeDirect,
	OptimizeDirect | OptimizeBarrier,
	OptimizeStandard,
	OptimizeStandard | OptimizeDimensions,
	OptimizeStandard | OptimizeGraph,
	OptimizeAll,
}

func fixedWidget(c *Container, name string, w, h int) *Widget {
	wd := c.NewWidget(name)
	wd.SetSize(w, h)
	return wd
}

func mustConnect(t *testing.T, w *Widget, from AnchorType, target *Widget, to AnchorType, margin int) {
	t.Helper()
	require.NoError(t, w.Connect(from, target, to, margin))
}

// sizeTable is a Measurer answering from a fixed table and counting calls.
type sizeTable struct {
	mu    sync.Mutex
	sizes map[string]Measurement
	calls int
}

func (s *sizeTable) Measure(w *Widget, _ MeasureSpec) Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.sizes[w.Name()]
}

func frames(c *Container) map[string]Frame {
	out := make(map[string]Frame)
	for _, w := range c.Children() {
		out[w.Name()] = w.Frame()
	}
	return out
}

func TestLayoutCentersTwoSidedWidget(t *testing.T) {
	for _, level := range allLevels {
		t.Run(level.String(), func(t *testing.T) {
			c := NewContainer(WithOptimizationLevel(level))
			c.Root().SetSize(600, 400)
			box := fixedWidget(c, "box", 100, 50)
			mustConnect(t, box, Left, c.Root(), Left, 0)
			mustConnect(t, box, Right, c.Root(), Right, 0)
			mustConnect(t, box, Top, c.Root(), Top, 0)
			mustConnect(t, box, Bottom, c.Root(), Bottom, 0)

			require.NoError(t, c.Layout())
			assert.Equal(t, Frame{X: 250, Y: 175, Width: 100, Height: 50, Baseline: -1}, box.Frame())
			assert.Equal(t, Frame{Width: 600, Height: 400, Baseline: -1}, c.Root().Frame())
		})
	}
}

func TestLayoutBiasAndMargins(t *testing.T) {
	tests := []struct {
		name   string
		bias   float64
		m1, m2 int
		wantX  int
	}{
		{"centered", 0.5, 0, 0, 250},
		{"quarter", 0.25, 0, 0, 125},
		{"start", 0, 0, 0, 0},
		{"end", 1, 0, 0, 500},
		{"margins", 0.5, 20, 40, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, level := range []OptimizationLevel{OptimizeNone, OptimizeStandard} {
				c := NewContainer(WithOptimizationLevel(level))
				c.Root().SetSize(600, 400)
				box := fixedWidget(c, "box", 100, 50)
				box.SetHorizontalBias(tt.bias)
				mustConnect(t, box, Left, c.Root(), Left, tt.m1)
				mustConnect(t, box, Right, c.Root(), Right, tt.m2)

				require.NoError(t, c.Layout())
				assert.Equal(t, tt.wantX, box.X(), "level %s", level)
				assert.Equal(t, 100, box.Width())
			}
		})
	}
}

func TestLayoutOneSidedAndUnconstrained(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 400)
		a := fixedWidget(c, "a", 100, 40)
		mustConnect(t, a, Left, c.Root(), Left, 16)
		mustConnect(t, a, Top, c.Root(), Top, 8)
		b := fixedWidget(c, "b", 50, 20)
		mustConnect(t, b, Right, c.Root(), Right, 10)
		mustConnect(t, b, Bottom, c.Root(), Bottom, 10)
		free := fixedWidget(c, "free", 30, 30)
		free.SetPosition(70, 90)

		require.NoError(t, c.Layout())
		assert.Equal(t, Frame{X: 16, Y: 8, Width: 100, Height: 40, Baseline: -1}, a.Frame(), "level %s", level)
		assert.Equal(t, Frame{X: 540, Y: 370, Width: 50, Height: 20, Baseline: -1}, b.Frame(), "level %s", level)
		assert.Equal(t, Frame{X: 70, Y: 90, Width: 30, Height: 30, Baseline: -1}, free.Frame(), "level %s", level)
	}
}

func TestLayoutBaselineAlignment(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(400, 200)
		a := fixedWidget(c, "a", 100, 40)
		a.SetBaselineDistance(30)
		mustConnect(t, a, Left, c.Root(), Left, 0)
		mustConnect(t, a, Top, c.Root(), Top, 20)
		b := fixedWidget(c, "b", 80, 20)
		b.SetBaselineDistance(12)
		mustConnect(t, b, Left, a, Right, 8)
		mustConnect(t, b, Baseline, a, Baseline, 0)

		require.NoError(t, c.Layout())
		assert.Equal(t, 38, b.Y(), "level %s", level)
		assert.Equal(t, 50, a.Baseline())
		assert.Equal(t, a.Baseline(), b.Baseline())
		assert.Equal(t, 108, b.X())
	}
}

func TestLayoutGoneMargin(t *testing.T) {
	build := func(level OptimizationLevel, gone bool) (*Widget, *Widget) {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 400)
		x := fixedWidget(c, "x", 100, 20)
		mustConnect(t, x, Left, c.Root(), Left, 30)
		w := fixedWidget(c, "w", 50, 20)
		mustConnect(t, w, Left, x, Right, 10)
		w.SetGoneMargin(Left, 50)
		if gone {
			x.SetVisibility(Gone)
		}
		require.NoError(t, c.Layout())
		return x, w
	}
	for _, level := range []OptimizationLevel{OptimizeNone, OptimizeStandard} {
		x, w := build(level, false)
		assert.Equal(t, 30, x.X())
		assert.Equal(t, 140, w.X(), "visible target uses the margin")

		x, w = build(level, true)
		assert.Equal(t, Frame{X: 0, Width: 0, Height: 0, Baseline: -1}, x.Frame(), "gone widgets collapse onto their anchor")
		assert.Equal(t, 50, w.X(), "gone target uses the gone margin")
	}
}

func TestLayoutGoneWidgetIgnoresBias(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 400)
		w := fixedWidget(c, "w", 100, 20)
		w.SetHorizontalBias(0.2)
		mustConnect(t, w, Left, c.Root(), Left, 40)
		mustConnect(t, w, Right, c.Root(), Right, 0)
		w.SetVisibility(Gone)

		require.NoError(t, c.Layout())
		assert.Equal(t, Frame{X: 300, Width: 0, Height: 0, Baseline: -1}, w.Frame(), "level %s", level)

		w.SetVisibility(Visible)
		require.NoError(t, c.Layout())
		assert.Equal(t, 132, w.X(), "level %s", level)
	}
}

func TestLayoutMatchConstraint(t *testing.T) {
	measurer := &sizeTable{sizes: map[string]Measurement{"w": {Width: 150, Height: 20}}}
	tests := []struct {
		name      string
		span      int
		configure func(w *Widget)
		wantX     int
		wantWidth int
	}{
		{"spread", 600, func(w *Widget) {}, 0, 600},
		{"spread max", 600, func(w *Widget) { w.SetHorizontalMatchStyle(MatchSpread, 0, 200, 1) }, 200, 200},
		{"spread min", 100, func(w *Widget) { w.SetHorizontalMatchStyle(MatchSpread, 160, 0, 1) }, -30, 160},
		{"wrap", 600, func(w *Widget) { w.SetHorizontalMatchStyle(MatchWrap, 0, 0, 1) }, 225, 150},
		{"wrap clipped", 100, func(w *Widget) { w.SetHorizontalMatchStyle(MatchWrap, 0, 0, 1) }, 0, 100},
		{"percent", 600, func(w *Widget) { w.SetHorizontalMatchStyle(MatchPercent, 0, 0, 0.5) }, 150, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, level := range allLevels {
				c := NewContainer(WithOptimizationLevel(level), WithMeasurer(measurer))
				c.Root().SetSize(tt.span, 100)
				w := c.NewWidget("w")
				w.SetHorizontalDimensionBehaviour(MatchConstraint)
				w.SetHeight(20)
				tt.configure(w)
				mustConnect(t, w, Left, c.Root(), Left, 0)
				mustConnect(t, w, Right, c.Root(), Right, 0)

				require.NoError(t, c.Layout())
				assert.Equal(t, tt.wantX, w.X(), "level %s", level)
				assert.Equal(t, tt.wantWidth, w.Width(), "level %s", level)
			}
		})
	}
}

func TestLayoutMatchConstraintOneSidedUsesIntrinsicSize(t *testing.T) {
	measurer := &sizeTable{sizes: map[string]Measurement{"w": {Width: 150, Height: 20}}}
	c := NewContainer(WithMeasurer(measurer))
	c.Root().SetSize(600, 100)
	w := c.NewWidget("w")
	w.SetDimensionBehaviours(MatchConstraint, WrapContent)
	mustConnect(t, w, Left, c.Root(), Left, 10)

	require.NoError(t, c.Layout())
	assert.Equal(t, Frame{X: 10, Width: 150, Height: 20, Baseline: -1}, w.Frame())
}

func TestLayoutMatchParent(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 400)
		w := c.NewWidget("bar")
		w.SetHorizontalDimensionBehaviour(MatchParent)
		w.SetHeight(10)
		mustConnect(t, w, Left, c.Root(), Left, 16)
		mustConnect(t, w, Right, c.Root(), Right, 16)
		mustConnect(t, w, Bottom, c.Root(), Bottom, 5)

		require.NoError(t, c.Layout())
		assert.Equal(t, Frame{X: 16, Y: 385, Width: 568, Height: 10, Baseline: -1}, w.Frame(), "level %s", level)
	}
}

func TestLayoutGuidelines(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 400)
		quarter := c.NewGuideline("quarter", OrientationVertical)
		quarter.SetPercent(0.25)
		inset := c.NewGuideline("inset", OrientationVertical)
		inset.SetEnd(100)
		top := c.NewGuideline("top", OrientationHorizontal)
		top.SetBegin(40)

		w := c.NewWidget("w")
		w.SetHorizontalDimensionBehaviour(MatchConstraint)
		w.SetHeight(20)
		mustConnect(t, w, Left, quarter.Widget, Left, 10)
		mustConnect(t, w, Right, inset.Widget, Right, 0)
		mustConnect(t, w, Top, top.Widget, Top, 0)

		require.NoError(t, c.Layout())
		assert.Equal(t, Frame{X: 150, Height: 400, Baseline: -1}, quarter.Frame(), "level %s", level)
		assert.Equal(t, 500, inset.X())
		assert.Equal(t, Frame{Y: 40, Width: 600, Baseline: -1}, top.Frame())
		assert.Equal(t, Frame{X: 160, Y: 40, Width: 340, Height: 20, Baseline: -1}, w.Frame(), "level %s", level)
	}
}

func TestLayoutBarrierFollowsTallestReference(t *testing.T) {
	build := func(level OptimizationLevel) (*Container, *Widget, *Widget, Barrier) {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(400, 400)
		a := fixedWidget(c, "a", 100, 60)
		mustConnect(t, a, Left, c.Root(), Left, 0)
		mustConnect(t, a, Top, c.Root(), Top, 10)
		b := fixedWidget(c, "b", 100, 200)
		mustConnect(t, b, Left, a, Right, 0)
		mustConnect(t, b, Top, c.Root(), Top, 30)
		bar, err := c.NewBarrier("bar", Bottom)
		require.NoError(t, err)
		require.NoError(t, bar.Add(a, b))
		below := fixedWidget(c, "below", 100, 20)
		mustConnect(t, below, Top, bar.Widget, Bottom, 8)
		mustConnect(t, below, Left, c.Root(), Left, 0)
		return c, b, below, bar
	}
	for _, level := range allLevels {
		c, b, below, bar := build(level)
		require.NoError(t, c.Layout())
		assert.Equal(t, 230, bar.Y(), "level %s", level)
		assert.Equal(t, 238, below.Y(), "level %s", level)

		b.SetVisibility(Gone)
		require.NoError(t, c.Layout())
		assert.Equal(t, 70, bar.Y(), "gone references are skipped, level %s", level)
		assert.Equal(t, 78, below.Y())

		bar.SetAllowsGoneWidgets(true)
		require.NoError(t, c.Layout())
		assert.Equal(t, 70, bar.Y(), "a gone reference collapses to its top, level %s", level)
	}
}

func TestLayoutBarrierMinSideAndMargin(t *testing.T) {
	for _, level := range []OptimizationLevel{OptimizeNone, OptimizeStandard} {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(400, 400)
		a := fixedWidget(c, "a", 100, 20)
		a.SetPosition(120, 0)
		b := fixedWidget(c, "b", 100, 20)
		b.SetPosition(80, 40)
		bar, err := c.NewBarrier("bar", Left)
		require.NoError(t, err)
		require.NoError(t, bar.Add(a, b))
		bar.SetMargin(5)

		require.NoError(t, c.Layout())
		assert.Equal(t, 75, bar.X(), "level %s", level)
		assert.Equal(t, 400, bar.Height())
	}
}

func TestLayoutComplexSceneAgreesAcrossLevels(t *testing.T) {
	build := func(level OptimizationLevel) *Container {
		measurer := &sizeTable{sizes: map[string]Measurement{"b": {Width: 120, Height: 40, Baseline: 28}}}
		c := NewContainer(WithOptimizationLevel(level), WithMeasurer(measurer))
		root := c.Root()
		root.SetSize(600, 400)

		g := c.NewGuideline("g", OrientationVertical)
		g.SetPercent(0.5)

		a := fixedWidget(c, "a", 100, 40)
		a.SetBaselineDistance(30)
		mustConnect(t, a, Left, root, Left, 20)
		mustConnect(t, a, Top, root, Top, 20)

		b := c.NewWidget("b")
		b.SetDimensionBehaviours(WrapContent, WrapContent)
		mustConnect(t, b, Left, g.Widget, Left, 10)
		mustConnect(t, b, Baseline, a, Baseline, 0)

		r, err := c.NewBarrier("r", Right)
		require.NoError(t, err)
		require.NoError(t, r.Add(a, b))

		cw := fixedWidget(c, "c", 81, 30)
		mustConnect(t, cw, Left, r.Widget, Right, 5)
		mustConnect(t, cw, Right, root, Right, 0)
		mustConnect(t, cw, Top, root, Top, 100)

		d := fixedWidget(c, "d", 60, 50)
		e := fixedWidget(c, "e", 60, 70)
		mustConnect(t, d, Left, root, Left, 0)
		mustConnect(t, e, Left, root, Left, 0)
		mustConnect(t, d, Top, a, Bottom, 10)
		mustConnect(t, d, Bottom, e, Top, 0)
		mustConnect(t, e, Top, d, Bottom, 0)
		mustConnect(t, e, Bottom, root, Bottom, 0)

		f := fixedWidget(c, "f", 40, 20)
		mustConnect(t, f, Left, a, Right, 10)
		mustConnect(t, f, Top, a, Top, 0)
		f.SetVisibility(Gone)

		after := fixedWidget(c, "after", 50, 20)
		mustConnect(t, after, Left, f, Right, 15)
		mustConnect(t, after, Top, root, Top, 0)
		after.SetGoneMargin(Left, 25)

		h := c.NewWidget("h")
		h.SetHorizontalDimensionBehaviour(MatchParent)
		h.SetHeight(10)
		mustConnect(t, h, Left, root, Left, 30)
		mustConnect(t, h, Right, root, Right, 30)
		mustConnect(t, h, Bottom, root, Bottom, 5)

		i := c.NewWidget("i")
		i.SetHorizontalDimensionBehaviour(MatchConstraint)
		i.SetHeight(10)
		mustConnect(t, i, Left, a, Right, 0)
		mustConnect(t, i, Right, g.Widget, Left, 0)
		mustConnect(t, i, Top, root, Top, 100)
		return c
	}

	want := map[string]Frame{
		"g":     {X: 300, Height: 400, Baseline: -1},
		"a":     {X: 20, Y: 20, Width: 100, Height: 40, Baseline: 50},
		"b":     {X: 310, Y: 22, Width: 120, Height: 40, Baseline: 50},
		"r":     {X: 430, Height: 400, Baseline: -1},
		"c":     {X: 477, Y: 100, Width: 81, Height: 30, Baseline: -1},
		"d":     {X: 0, Y: 140, Width: 60, Height: 50, Baseline: -1},
		"e":     {X: 0, Y: 260, Width: 60, Height: 70, Baseline: -1},
		"f":     {X: 120, Y: 20, Baseline: -1},
		"after": {X: 145, Y: 0, Width: 50, Height: 20, Baseline: -1},
		"h":     {X: 30, Y: 385, Width: 540, Height: 10, Baseline: -1},
		"i":     {X: 120, Y: 100, Width: 180, Height: 10, Baseline: -1},
	}
	for _, level := range allLevels {
		t.Run(level.String(), func(t *testing.T) {
			c := build(level)
			require.NoError(t, c.Layout())
			assert.Equal(t, want, frames(c))
			assert.Zero(t, c.Stats().Dropped)
		})
	}
}

func TestLayoutPermutationInvariance(t *testing.T) {
	names := []string{"title", "button", "body"}
	perms := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

	build := func(order []int, level OptimizationLevel) *Container {
		c := NewContainer(WithOptimizationLevel(level))
		root := c.Root()
		root.SetSize(400, 300)
		for _, i := range order {
			c.NewWidget(names[i])
		}
		title, _ := c.Lookup("title")
		button, _ := c.Lookup("button")
		body, _ := c.Lookup("body")

		title.SetSize(200, 40)
		title.SetBaselineDistance(30)
		mustConnect(t, title, Left, root, Left, 16)
		mustConnect(t, title, Top, root, Top, 16)

		button.SetSize(100, 40)
		button.SetBaselineDistance(28)
		mustConnect(t, button, Right, root, Right, 16)
		mustConnect(t, button, Baseline, title, Baseline, 0)

		body.SetHorizontalDimensionBehaviour(MatchConstraint)
		body.SetHeight(100)
		mustConnect(t, body, Left, title, Left, 0)
		mustConnect(t, body, Right, button, Right, 0)
		mustConnect(t, body, Top, title, Bottom, 8)
		return c
	}

	want := map[string]Frame{
		"title":  {X: 16, Y: 16, Width: 200, Height: 40, Baseline: 46},
		"button": {X: 284, Y: 18, Width: 100, Height: 40, Baseline: 46},
		"body":   {X: 16, Y: 64, Width: 368, Height: 100, Baseline: -1},
	}
	for _, level := range []OptimizationLevel{OptimizeNone, OptimizeStandard, OptimizeAll} {
		for _, order := range perms {
			c := build(order, level)
			require.NoError(t, c.Layout())
			assert.Equal(t, want, frames(c), "order %v level %s", order, level)
		}
	}
}

func TestLayoutIsIdempotent(t *testing.T) {
	measurer := &sizeTable{sizes: map[string]Measurement{
		"label": {Width: 90, Height: 18, Baseline: 14},
	}}
	c := NewContainer(WithMeasurer(measurer))
	c.Root().SetSize(300, 200)
	label := c.NewWidget("label")
	label.SetDimensionBehaviours(WrapContent, WrapContent)
	mustConnect(t, label, Left, c.Root(), Left, 0)
	mustConnect(t, label, Right, c.Root(), Right, 0)
	mustConnect(t, label, Top, c.Root(), Top, 12)

	require.NoError(t, c.Layout())
	first := frames(c)
	for range 3 {
		require.NoError(t, c.Layout())
		assert.Equal(t, first, frames(c))
	}
	assert.Equal(t, Frame{X: 105, Y: 12, Width: 90, Height: 18, Baseline: 26}, label.Frame())
}

func TestLayoutWrapContent(t *testing.T) {
	build := func(level OptimizationLevel) (*Container, *Widget, *Widget) {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetDimensionBehaviours(WrapContent, WrapContent)
		a := fixedWidget(c, "a", 100, 50)
		mustConnect(t, a, Left, c.Root(), Left, 10)
		mustConnect(t, a, Top, c.Root(), Top, 20)
		b := fixedWidget(c, "b", 80, 30)
		mustConnect(t, b, Left, a, Right, 5)
		mustConnect(t, b, Top, c.Root(), Top, 0)
		return c, a, b
	}
	for _, level := range allLevels {
		c, a, b := build(level)
		require.NoError(t, c.Layout())
		assert.Equal(t, 195, c.Root().Width(), "level %s", level)
		assert.Equal(t, 70, c.Root().Height(), "level %s", level)
		assert.Equal(t, 10, a.X())
		assert.Equal(t, 115, b.X())
		assert.Equal(t, 2, c.Stats().Passes)
	}
}

func TestLayoutWrapContentCenteredChild(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetDimensionBehaviours(WrapContent, WrapContent)
		a := fixedWidget(c, "a", 100, 50)
		for _, side := range []AnchorType{Left, Top, Right, Bottom} {
			mustConnect(t, a, side, c.Root(), side, 8)
		}
		require.NoError(t, c.Layout())
		assert.Equal(t, Frame{Width: 116, Height: 66, Baseline: -1}, c.Root().Frame(), "level %s", level)
		assert.Equal(t, Frame{X: 8, Y: 8, Width: 100, Height: 50, Baseline: -1}, a.Frame())
	}
}

func TestLayoutWrapContentClampedByRootBounds(t *testing.T) {
	c := NewContainer()
	root := c.Root()
	root.SetDimensionBehaviours(WrapContent, WrapContent)
	root.SetMaxWidth(150)
	root.SetMinHeight(100)
	a := fixedWidget(c, "a", 200, 20)
	mustConnect(t, a, Left, root, Left, 0)
	mustConnect(t, a, Top, root, Top, 0)

	require.NoError(t, c.Layout())
	assert.Equal(t, 150, root.Width())
	assert.Equal(t, 100, root.Height())
}

func TestLayoutWrapContentWithRatio(t *testing.T) {
	for _, level := range allLevels {
		measurer := &sizeTable{sizes: map[string]Measurement{"img": {Width: 120, Height: 80}}}
		c := NewContainer(WithOptimizationLevel(level), WithMeasurer(measurer))
		c.Root().SetDimensionBehaviours(WrapContent, WrapContent)
		img := c.NewWidget("img")
		img.SetDimensionBehaviours(MatchConstraint, MatchConstraint)
		require.NoError(t, img.SetDimensionRatio("1:1"))
		for _, side := range []AnchorType{Left, Top, Right, Bottom} {
			mustConnect(t, img, side, c.Root(), side, 0)
		}

		var prev Frame
		for i := range 3 {
			require.NoError(t, c.Layout())
			assert.Equal(t, Frame{Width: 120, Height: 120, Baseline: -1}, c.Root().Frame(), "level %s", level)
			assert.Equal(t, Frame{Width: 120, Height: 120, Baseline: -1}, img.Frame(), "level %s", level)
			if i > 0 {
				assert.Equal(t, prev, img.Frame(), "repeated layouts must not oscillate")
			}
			prev = img.Frame()
		}
	}
}

func TestMeasureModes(t *testing.T) {
	c := NewContainer()
	a := fixedWidget(c, "a", 100, 50)
	mustConnect(t, a, Left, c.Root(), Left, 10)
	mustConnect(t, a, Top, c.Root(), Top, 20)
	b := fixedWidget(c, "b", 80, 30)
	mustConnect(t, b, Left, a, Right, 5)

	require.NoError(t, c.Measure(OptimizeAll, AtMost, 120, Exactly, 300))
	assert.Equal(t, 120, c.Root().Width())
	assert.Equal(t, 300, c.Root().Height())
	assert.Equal(t, OptimizeAll, c.OptimizationLevel())

	require.NoError(t, c.Measure(OptimizeStandard, Unspecified, 0, AtMost, 1000))
	assert.Equal(t, 195, c.Root().Width())
	assert.Equal(t, 70, c.Root().Height())

	require.NoError(t, c.Measure(OptimizeStandard, AtMost, 1000, Exactly, -5))
	assert.Equal(t, 195, c.Root().Width())
	assert.Equal(t, 0, c.Root().Height(), "negative sizes clamp to zero")
}

func TestLayoutConflictingRatioKeepsLayoutAlive(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(320, 600)
		w := c.NewWidget("w")
		w.SetWidth(100)
		w.SetVerticalDimensionBehaviour(MatchConstraint)
		w.SetVerticalMatchStyle(MatchSpread, 0, 50, 1)
		require.NoError(t, w.SetDimensionRatio("1:1"))
		mustConnect(t, w, Top, c.Root(), Top, 0)
		mustConnect(t, w, Bottom, c.Root(), Bottom, 0)

		require.NoError(t, c.Layout())
		assert.Equal(t, 1, c.Stats().Dropped, "level %s", level)
		assert.Equal(t, 100, w.Width())
		assert.LessOrEqual(t, w.Height(), 50)
	}
}

func TestLayoutWithIterationCapCompletes(t *testing.T) {
	c := NewContainer(WithOptimizationLevel(OptimizeNone), WithMaxIterations(1))
	c.Root().SetSize(400, 100)
	a := c.NewWidget("a")
	b := c.NewWidget("b")
	for _, w := range []*Widget{a, b} {
		w.SetHorizontalDimensionBehaviour(MatchConstraint)
		w.SetHeight(10)
	}
	mustConnect(t, a, Left, c.Root(), Left, 0)
	mustConnect(t, a, Right, b, Left, 0)
	mustConnect(t, b, Left, a, Right, 0)
	mustConnect(t, b, Right, c.Root(), Right, 0)

	require.NoError(t, c.Layout())
	assert.Equal(t, 1, c.Stats().Systems)
}

func TestLayoutStatsByLevel(t *testing.T) {
	build := func(level OptimizationLevel) *Container {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 400)
		box := fixedWidget(c, "box", 100, 50)
		mustConnect(t, box, Left, c.Root(), Left, 0)
		mustConnect(t, box, Right, c.Root(), Right, 0)
		return c
	}

	c := build(OptimizeStandard)
	require.NoError(t, c.Layout())
	assert.Equal(t, Stats{Passes: 1, Direct: 2}, c.Stats())

	c = build(OptimizeNone)
	require.NoError(t, c.Layout())
	st := c.Stats()
	assert.Equal(t, 0, st.Direct)
	assert.Equal(t, 2, st.Solved)
	assert.Equal(t, 1, st.Systems)
}

func TestLayoutGroupsIndependentWidgets(t *testing.T) {
	c := NewContainer(WithOptimizationLevel(OptimizeDirect | OptimizeGrouping))
	c.Root().SetSize(600, 400)
	for _, name := range []string{"a", "b"} {
		w := c.NewWidget(name)
		w.SetHorizontalDimensionBehaviour(MatchConstraint)
		w.SetHeight(10)
		mustConnect(t, w, Left, c.Root(), Left, 0)
		mustConnect(t, w, Right, c.Root(), Right, 0)
	}
	require.NoError(t, c.Layout())
	assert.Equal(t, 2, c.Stats().Systems)

	c.SetOptimizationLevel(OptimizeDirect)
	require.NoError(t, c.Layout())
	assert.Equal(t, 1, c.Stats().Systems)
	for _, w := range c.Children() {
		assert.Equal(t, 600, w.Width())
	}
}

func TestLayoutMeasureCache(t *testing.T) {
	build := func(level OptimizationLevel) (*Container, *sizeTable) {
		m := &sizeTable{sizes: map[string]Measurement{
			"a": {Width: 10, Height: 10},
			"b": {Width: 20, Height: 10},
			"c": {Width: 30, Height: 10},
		}}
		c := NewContainer(WithOptimizationLevel(level), WithMeasurer(m))
		c.Root().SetSize(300, 300)
		for _, name := range []string{"a", "b", "c"} {
			w := c.NewWidget(name)
			w.SetDimensionBehaviours(WrapContent, WrapContent)
			mustConnect(t, w, Left, c.Root(), Left, 0)
		}
		return c, m
	}

	t.Run("grouping caches", func(t *testing.T) {
		c, m := build(OptimizeStandard)
		require.NoError(t, c.Layout())
		assert.Equal(t, 3, m.calls)
		assert.Equal(t, 3, c.Stats().MeasureCalls)

		require.NoError(t, c.Layout())
		assert.Equal(t, 3, m.calls, "clean widgets are served from the cache")
		assert.Equal(t, 3, c.Stats().CacheHits)
		assert.Equal(t, 0, c.Stats().MeasureCalls)

		b, _ := c.Lookup("b")
		b.SetBaselineDistance(4)
		require.NoError(t, c.Layout())
		assert.Equal(t, 6, m.calls, "any change drops the cache")
	})

	t.Run("no grouping measures every time", func(t *testing.T) {
		c, m := build(OptimizeDirect)
		require.NoError(t, c.Layout())
		require.NoError(t, c.Layout())
		assert.Equal(t, 6, m.calls)
		assert.Equal(t, 0, c.Stats().CacheHits)
	})
}

func TestLayoutReentrancyIsRejected(t *testing.T) {
	var c *Container
	var inner []error
	c = NewContainer(WithMeasurer(MeasurerFunc(func(w *Widget, _ MeasureSpec) Measurement {
		inner = append(inner, c.Layout(), c.Measure(OptimizeNone, Exactly, 10, Exactly, 10))
		return Measurement{Width: 40, Height: 20}
	})))
	c.Root().SetSize(200, 100)
	w := c.NewWidget("w")
	w.SetDimensionBehaviours(WrapContent, WrapContent)

	require.NoError(t, c.Layout())
	require.Len(t, inner, 2)
	for _, err := range inner {
		assert.True(t, errors.Is(err, errors.ErrCodeReentrantLayout), "got %v", err)
	}
	assert.Equal(t, 40, w.Width())
	assert.Equal(t, OptimizeStandard, c.OptimizationLevel(), "a rejected Measure leaves the level alone")
}

func TestLayoutContainersInParallel(t *testing.T) {
	build := func(i int) *Container {
		c := NewContainer(WithName(fmt.Sprintf("c%d", i)), WithOptimizationLevel(allLevels[i%len(allLevels)]))
		c.Root().SetSize(600, 100)
		a := fixedWidget(c, "a", 100, 20)
		b := fixedWidget(c, "b", 100+i, 20)
		mustConnect(t, a, Left, c.Root(), Left, 0)
		mustConnect(t, a, Right, b, Left, 0)
		mustConnect(t, b, Left, a, Right, 0)
		mustConnect(t, b, Right, c.Root(), Right, 0)
		return c
	}

	const n = 16
	serial := make([]map[string]Frame, n)
	for i := range n {
		c := build(i)
		require.NoError(t, c.Layout())
		serial[i] = frames(c)
	}

	parallel := make([]map[string]Frame, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			c := build(i)
			if err := c.Layout(); err != nil {
				return err
			}
			parallel[i] = frames(c)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, serial, parallel)
}

func TestDependencyGraphRecordsStrategies(t *testing.T) {
	c := NewContainer()
	c.Root().SetSize(600, 400)
	a := fixedWidget(c, "a", 100, 20)
	mustConnect(t, a, Left, c.Root(), Left, 0)
	s := c.NewWidget("s")
	s.SetHorizontalDimensionBehaviour(MatchConstraint)
	mustConnect(t, s, Left, a, Right, 0)
	mustConnect(t, s, Right, c.Root(), Right, 0)

	assert.Nil(t, c.DependencyGraph())
	require.NoError(t, c.Layout())
	g := c.DependencyGraph()
	require.NotNil(t, g)

	ax, ok := g.Node("h1.x")
	require.True(t, ok)
	assert.Equal(t, "direct", ax.Meta["strategy"])
	assert.Equal(t, "a.x", ax.Label)

	sx, ok := g.Node("h2.x")
	require.True(t, ok)
	assert.Equal(t, "solved", sx.Meta["strategy"])
	assert.Contains(t, g.Parents("h2.x"), "h1.x")
	assert.Equal(t, 500, s.Width())
}

func TestDependencyGraphBuildsWithoutErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	c := NewContainer(WithLogger(logger), WithOptimizationLevel(OptimizeAll))
	c.Root().SetSize(600, 400)
	a := fixedWidget(c, "a", 100, 20)
	b := fixedWidget(c, "b", 100, 40)
	horizontalChain(t, c, 8, a, b)
	mustConnect(t, a, Top, c.Root(), Top, 0)
	mustConnect(t, b, Top, c.Root(), Top, 0)
	bar, err := c.NewBarrier("bar", Bottom)
	require.NoError(t, err)
	require.NoError(t, bar.Add(a, b))
	g := c.NewGuideline("g", OrientationVertical)
	g.SetPercent(0.5)
	r := c.NewWidget("r")
	r.SetDimensionBehaviours(MatchConstraint, MatchConstraint)
	require.NoError(t, r.SetDimensionRatio("2:1"))
	mustConnect(t, r, Left, g.Widget, Left, 0)
	mustConnect(t, r, Right, c.Root(), Right, 0)
	mustConnect(t, r, Top, bar.Widget, Bottom, 0)

	require.NoError(t, c.Layout())
	assert.Contains(t, buf.String(), "layout complete")
	assert.NotContains(t, buf.String(), "dependency graph")
	assert.Equal(t, Frame{X: 300, Y: 40, Width: 300, Height: 150, Baseline: -1}, r.Frame())
}

type recordingLayoutHooks struct {
	observability.NoopLayoutHooks
	mu        sync.Mutex
	started   []string
	summaries []observability.LayoutSummary
	solves    int
	measured  map[bool]int
}

func (h *recordingLayoutHooks) OnLayoutStart(container string, _ int, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, container)
}

func (h *recordingLayoutHooks) OnLayoutComplete(_ string, s observability.LayoutSummary, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.summaries = append(h.summaries, s)
}

func (h *recordingLayoutHooks) OnSolve(string, int, int, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.solves++
}

func (h *recordingLayoutHooks) OnMeasure(_ string, cached bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.measured == nil {
		h.measured = make(map[bool]int)
	}
	h.measured[cached]++
}

func TestLayoutHooks(t *testing.T) {
	hooks := &recordingLayoutHooks{}
	m := &sizeTable{sizes: map[string]Measurement{"s": {Width: 10, Height: 10}}}
	c := NewContainer(WithName("screen"), WithHooks(hooks), WithMeasurer(m))
	c.Root().SetSize(600, 400)
	s := c.NewWidget("s")
	s.SetDimensionBehaviours(MatchConstraint, WrapContent)
	mustConnect(t, s, Left, c.Root(), Left, 0)
	mustConnect(t, s, Right, c.Root(), Right, 0)

	require.NoError(t, c.Layout())
	require.NoError(t, c.Layout())

	assert.Equal(t, []string{"screen", "screen"}, hooks.started)
	require.Len(t, hooks.summaries, 2)
	assert.Equal(t, 1, hooks.summaries[0].Solved)
	assert.Equal(t, 1, hooks.summaries[0].Direct)
	assert.Equal(t, 2, hooks.solves)
	assert.Equal(t, map[bool]int{false: 1, true: 1}, hooks.measured)
}

func TestContainerLookupAndViews(t *testing.T) {
	c := NewContainer()
	a := c.NewWidget("a")
	dup := c.NewWidget("a")
	g := c.NewGuideline("g", OrientationHorizontal)
	b, err := c.NewBarrier("b", Top)
	require.NoError(t, err)

	got, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Same(t, a, got, "the first widget wins a name")
	assert.NotSame(t, a, dup)

	root, ok := c.Lookup("parent")
	require.True(t, ok)
	assert.Same(t, c.Root(), root)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)

	gv, ok := c.Guideline(g.Widget)
	require.True(t, ok)
	assert.Equal(t, OrientationHorizontal, gv.Orientation())
	_, ok = c.Guideline(a)
	assert.False(t, ok)

	bv, ok := c.Barrier(b.Widget)
	require.True(t, ok)
	assert.Equal(t, Top, bv.Side())
	_, ok = c.Barrier(nil)
	assert.False(t, ok)

	assert.Equal(t, 4, c.Len())
	assert.Same(t, a, c.Widget(a.Handle()))
	assert.Nil(t, c.Widget(99))
	assert.Nil(t, c.Widget(NoHandle))

	_, err = c.NewBarrier("bad", CenterX)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidWidget))
}
