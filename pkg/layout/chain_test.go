package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// horizontalChain links the widgets left to right between the root edges.
// Margins apply between neighbours.
func horizontalChain(t *testing.T, c *Container, margin int, ws ...*Widget) {
	t.Helper()
	root := c.Root()
	mustConnect(t, ws[0], Left, root, Left, 0)
	for i := 0; i+1 < len(ws); i++ {
		mustConnect(t, ws[i], Right, ws[i+1], Left, margin)
		mustConnect(t, ws[i+1], Left, ws[i], Right, 0)
	}
	mustConnect(t, ws[len(ws)-1], Right, root, Right, 0)
}

func TestChainSpreadEqualizesGaps(t *testing.T) {
	for _, level := range allLevels {
		t.Run(level.String(), func(t *testing.T) {
			c := NewContainer(WithOptimizationLevel(level))
			c.Root().SetSize(600, 100)
			a := fixedWidget(c, "a", 100, 20)
			b := fixedWidget(c, "b", 100, 20)
			horizontalChain(t, c, 0, a, b)

			require.NoError(t, c.Layout())
			gaps := []int{a.X(), b.X() - a.Frame().Right(), 600 - b.Frame().Right()}
			for _, g := range gaps[1:] {
				assert.InDelta(t, gaps[0], g, 1, "gaps %v", gaps)
			}
			assert.InDelta(t, 133, a.X(), 1)
			assert.InDelta(t, 367, b.X(), 1)
			assert.Equal(t, 100, a.Width())
			assert.Equal(t, 100, b.Width())
		})
	}
}

func TestChainStyles(t *testing.T) {
	tests := []struct {
		name  string
		style ChainStyle
		bias  float64
		want  []int
	}{
		{"spread", ChainSpread, 0.5, []int{75, 250, 425}},
		{"spread inside", ChainSpreadInside, 0.5, []int{0, 250, 500}},
		{"packed", ChainPacked, 0.5, []int{150, 250, 350}},
		{"packed start", ChainPacked, 0, []int{0, 100, 200}},
		{"packed biased", ChainPacked, 0.3, []int{90, 190, 290}},
		{"packed end", ChainPacked, 1, []int{300, 400, 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, level := range allLevels {
				c := NewContainer(WithOptimizationLevel(level))
				c.Root().SetSize(600, 100)
				ws := []*Widget{fixedWidget(c, "a", 100, 20), fixedWidget(c, "b", 100, 20), fixedWidget(c, "c", 100, 20)}
				ws[0].SetHorizontalChainStyle(tt.style)
				ws[0].SetHorizontalBias(tt.bias)
				horizontalChain(t, c, 0, ws...)

				require.NoError(t, c.Layout())
				for i, w := range ws {
					assert.Equal(t, tt.want[i], w.X(), "%s level %s", w.Name(), level)
					assert.Equal(t, 100, w.Width())
				}
			}
		})
	}
}

func TestChainMargins(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 100)
		a := fixedWidget(c, "a", 100, 20)
		b := fixedWidget(c, "b", 100, 20)
		a.SetHorizontalChainStyle(ChainPacked)
		horizontalChain(t, c, 40, a, b)

		require.NoError(t, c.Layout())
		assert.Equal(t, 180, a.X(), "level %s", level)
		assert.Equal(t, 320, b.X(), "level %s", level)
	}
}

func TestChainGoneMember(t *testing.T) {
	for _, level := range allLevels {
		t.Run(level.String(), func(t *testing.T) {
			c := NewContainer(WithOptimizationLevel(level))
			c.Root().SetSize(600, 100)
			a := fixedWidget(c, "a", 100, 20)
			b := fixedWidget(c, "b", 100, 20)
			cw := fixedWidget(c, "c", 100, 20)
			a.SetHorizontalChainStyle(ChainPacked)
			horizontalChain(t, c, 0, a, b, cw)

			require.NoError(t, c.Layout())
			assert.Equal(t, []int{150, 250, 350}, []int{a.X(), b.X(), cw.X()})

			b.SetVisibility(Gone)
			require.NoError(t, c.Layout())
			assert.Equal(t, 200, a.X())
			assert.Equal(t, 300, cw.X())
			assert.Equal(t, 300, b.X(), "a gone member sits at the end of the previous one")
			assert.Equal(t, 0, b.Width())
		})
	}
}

func TestChainGoneHead(t *testing.T) {
	for _, level := range []OptimizationLevel{OptimizeNone, OptimizeStandard} {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 100)
		a := fixedWidget(c, "a", 100, 20)
		b := fixedWidget(c, "b", 100, 20)
		horizontalChain(t, c, 0, a, b)
		a.SetVisibility(Gone)

		require.NoError(t, c.Layout())
		assert.Equal(t, 250, b.X(), "level %s", level)
		assert.Equal(t, 250, a.X(), "a gone head sits at the first visible member")
		assert.Equal(t, 0, a.Width())
	}
}

func TestChainAllGone(t *testing.T) {
	for _, level := range []OptimizationLevel{OptimizeNone, OptimizeStandard} {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 100)
		a := fixedWidget(c, "a", 100, 20)
		b := fixedWidget(c, "b", 100, 20)
		horizontalChain(t, c, 0, a, b)
		a.SetVisibility(Gone)
		b.SetVisibility(Gone)

		require.NoError(t, c.Layout())
		for _, w := range []*Widget{a, b} {
			assert.Equal(t, Frame{Baseline: -1}, w.Frame(), "level %s", level)
		}
	}
}

func TestChainWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		bounds  [][2]int // optional match min/max per member
		want    []int    // widths; the middle member is fixed at 100
	}{
		{name: "unset", weights: []float64{WeightUnset, WeightUnset}, want: []int{200, 200}},
		{name: "weighted", weights: []float64{1, 3}, want: []int{100, 300}},
		{name: "zero weight", weights: []float64{0, 2}, want: []int{0, 400}},
		{name: "max clamps first", weights: []float64{WeightUnset, WeightUnset}, bounds: [][2]int{{0, 50}, {0, 0}}, want: []int{50, 350}},
		{name: "min clamps first", weights: []float64{WeightUnset, WeightUnset}, bounds: [][2]int{{300, 0}, {0, 0}}, want: []int{300, 100}},
		{name: "max clamps weighted", weights: []float64{1, 3}, bounds: [][2]int{{0, 0}, {0, 200}}, want: []int{200, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, level := range allLevels {
				c := NewContainer(WithOptimizationLevel(level))
				c.Root().SetSize(500, 100)
				a := c.NewWidget("a")
				mid := fixedWidget(c, "mid", 100, 20)
				b := c.NewWidget("b")
				for i, w := range []*Widget{a, b} {
					w.SetHorizontalDimensionBehaviour(MatchConstraint)
					w.SetHeight(20)
					w.SetHorizontalWeight(tt.weights[i])
					if tt.bounds != nil {
						w.SetHorizontalMatchStyle(MatchSpread, tt.bounds[i][0], tt.bounds[i][1], 1)
					}
				}
				horizontalChain(t, c, 0, a, mid, b)

				require.NoError(t, c.Layout())
				assert.Equal(t, tt.want[0], a.Width(), "level %s", level)
				assert.Equal(t, tt.want[1], b.Width(), "level %s", level)
				assert.Equal(t, 0, a.X())
				assert.Equal(t, tt.want[0], mid.X())
				assert.Equal(t, 500, b.Frame().Right())
			}
		})
	}
}

func TestChainWeightsSkipClampedMember(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 100)
		ws := make([]*Widget, 3)
		for i, name := range []string{"a", "b", "c"} {
			ws[i] = c.NewWidget(name)
			ws[i].SetHorizontalDimensionBehaviour(MatchConstraint)
			ws[i].SetHeight(10)
		}
		ws[0].SetHorizontalMatchStyle(MatchSpread, 0, 50, 1)
		horizontalChain(t, c, 0, ws...)

		require.NoError(t, c.Layout())
		assert.Equal(t, Frame{X: 0, Y: 0, Width: 50, Height: 10, Baseline: -1}, ws[0].Frame(), "level %s", level)
		assert.Equal(t, Frame{X: 50, Y: 0, Width: 275, Height: 10, Baseline: -1}, ws[1].Frame(), "level %s", level)
		assert.Equal(t, Frame{X: 325, Y: 0, Width: 275, Height: 10, Baseline: -1}, ws[2].Frame(), "level %s", level)
	}
}

func TestChainBaselineRow(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 200)
		label := fixedWidget(c, "label", 100, 20)
		label.SetBaselineDistance(15)
		label.SetHorizontalChainStyle(ChainPacked)
		label.SetHorizontalBias(0.25)
		mustConnect(t, label, Top, c.Root(), Top, 50)
		field := fixedWidget(c, "field", 200, 40)
		field.SetBaselineDistance(28)
		mustConnect(t, field, Baseline, label, Baseline, 0)
		horizontalChain(t, c, 0, label, field)

		require.NoError(t, c.Layout())
		assert.Equal(t, 75, label.X(), "level %s", level)
		assert.Equal(t, 175, field.X(), "level %s", level)
		assert.Equal(t, 37, field.Y(), "level %s", level)
		assert.Equal(t, label.Baseline(), field.Baseline())
	}
}

func TestChainOpen(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(600, 100)
		a := fixedWidget(c, "a", 100, 20)
		b := fixedWidget(c, "b", 80, 20)
		mustConnect(t, a, Left, c.Root(), Left, 10)
		mustConnect(t, a, Right, b, Left, 6)
		mustConnect(t, b, Left, a, Right, 4)

		x := fixedWidget(c, "x", 50, 20)
		y := fixedWidget(c, "y", 50, 20)
		mustConnect(t, x, Right, y, Left, 0)
		mustConnect(t, y, Left, x, Right, 0)
		mustConnect(t, y, Right, c.Root(), Right, 20)

		require.NoError(t, c.Layout())
		assert.Equal(t, 10, a.X(), "level %s", level)
		assert.Equal(t, 120, b.X(), "level %s", level)
		assert.Equal(t, 480, x.X(), "level %s", level)
		assert.Equal(t, 530, y.X(), "level %s", level)
	}
}

func TestChainVertical(t *testing.T) {
	for _, level := range allLevels {
		c := NewContainer(WithOptimizationLevel(level))
		c.Root().SetSize(100, 400)
		top := fixedWidget(c, "top", 50, 50)
		bottom := fixedWidget(c, "bottom", 50, 70)
		top.SetVerticalChainStyle(ChainSpreadInside)
		mustConnect(t, top, Top, c.Root(), Top, 10)
		mustConnect(t, top, Bottom, bottom, Top, 0)
		mustConnect(t, bottom, Top, top, Bottom, 0)
		mustConnect(t, bottom, Bottom, c.Root(), Bottom, 10)

		require.NoError(t, c.Layout())
		assert.Equal(t, 10, top.Y(), "level %s", level)
		assert.Equal(t, 320, bottom.Y(), "level %s", level)
	}
}

func TestChainDetection(t *testing.T) {
	c := NewContainer()
	c.Root().SetSize(600, 100)
	a := fixedWidget(c, "a", 100, 20)
	b := fixedWidget(c, "b", 100, 20)
	d := fixedWidget(c, "d", 100, 20)
	horizontalChain(t, c, 0, a, b)
	// d points at b but b does not point back, so d stays outside.
	mustConnect(t, d, Left, b, Right, 0)

	p := newPass(c)
	require.Len(t, p.chains, 1)
	ch := p.chains[0]
	assert.Equal(t, []*Widget{a, b}, ch.members)
	assert.Equal(t, Horizontal, ch.axis)
	assert.True(t, ch.closed())
	assert.Nil(t, p.memberOf[d.handle][Horizontal])

	_, ok := p.graph.Node(ch.id)
	assert.True(t, ok)
	assert.Contains(t, p.graph.Parents(p.nodeID(a, Horizontal)), ch.id)
}
